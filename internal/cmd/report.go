package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go-pos-store/internal/report"

	"github.com/spf13/cobra"
)

var (
	reportFrom string
	reportTo   string
	reportCSV  string
	reportTop  int
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize sales over a date range",
	Long: `Report prints revenue, order count, discount and tax totals for the
range, plus the best-selling products. --csv additionally writes every
sale in the range to a CSV file.`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportFrom, "from", "", "start date YYYY-MM-DD (default: 30 days ago)")
	reportCmd.Flags().StringVar(&reportTo, "to", "", "end date YYYY-MM-DD, exclusive (default: tomorrow)")
	reportCmd.Flags().StringVar(&reportCSV, "csv", "", "write sales to this CSV file ('auto' for a generated name)")
	reportCmd.Flags().IntVar(&reportTop, "top", 5, "number of top sellers to show")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	now := time.Now()
	from := now.AddDate(0, 0, -30)
	to := now.AddDate(0, 0, 1)
	if reportFrom != "" {
		if from, err = time.Parse("2006-01-02", reportFrom); err != nil {
			return fmt.Errorf("invalid --from date: %w", err)
		}
	}
	if reportTo != "" {
		if to, err = time.Parse("2006-01-02", reportTo); err != nil {
			return fmt.Errorf("invalid --to date: %w", err)
		}
	}

	ctx := cmd.Context()
	reporter := report.NewReporter(a.store)

	summary, err := reporter.GetSalesSummary(ctx, from, to)
	if err != nil {
		return err
	}
	fmt.Printf("Sales %s to %s\n", from.Format("2006-01-02"), to.Format("2006-01-02"))
	fmt.Printf("  Revenue:   %.2f\n", summary.TotalRevenue)
	fmt.Printf("  Orders:    %d\n", summary.TotalOrders)
	fmt.Printf("  Discounts: %.2f\n", summary.TotalDiscount)
	fmt.Printf("  Tax:       %.2f\n", summary.TotalTax)
	fmt.Printf("  Average:   %.2f\n", summary.AverageOrder)

	sellers, err := reporter.GetTopSellers(ctx, from, to, reportTop)
	if err != nil {
		return err
	}
	if len(sellers) > 0 {
		fmt.Println("Top sellers:")
		for _, s := range sellers {
			fmt.Printf("  %-30s %4d sold  %10.2f\n", s.ProductName, s.QuantitySold, s.Revenue)
		}
	}

	if reportCSV != "" {
		out := reportCSV
		if out == "auto" {
			out = filepath.Join(a.cfg.BackupDir, report.CSVFilename(now))
		}
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("creating csv file: %w", err)
		}
		defer f.Close()
		if err := reporter.WriteCSV(ctx, f, from, to); err != nil {
			return err
		}
		fmt.Printf("CSV written to %s\n", out)
	}
	return nil
}
