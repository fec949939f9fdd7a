package cmd

import (
	"fmt"

	"go-pos-store/internal/database"

	"github.com/spf13/cobra"
)

var seedForce bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the store with demo data",
	Long: `Seed inserts the default admin account, store settings, sample
categories, products, customers and a month of sample sales. A store
that already has users is left untouched unless --force is given.`,
	RunE: runSeed,
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Wipe all data and reseed",
	RunE:  runReset,
}

func init() {
	seedCmd.Flags().BoolVar(&seedForce, "force", false, "seed even when users already exist")
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(resetCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := database.Seed(a.db, seedForce); err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}

	counts := a.store.TableRecordCounts(cmd.Context())
	fmt.Printf("Seed complete: %d products, %d customers, %d sales\n",
		counts["products"], counts["customers"], counts["sales"])
	return nil
}

func runReset(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := database.Reset(a.db); err != nil {
		return fmt.Errorf("reset failed: %w", err)
	}
	fmt.Println("Store reset and reseeded")
	return nil
}
