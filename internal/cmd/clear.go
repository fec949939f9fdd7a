package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"go-pos-store/internal/cleardata"
	"go-pos-store/internal/store"

	"github.com/spf13/cobra"
)

var (
	clearTables []string
	clearUser   string
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear selected tables after a safety backup",
	Long: `Clear wipes the selected tables. The workflow requires the account
password and the literal confirmation text DELETE, and a safety backup
snapshot is stored before anything is removed. Users and settings can
never be cleared.`,
	RunE: runClear,
}

func init() {
	clearCmd.Flags().StringSliceVar(&clearTables, "tables", nil,
		"tables to clear (e.g. --tables sales,sale_items)")
	clearCmd.Flags().StringVar(&clearUser, "user", "admin", "account to verify against")
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	user, err := a.store.GetUserByUsername(ctx, clearUser)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("unknown user %q", clearUser)
		}
		return err
	}

	wf := cleardata.NewWorkflow(a.store, a.engine, user.ID, a.cfg.BackupDir, a.log)

	tables := clearTables
	if len(tables) == 0 {
		fmt.Println("Clearable tables:")
		for _, t := range cleardata.ClearableTables() {
			fmt.Printf("  %s\n", t)
		}
		line, err := promptLine("Tables to clear (comma separated): ")
		if err != nil {
			return err
		}
		for _, t := range strings.Split(line, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tables = append(tables, t)
			}
		}
	}
	if err := wf.Select(tables); err != nil {
		return err
	}

	password, err := promptPassword(fmt.Sprintf("Password for %s: ", clearUser))
	if err != nil {
		return err
	}
	if err := wf.VerifyPassword(ctx, password); err != nil {
		return err
	}

	confirm, err := promptLine(fmt.Sprintf("Type %s to proceed: ", cleardata.ConfirmPhrase))
	if err != nil {
		return err
	}
	if err := wf.Confirm(confirm); err != nil {
		return err
	}

	result, err := wf.Execute(ctx)
	if err != nil {
		return err
	}

	if result.BackupFilename != "" {
		fmt.Printf("Safety backup %d stored, file %s\n", result.BackupID, result.BackupFilename)
	} else {
		fmt.Printf("Safety backup %d stored\n", result.BackupID)
	}
	fmt.Printf("Cleared: %s\n", strings.Join(result.Cleared, ", "))
	if len(result.Failed) > 0 {
		fmt.Printf("Failed: %s\n", strings.Join(result.Failed, ", "))
	}
	return nil
}

func promptLine(prompt string) (string, error) {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
