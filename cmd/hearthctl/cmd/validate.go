package cmd

import (
	"os"

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Run a read-only integrity scan for orphaned records",
	Args:  cobra.NoArgs,
	RunE: func(cobraCmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.cleanupSvc.ValidateDataIntegrity(cobraCmd.Context())
		if err != nil {
			pterm.Error.Printfln("integrity scan failed: %v", err)
			os.Exit(exitStoreFailure)
		}

		if result.IsValid {
			pterm.Success.Println("no orphaned records found")
			return nil
		}

		for _, issue := range result.Issues {
			pterm.Warning.Println(issue)
		}

		var total int64
		for _, count := range result.OrphanedRecords {
			total += count
		}
		pterm.Error.Printfln("integrity violation: %s orphaned record(s)", humanize.Comma(total))
		os.Exit(exitIntegrityViolation)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
