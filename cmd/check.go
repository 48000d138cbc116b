package cmd

import (
	"context"
	"errors"
	"fmt"

	"masterdata-importer/feature/integrity"

	"github.com/spf13/cobra"
)

var checkSkipDB bool

// checkCmd verifies that an import can run.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the dump in storage and the database schema",
	Long: `Verify that every dump table the importer needs exists under the region
prefix and that the master_entities table matches the model.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		a, err := bootstrap(!checkSkipDB)
		if err != nil {
			return err
		}
		defer func() { _ = a.logger.Sync() }()

		svc := integrity.NewService(a.client, a.cfg.Storage.Bucket, a.cfg.Server.DumpPrefix(), a.db, a.logger)
		report := svc.Run(ctx)

		fmt.Println("\n--- Integrity Check ---")
		if report.Dump != nil {
			fmt.Printf("Dump prefix:    %s\n", report.Dump.Prefix)
			fmt.Printf("Tables found:   %d\n", report.Dump.Present)
			for _, table := range report.Dump.MissingRequired {
				fmt.Printf("- missing required table %s\n", table)
			}
			for _, table := range report.Dump.MissingOptional {
				fmt.Printf("- missing optional table %s\n", table)
			}
		}
		if report.Schema != nil {
			fmt.Printf("Schema matched: %v\n", report.Schema.Matched)
			for _, col := range report.Schema.MissingColumns {
				fmt.Printf("- missing column %s\n", col)
			}
			for _, m := range report.Schema.KeyMismatches {
				fmt.Printf("- %s\n", m)
			}
			for _, e := range report.Schema.Errors {
				fmt.Printf("- %s\n", e)
			}
		}
		for _, e := range report.Errors {
			fmt.Printf("- %s\n", e)
		}
		fmt.Println("-----------------------")

		if !report.Healthy {
			return errors.New("integrity check failed")
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().BoolVar(&checkSkipDB, "skip-db", false, "Skip the database schema check")
	RootCmd.AddCommand(checkCmd)
}
