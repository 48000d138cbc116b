package cmd

import (
	"masterdata-importer/feature/masterdata/store"

	"github.com/spf13/cobra"
)

// migrateCmd creates or updates the entity table.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the master_entities table",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(true)
		if err != nil {
			return err
		}
		defer func() { _ = a.logger.Sync() }()

		if err := store.Migrate(a.db); err != nil {
			return err
		}
		a.logger.Info("Schema is up to date")
		return nil
	},
}

func init() {
	RootCmd.AddCommand(migrateCmd)
}
