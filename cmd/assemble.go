package cmd

import (
	"context"
	"fmt"
	"os"

	"masterdata-importer/core/storage"
	"masterdata-importer/feature/masterdata"
	"masterdata-importer/feature/masterdata/models"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	assembleOut    string
	assembleUpload string
)

// assembleCmd assembles entities without touching the database.
var assembleCmd = &cobra.Command{
	Use:   "assemble",
	Short: "Assemble entities from the dump and write them as an entity set",
	Long: `Load the configured dump and assemble every entity without persisting.

The result is a JSON entity set that "import --from-entities" accepts.

Examples:
  # Print assembly failures only
  assemble

  # Write the entity set to a local file
  assemble --out entities.json

  # Upload the entity set to storage
  assemble --upload sets/jp-latest.json`,
	RunE: runAssemble,
}

func init() {
	assembleCmd.Flags().StringVar(&assembleOut, "out", "", "Write the entity set to this local file")
	assembleCmd.Flags().StringVar(&assembleUpload, "upload", "", "Upload the entity set under this object key")

	RootCmd.AddCommand(assembleCmd)
}

func runAssemble(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := bootstrap(false)
	if err != nil {
		return err
	}
	defer func() { _ = a.logger.Sync() }()

	if err := a.cfg.Import.Validate(); err != nil {
		return err
	}

	svc := masterdata.NewService(a.cfg.Import, a.client, a.cfg.Storage.Bucket, a.cfg.Server.DumpPrefix(), nil, a.logger)
	res, err := svc.Assemble(ctx)
	if err != nil {
		return err
	}

	a.logger.Info("Assembly finished",
		zap.Int("entities", len(res.Entities)),
		zap.Int("skipped", res.Skipped),
		zap.Int("failures", len(res.Failures)),
	)
	for _, f := range res.Failures {
		fmt.Printf("- %d (type %d): %s\n", f.ID, f.Type, f.Message)
	}

	if assembleOut == "" && assembleUpload == "" {
		return nil
	}

	data, err := json.MarshalIndent(models.NewEntitySet(res.Entities), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode entity set: %w", err)
	}

	if assembleOut != "" {
		if err := os.WriteFile(assembleOut, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", assembleOut, err)
		}
		a.logger.Info("Entity set written", zap.String("path", assembleOut))
	}
	if assembleUpload != "" {
		if err := storage.WriteObject(ctx, a.client, a.cfg.Storage.Bucket, assembleUpload, "application/json", data); err != nil {
			return err
		}
		a.logger.Info("Entity set uploaded", zap.String("object", assembleUpload))
	}
	return nil
}
