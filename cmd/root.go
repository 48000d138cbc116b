package cmd

import (
	"fmt"
	"os"

	"masterdata-importer/core/config"
	"masterdata-importer/core/database"
	"masterdata-importer/core/logger"
	"masterdata-importer/core/storage"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "masterdata-importer",
	Short: "Game master-data importer",
	Long: `Masterdata Importer turns a region's flat master-data dump into typed
game entities and merges them into the database.
It reads dumps from S3 compatible storage or a local directory.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console format with the debug config gives ISO8601 timestamps
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}

// app holds the dependencies shared by subcommands.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	client storage.Client
	db     *gorm.DB
}

// bootstrap loads configuration and connects storage, plus the database
// when withDB is set.
func bootstrap(withDB bool) (*app, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.Server.IsValidRegion() {
		return nil, fmt.Errorf("unsupported region %q", cfg.Server.Region)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	logg = logg.With(zap.String("region", cfg.Server.Region))

	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logg, client: client}
	if withDB {
		db, err := database.Connect(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect database: %w", err)
		}
		a.db = db
	}
	return a, nil
}
