// Package config provides configuration management for the importer.
//
// It utilizes Viper for loading configuration from environment variables and an
// optional .env file. Defaults come from `default` struct tags.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: game server region (jp, na)
//   - Database: MySQL or SQLite connection details
//   - Storage: S3/MinIO credentials and bucket holding the dumps
//   - Log: Logging level and format
//   - Import: source kind, worker count, timeouts, default conflict policy
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Import.Workers)
package config
