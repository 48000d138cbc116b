// Package database handles database connections and schema inspection.
//
// It wraps GORM to configure MySQL (production) or SQLite (local runs and tests)
// connections from the application's configuration.
//
// # Connect
//
// Connect opens the configured driver, applies pool settings and verifies the
// connection with a bounded ping.
//
// # Schema Inspection
//
// GetTableColumns and MissingColumns let the import store verify, after
// migration, that the entity table carries every column it writes to.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	missing, err := database.MissingColumns(db, "master_entities", []string{"id", "kind"})
package database
