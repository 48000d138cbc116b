// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different environments
// (development vs production).
//
// # Run Awareness
//
// Every import is a single batch run identified by a run id. The WithRun helper
// attaches that id to the logger so that assembly failures, per-entity merge
// errors and the final summary can be correlated.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Encoding: json (production) or console (development)
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	l := logger.WithRun(log, runID)
//	l.Warn("Assembly failed", zap.Int("id", id), zap.Error(err))
package logger
