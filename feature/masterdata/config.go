package masterdata

import (
	"fmt"
	"time"

	"masterdata-importer/core/merge"
)

// Config holds import run settings.
type Config struct {
	// Source selects where flat tables are read from (storage, bundle, dir).
	Source string `mapstructure:"source" default:"storage"`
	// Dir is the local table directory for the dir source.
	Dir string `mapstructure:"dir" default:""`
	// BundleObject is the object key of a combined dump for the bundle source.
	BundleObject string `mapstructure:"bundle_object" default:""`
	// EntityObject, when set, imports a pre-assembled entity set instead of flat tables.
	EntityObject string `mapstructure:"entity_object" default:""`
	// ReportPrefix is the storage prefix for run reports. Empty disables upload.
	ReportPrefix string `mapstructure:"report_prefix" default:""`
	// Workers bounds concurrent table fetches and persistence calls.
	Workers int `mapstructure:"workers" default:"8"`
	// TimeoutSeconds bounds each persistence call.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// RetryMaxSeconds bounds retries of transient database errors.
	RetryMaxSeconds int `mapstructure:"retry_max_seconds" default:"30"`
	// OwnerID is stamped on created rows.
	OwnerID string `mapstructure:"owner_id" default:"importer"`
	// Policy is the default conflict policy (skip, override, append).
	Policy string `mapstructure:"policy" default:"override"`
}

const (
	SourceStorage = "storage"
	SourceBundle  = "bundle"
	SourceDir     = "dir"
)

// Validate checks source and policy settings.
func (c Config) Validate() error {
	switch c.Source {
	case SourceStorage:
	case SourceBundle:
		if c.BundleObject == "" {
			return fmt.Errorf("bundle source requires import.bundle_object")
		}
	case SourceDir:
		if c.Dir == "" {
			return fmt.Errorf("dir source requires import.dir")
		}
	default:
		return fmt.Errorf("unknown import source %q", c.Source)
	}
	if _, err := merge.ParsePolicy(c.Policy); err != nil {
		return err
	}
	return nil
}

// Timeout returns the per-call persistence timeout.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RetryMaxElapsed returns the retry budget for transient database errors.
func (c Config) RetryMaxElapsed() time.Duration {
	return time.Duration(c.RetryMaxSeconds) * time.Second
}
