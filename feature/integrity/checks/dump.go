package checks

import (
	"context"
	"fmt"
	"path"
	"strings"

	"masterdata-importer/core/storage"
	"masterdata-importer/feature/masterdata/models"
)

// DumpReport lists the dump tables missing under a region prefix.
type DumpReport struct {
	Prefix          string   `json:"prefix"`
	Present         int      `json:"present"`
	MissingRequired []string `json:"missing_required"`
	MissingOptional []string `json:"missing_optional"`
}

// Complete reports whether an import can run against the dump.
func (r *DumpReport) Complete() bool {
	return len(r.MissingRequired) == 0
}

// CheckDump verifies that every table the importer reads exists as
// <prefix>/<table>.json in the bucket.
func CheckDump(ctx context.Context, client storage.Client, bucket, prefix string) (*DumpReport, error) {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %s does not exist", bucket)
	}

	prefix = strings.TrimSuffix(prefix, "/")
	keys, err := storage.ListKeys(ctx, client, bucket, prefix+"/")
	if err != nil {
		return nil, err
	}

	report := &DumpReport{
		Prefix:          prefix,
		MissingRequired: []string{},
		MissingOptional: []string{},
	}
	check := func(table string) bool {
		_, ok := keys[path.Join(prefix, table+".json")]
		if ok {
			report.Present++
		}
		return ok
	}
	for _, table := range models.RequiredTables {
		if !check(table) {
			report.MissingRequired = append(report.MissingRequired, table)
		}
	}
	for _, table := range models.OptionalTables {
		if !check(table) {
			report.MissingOptional = append(report.MissingOptional, table)
		}
	}
	return report, nil
}
