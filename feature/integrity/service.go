package integrity

import (
	"context"

	"masterdata-importer/core/storage"
	"masterdata-importer/feature/integrity/checks"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service handles pre-import health checks.
type Service struct {
	client storage.Client
	bucket string
	prefix string
	db     *gorm.DB
	logger *zap.Logger
}

// NewService creates a new integrity service. db may be nil, in which case
// the schema check is skipped.
func NewService(client storage.Client, bucket, prefix string, db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{
		client: client,
		bucket: bucket,
		prefix: prefix,
		db:     db,
		logger: logger,
	}
}

// Report combines every check.
type Report struct {
	Healthy bool                 `json:"healthy"`
	Dump    *checks.DumpReport   `json:"dump,omitempty"`
	Schema  *checks.SchemaReport `json:"schema,omitempty"`
	Errors  []string             `json:"errors"`
}

// CheckDump lists the dump tables missing from storage.
func (s *Service) CheckDump(ctx context.Context) (*checks.DumpReport, error) {
	return checks.CheckDump(ctx, s.client, s.bucket, s.prefix)
}

// CheckSchema compares the entity table with its model.
func (s *Service) CheckSchema() (*checks.SchemaReport, error) {
	return checks.CheckSchema(s.db)
}

// Run executes every check. Check failures are collected in the report.
func (s *Service) Run(ctx context.Context) *Report {
	report := &Report{Healthy: true, Errors: []string{}}

	dump, err := s.CheckDump(ctx)
	if err != nil {
		s.logger.Error("Dump check failed", zap.Error(err))
		report.Errors = append(report.Errors, err.Error())
		report.Healthy = false
	} else {
		report.Dump = dump
		if !dump.Complete() {
			report.Healthy = false
		}
		if len(dump.MissingOptional) > 0 {
			s.logger.Warn("Optional dump tables missing", zap.Strings("tables", dump.MissingOptional))
		}
	}

	if s.db == nil {
		return report
	}

	schema, err := s.CheckSchema()
	if err != nil {
		s.logger.Error("Schema check failed", zap.Error(err))
		report.Errors = append(report.Errors, err.Error())
		report.Healthy = false
		return report
	}
	report.Schema = schema
	if !schema.Matched {
		report.Healthy = false
	}
	return report
}
