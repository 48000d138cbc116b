package masterdata

import (
	"context"
	"fmt"
	"path"
	"time"

	"masterdata-importer/core/logger"
	"masterdata-importer/core/merge"
	"masterdata-importer/core/storage"
	"masterdata-importer/feature/masterdata/assemble"
	"masterdata-importer/feature/masterdata/index"
	"masterdata-importer/feature/masterdata/models"
	"masterdata-importer/feature/masterdata/source"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service runs master-data imports.
type Service struct {
	cfg    Config
	client storage.Client
	bucket string
	prefix string
	store  merge.Store
	logger *zap.Logger
}

// NewService creates a new import service. prefix is the dump prefix of the
// configured region, e.g. masterdata/jp.
func NewService(cfg Config, client storage.Client, bucket, prefix string, store merge.Store, logger *zap.Logger) *Service {
	return &Service{
		cfg:    cfg,
		client: client,
		bucket: bucket,
		prefix: prefix,
		store:  store,
		logger: logger,
	}
}

// ImportRequest selects what one run imports.
type ImportRequest struct {
	// Kinds overrides per-kind settings. Nil imports every kind with the
	// configured default policy.
	Kinds map[merge.Kind]merge.KindOptions
	// DryRun counts decisions without writing.
	DryRun bool
	// EntityObject imports a pre-assembled entity set. Falls back to the
	// configured entity object when empty.
	EntityObject string
}

// Report summarises one import run.
type Report struct {
	RunID            string                            `json:"run_id"`
	StartedAt        time.Time                         `json:"started_at"`
	Duration         string                            `json:"duration"`
	Source           string                            `json:"source"`
	DryRun           bool                              `json:"dry_run"`
	Assembled        int                               `json:"assembled"`
	Skipped          int                               `json:"skipped"`
	AssemblyFailures []assemble.Failure                `json:"assembly_failures"`
	Kinds            map[merge.Kind]*merge.KindResult `json:"kinds"`
}

// DefaultKinds enables every kind with policy.
func DefaultKinds(policy merge.Policy) map[merge.Kind]merge.KindOptions {
	kinds := make(map[merge.Kind]merge.KindOptions, len(models.Kinds))
	for _, k := range models.Kinds {
		kinds[k] = merge.KindOptions{Import: true, Policy: policy}
	}
	return kinds
}

// Source returns the configured flat-table source.
func (s *Service) Source() (source.Source, error) {
	switch s.cfg.Source {
	case SourceStorage, "":
		return source.NewStorageSource(s.client, s.bucket, s.prefix, s.cfg.Workers), nil
	case SourceBundle:
		return source.NewBundleSource(s.client, s.bucket, s.cfg.BundleObject), nil
	case SourceDir:
		return source.NewDirSource(s.cfg.Dir), nil
	default:
		return nil, fmt.Errorf("unknown import source %q", s.cfg.Source)
	}
}

// Assemble loads the dump and assembles every entity without persisting.
func (s *Service) Assemble(ctx context.Context) (*assemble.Result, error) {
	return s.assemble(ctx, s.logger)
}

func (s *Service) assemble(ctx context.Context, log *zap.Logger) (*assemble.Result, error) {
	src, err := s.Source()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	dump, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load dump: %w", err)
	}
	log.Info("Dump loaded",
		zap.String("source", s.cfg.Source),
		zap.Int("primary_records", len(dump.Servants)),
		zap.Duration("elapsed", time.Since(start)),
	)

	idx := index.Build(dump)
	return assemble.New(idx, log).Assemble(), nil
}

// Import runs one full import: load, assemble (or read an entity set),
// merge into the store and report.
func (s *Service) Import(ctx context.Context, req ImportRequest) (*Report, error) {
	runID := uuid.NewString()
	log := logger.WithRun(s.logger, runID)

	kinds := req.Kinds
	if kinds == nil {
		policy, err := merge.ParsePolicy(s.cfg.Policy)
		if err != nil {
			return nil, err
		}
		kinds = DefaultKinds(policy)
	}

	report := &Report{
		RunID:            runID,
		StartedAt:        time.Now(),
		Source:           s.cfg.Source,
		DryRun:           req.DryRun,
		AssemblyFailures: []assemble.Failure{},
	}
	log.Info("Import started", zap.Bool("dry_run", req.DryRun))

	var entities []models.Entity
	entityObject := req.EntityObject
	if entityObject == "" {
		entityObject = s.cfg.EntityObject
	}
	if entityObject != "" {
		set, err := source.LoadEntities(ctx, s.client, s.bucket, entityObject)
		if err != nil {
			return nil, fmt.Errorf("failed to load entity set: %w", err)
		}
		report.Source = "entities:" + entityObject
		entities = set.Entities()
	} else {
		res, err := s.assemble(ctx, log)
		if err != nil {
			return nil, err
		}
		entities = res.Entities
		report.Skipped = res.Skipped
		report.AssemblyFailures = res.Failures
	}
	report.Assembled = len(entities)

	batch := make([]merge.Entity, len(entities))
	for i, e := range entities {
		batch[i] = e
	}

	engine := merge.NewEngine(s.store, log)
	result, err := engine.Run(ctx, batch, merge.Options{
		Kinds:   kinds,
		DryRun:  req.DryRun,
		Workers: s.cfg.Workers,
		Timeout: s.cfg.Timeout(),
	})
	if err != nil {
		return nil, err
	}
	report.Kinds = result.Kinds
	report.Duration = time.Since(report.StartedAt).String()

	totals := result.Totals()
	log.Info("Import finished",
		zap.Int("assembled", report.Assembled),
		zap.Int("assembly_failures", len(report.AssemblyFailures)),
		zap.Int("created", totals.Created),
		zap.Int("updated", totals.Updated),
		zap.Int("skipped", totals.Skipped),
		zap.Int("errors", totals.Errors),
		zap.String("duration", report.Duration),
	)

	if s.cfg.ReportPrefix != "" {
		if err := s.uploadReport(ctx, report); err != nil {
			log.Warn("Failed to upload import report", zap.Error(err))
		}
	}

	return report, nil
}

// ReportObject returns the object key a run's report is written to.
func (s *Service) ReportObject(runID string) string {
	return path.Join(s.cfg.ReportPrefix, runID+".json")
}

func (s *Service) uploadReport(ctx context.Context, report *Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return storage.WriteObject(ctx, s.client, s.bucket, s.ReportObject(report.RunID), "application/json", data)
}
