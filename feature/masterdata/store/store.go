package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"masterdata-importer/core/database"
	"masterdata-importer/core/merge"
	"masterdata-importer/feature/masterdata/models"

	"github.com/cenkalti/backoff/v4"
	"gorm.io/gorm"
)

const defaultRetryMaxElapsed = 30 * time.Second

// Store persists master-data entities in master_entities and implements
// merge.Store.
type Store struct {
	db              *gorm.DB
	ownerID         string
	retryMaxElapsed time.Duration
}

// New creates a store. ownerID is stamped on created rows and never changed
// afterwards. retryMaxElapsed bounds retries of transient errors; zero uses
// the default.
func New(db *gorm.DB, ownerID string, retryMaxElapsed time.Duration) *Store {
	if retryMaxElapsed <= 0 {
		retryMaxElapsed = defaultRetryMaxElapsed
	}
	return &Store{db: db, ownerID: ownerID, retryMaxElapsed: retryMaxElapsed}
}

// Migrate creates or updates master_entities and verifies its columns.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.EntityRow{}); err != nil {
		return fmt.Errorf("failed to migrate %s: %w", models.EntityRow{}.TableName(), err)
	}

	missing, err := database.MissingColumns(db, models.EntityRow{}.TableName(), models.EntityColumns)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf("table %s is missing columns: %s", models.EntityRow{}.TableName(), strings.Join(missing, ", "))
	}
	return nil
}

// Find loads the stored entity for (kind, id).
func (s *Store) Find(ctx context.Context, kind merge.Kind, id int) (merge.Entity, bool, error) {
	var row models.EntityRow
	err := s.withRetry(ctx, func() error {
		return s.db.WithContext(ctx).Where("kind = ? AND id = ?", string(kind), id).Take(&row).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	e, err := models.FromRow(row)
	if err != nil {
		return nil, false, err
	}
	return e, true, nil
}

// Create inserts a new row owned by the configured owner.
func (s *Store) Create(ctx context.Context, e merge.Entity) error {
	ent, err := asEntity(e)
	if err != nil {
		return err
	}
	row, err := models.ToRow(ent)
	if err != nil {
		return err
	}
	row.OwnerID = s.ownerID

	return s.withRetry(ctx, func() error {
		return s.db.WithContext(ctx).Create(&row).Error
	})
}

// Update replaces the stored entity in a single statement. The key,
// owner_id and created_at columns are never written. Updating a row that no
// longer exists returns gorm.ErrRecordNotFound.
func (s *Store) Update(ctx context.Context, e merge.Entity) error {
	ent, err := asEntity(e)
	if err != nil {
		return err
	}
	row, err := models.ToRow(ent)
	if err != nil {
		return err
	}

	return s.withRetry(ctx, func() error {
		res := s.db.WithContext(ctx).
			Model(&models.EntityRow{}).
			Where("kind = ? AND id = ?", row.Kind, row.ID).
			Updates(map[string]any{
				"collection_no": row.CollectionNo,
				"name":          row.Name,
				"data":          row.Data,
				"updated_at":    time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
		// MySQL reports changed rows only, so confirm the row is really gone
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.EntityRow{}).
			Where("kind = ? AND id = ?", row.Kind, row.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("%s %d: %w", row.Kind, row.ID, gorm.ErrRecordNotFound)
		}
		return nil
	})
}

// Merge folds incoming into existing using the append rules of their kind.
func (s *Store) Merge(existing, incoming merge.Entity) (merge.Entity, error) {
	old, err := asEntity(existing)
	if err != nil {
		return nil, err
	}
	in, err := asEntity(incoming)
	if err != nil {
		return nil, err
	}
	return Append(old, in)
}

func asEntity(e merge.Entity) (models.Entity, error) {
	ent, ok := e.(models.Entity)
	if !ok {
		return nil, fmt.Errorf("unsupported entity type %T", e)
	}
	return ent, nil
}

func (s *Store) newRetryBackoff() backoff.BackOff {
	// BackOff implementations are stateful; always return a fresh instance.
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = s.retryMaxElapsed
	return bo
}

// withRetry runs op, retrying transient connection errors.
func (s *Store) withRetry(ctx context.Context, op func() error) error {
	return backoff.Retry(func() error {
		err := op()
		if err != nil && isRetryableError(err) {
			return err
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}, backoff.WithContext(s.newRetryBackoff(), ctx))
}

// isRetryableError reports whether err is a transient connection or lock error.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, transient := range []string{
		"driver: bad connection",
		"invalid connection",
		"broken pipe",
		"connection reset",
		"connection refused",
		"lost connection",
		"gone away",
		"i/o timeout",
		"database is locked",
		"deadlock found",
	} {
		if strings.Contains(msg, transient) {
			return true
		}
	}
	return false
}
