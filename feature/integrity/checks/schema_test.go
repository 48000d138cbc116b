package checks

import (
	"testing"

	"masterdata-importer/core/database"
	"masterdata-importer/feature/masterdata/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	return db
}

func TestCheckSchema(t *testing.T) {
	t.Run("Nil DB", func(t *testing.T) {
		_, err := CheckSchema(nil)
		assert.Error(t, err)
	})

	t.Run("Missing Table", func(t *testing.T) {
		report, err := CheckSchema(openDB(t))
		require.NoError(t, err)
		assert.False(t, report.Matched)
		assert.Len(t, report.Errors, 1)
	})

	t.Run("Migrated", func(t *testing.T) {
		db := openDB(t)
		require.NoError(t, store.Migrate(db))

		report, err := CheckSchema(db)
		require.NoError(t, err)
		assert.True(t, report.Matched)
		assert.Empty(t, report.MissingColumns)
		assert.Empty(t, report.KeyMismatches)
	})

	t.Run("Legacy Table", func(t *testing.T) {
		db := openDB(t)
		require.NoError(t, db.Exec("CREATE TABLE master_entities (kind TEXT, id INTEGER, data TEXT)").Error)

		report, err := CheckSchema(db)
		require.NoError(t, err)
		assert.False(t, report.Matched)
		assert.Contains(t, report.MissingColumns, "owner_id")
		assert.Contains(t, report.KeyMismatches, "kind: expected primary key")
	})
}

func TestParseGormTags(t *testing.T) {
	assert.Equal(t, "kind", parseGormColumn("column:kind;primaryKey;size:32"))
	assert.Equal(t, "", parseGormColumn("-"))
	assert.True(t, hasGormFlag("column:kind;primaryKey", "primaryKey"))
	assert.False(t, hasGormFlag("column:kind;size:32", "primaryKey"))
}
