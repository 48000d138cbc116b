package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"masterdata-importer/core/database"
	"masterdata-importer/core/merge"
	"masterdata-importer/feature/masterdata/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupStore(t *testing.T) (*Store, *gorm.DB) {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return New(db, "importer", time.Second), db
}

func servant(id, collectionNo int, name string) *models.Servant {
	return &models.Servant{
		Identity:    models.Identity{ID: id, Name: name},
		Character:   models.Character{Class: models.ClassSaber, Traits: []int{1}},
		Collectible: models.Collectible{CollectionNo: collectionNo},
		Deck:        models.DeckQAABB,
	}
}

func TestMigrate(t *testing.T) {
	_, db := setupStore(t)

	missing, err := database.MissingColumns(db, "master_entities", models.EntityColumns)
	require.NoError(t, err)
	assert.Empty(t, missing)

	// Running twice is harmless
	assert.NoError(t, Migrate(db))
}

func TestStore_CreateFind(t *testing.T) {
	s, db := setupStore(t)
	ctx := context.Background()

	_, found, err := s.Find(ctx, models.KindServant, 1)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Create(ctx, servant(1, 2, "Altria")))

	got, found, err := s.Find(ctx, models.KindServant, 1)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Altria", got.(*models.Servant).Name)
	assert.Equal(t, models.DeckQAABB, got.(*models.Servant).Deck)

	// Same id under another kind is a different row
	_, found, err = s.Find(ctx, models.KindCraftEssence, 1)
	require.NoError(t, err)
	assert.False(t, found)

	var row models.EntityRow
	require.NoError(t, db.Where("kind = ? AND id = ?", "servant", 1).Take(&row).Error)
	assert.Equal(t, "importer", row.OwnerID)
	assert.Equal(t, 2, row.CollectionNo)

	assert.Error(t, s.Create(ctx, servant(1, 2, "Altria")), "duplicate key")
}

func TestStore_UpdateKeepsProtectedColumns(t *testing.T) {
	s, db := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, servant(1, 2, "Altria")))

	var before models.EntityRow
	require.NoError(t, db.Take(&before, "kind = ? AND id = ?", "servant", 1).Error)

	other := New(db, "someone-else", time.Second)
	require.NoError(t, other.Update(ctx, servant(1, 3, "Artoria")))

	var after models.EntityRow
	require.NoError(t, db.Take(&after, "kind = ? AND id = ?", "servant", 1).Error)
	assert.Equal(t, "importer", after.OwnerID)
	assert.True(t, before.CreatedAt.Equal(after.CreatedAt))
	assert.Equal(t, "Artoria", after.Name)
	assert.Equal(t, 3, after.CollectionNo)
}

func TestStore_UpdateMissingRow(t *testing.T) {
	s, db := setupStore(t)
	ctx := context.Background()

	err := s.Update(ctx, servant(7, 7, "Gone"))
	require.Error(t, err)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var count int64
	require.NoError(t, db.Model(&models.EntityRow{}).Count(&count).Error)
	assert.Zero(t, count)
}

// vanishingStore deletes the row between the existence check and the write.
type vanishingStore struct {
	*Store
	db *gorm.DB
}

func (v *vanishingStore) Find(ctx context.Context, kind merge.Kind, id int) (merge.Entity, bool, error) {
	ent, found, err := v.Store.Find(ctx, kind, id)
	if err == nil && found {
		err = v.db.Where("kind = ? AND id = ?", string(kind), id).Delete(&models.EntityRow{}).Error
	}
	return ent, found, err
}

func TestEngineOverStore_RowDeletedBeforeUpdate(t *testing.T) {
	s, db := setupStore(t)
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, servant(1, 1, "Mash")))

	engine := merge.NewEngine(&vanishingStore{Store: s, db: db}, zap.NewNop())
	res, err := engine.Run(ctx, []merge.Entity{servant(1, 1, "Mash")}, merge.Options{
		Kinds: map[merge.Kind]merge.KindOptions{
			models.KindServant: {Import: true, Policy: merge.PolicyOverride},
		},
		Workers: 1,
	})
	require.NoError(t, err)

	kr := res.Kinds[models.KindServant]
	assert.Equal(t, 0, kr.Updated)
	assert.Equal(t, 1, kr.Errors)
	require.Len(t, kr.Log, 1)
	assert.Equal(t, 1, kr.Log[0].ID)
}

func TestStore_Merge(t *testing.T) {
	s, _ := setupStore(t)

	existing := servant(1, 2, "Altria")
	existing.Passives = []models.SkillRef{{ID: 10}}
	existing.SkillCosts = models.CostSteps{1: {QP: 100}}
	existing.Skills = models.SkillSlots{1: {Base: &models.SkillVariant{Skill: models.SkillRef{ID: 1}}}}

	incoming := servant(1, 5, "Artoria")
	incoming.Cost = 16
	incoming.Traits = []int{1, 2}
	incoming.Passives = []models.SkillRef{{ID: 10}, {ID: 11}}
	incoming.SkillCosts = models.CostSteps{1: {QP: 999}, 2: {QP: 200}}
	incoming.Skills = models.SkillSlots{
		1: {
			Base:    &models.SkillVariant{Skill: models.SkillRef{ID: 99}},
			Upgrade: &models.SkillVariant{Skill: models.SkillRef{ID: 2}},
		},
		2: {Base: &models.SkillVariant{Skill: models.SkillRef{ID: 3}}},
	}

	out, err := s.Merge(existing, incoming)
	require.NoError(t, err)
	merged := out.(*models.Servant)

	assert.Equal(t, 1, merged.ID)
	assert.Equal(t, "Altria", merged.Name)
	assert.Equal(t, 2, merged.CollectionNo)
	assert.Equal(t, 16, merged.Cost)
	assert.Equal(t, []int{1, 2}, merged.Traits)
	assert.Equal(t, []models.SkillRef{{ID: 10}, {ID: 11}}, merged.Passives)
	assert.Equal(t, 100, merged.SkillCosts[1].QP)
	assert.Equal(t, 200, merged.SkillCosts[2].QP)
	assert.Equal(t, 1, merged.Skills[1].Base.Skill.ID)
	assert.Equal(t, 2, merged.Skills[1].Upgrade.Skill.ID)
	assert.Equal(t, 3, merged.Skills[2].Base.Skill.ID)

	// Inputs are left untouched
	assert.Len(t, existing.Passives, 1)
	assert.Len(t, existing.SkillCosts, 1)

	_, err = s.Merge(existing, &models.NPC{Identity: models.Identity{ID: 1}})
	assert.Error(t, err)
}

func TestAppend_OtherKinds(t *testing.T) {
	ce, err := Append(
		&models.CraftEssence{Identity: models.Identity{ID: 1}, Effects: []models.SkillRef{{ID: 1}}},
		&models.CraftEssence{Identity: models.Identity{ID: 1, Name: "Kaleidoscope"}, Cost: 12, Effects: []models.SkillRef{{ID: 1}, {ID: 2}}},
	)
	require.NoError(t, err)
	assert.Equal(t, "Kaleidoscope", ce.DisplayName())
	assert.Len(t, ce.(*models.CraftEssence).Effects, 2)

	npc, err := Append(
		&models.NPC{Identity: models.Identity{ID: 2}, Character: models.Character{Class: models.ClassUnknown, Gender: models.GenderNone}},
		&models.NPC{Identity: models.Identity{ID: 2}, Character: models.Character{Class: models.ClassBerserker, Gender: models.GenderMale}},
	)
	require.NoError(t, err)
	assert.Equal(t, models.ClassBerserker, npc.(*models.NPC).Class)
	assert.Equal(t, models.GenderNone, npc.(*models.NPC).Gender)

	card, err := Append(&models.EnhancementCard{Identity: models.Identity{ID: 3}}, &models.EnhancementCard{CardKind: models.EnhancementStatusUp})
	require.NoError(t, err)
	assert.Equal(t, 3, card.EntityID())
	assert.Equal(t, models.EnhancementStatusUp, card.(*models.EnhancementCard).CardKind)

	code, err := Append(&models.CommandCode{Collectible: models.Collectible{CollectionNo: 4}}, &models.CommandCode{Collectible: models.Collectible{CollectionNo: 9}})
	require.NoError(t, err)
	assert.Equal(t, 4, code.(*models.CommandCode).CollectionNo)
}

func TestEngineOverStore(t *testing.T) {
	s, db := setupStore(t)
	engine := merge.NewEngine(s, zap.NewNop())
	ctx := context.Background()

	entities := []merge.Entity{
		servant(1, 1, "Mash"),
		servant(2, 2, "Altria"),
		&models.CraftEssence{Identity: models.Identity{ID: 9400, Name: "Kaleidoscope"}, Collectible: models.Collectible{CollectionNo: 34}},
	}
	opts := merge.Options{
		Kinds: map[merge.Kind]merge.KindOptions{
			models.KindServant:      {Import: true, Policy: merge.PolicyOverride},
			models.KindCraftEssence: {Import: true, Policy: merge.PolicyOverride},
		},
		Workers: 4,
		Timeout: 5 * time.Second,
	}

	first, err := engine.Run(ctx, entities, opts)
	require.NoError(t, err)
	assert.Equal(t, 3, first.Totals().Created)

	var snapshot []models.EntityRow
	require.NoError(t, db.Order("kind, id").Find(&snapshot).Error)

	second, err := engine.Run(ctx, entities, opts)
	require.NoError(t, err)
	totals := second.Totals()
	assert.Equal(t, 0, totals.Created)
	assert.Equal(t, 3, totals.Updated)
	assert.Equal(t, 0, totals.Errors)

	var after []models.EntityRow
	require.NoError(t, db.Order("kind, id").Find(&after).Error)
	require.Len(t, after, len(snapshot))
	for i := range after {
		assert.Equal(t, snapshot[i].Kind, after[i].Kind)
		assert.Equal(t, snapshot[i].ID, after[i].ID)
		assert.JSONEq(t, string(snapshot[i].Data), string(after[i].Data))
		assert.Equal(t, snapshot[i].OwnerID, after[i].OwnerID)
	}
}

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return New(db, "importer", 2*time.Second), mock
}

func TestStore_RetriesTransientErrors(t *testing.T) {
	s, mock := newMockStore(t)

	query := "SELECT \\* FROM `master_entities` WHERE kind = .+ AND id = .+ LIMIT .+"
	mock.ExpectQuery(query).WillReturnError(errors.New("invalid connection"))
	mock.ExpectQuery(query).WillReturnRows(
		sqlmock.NewRows([]string{"kind", "id", "collection_no", "name", "owner_id", "data"}).
			AddRow("servant", 1, 2, "Altria", "importer", []byte(`{"id":1,"name":"Altria","collectionNo":2}`)),
	)

	got, found, err := s.Find(context.Background(), models.KindServant, 1)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 2, got.(*models.Servant).CollectionNo)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_PermanentErrorIsNotRetried(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("UPDATE `master_entities` SET").WillReturnError(errors.New("Error 1406: Data too long for column 'name'"))

	err := s.Update(context.Background(), servant(1, 2, "Altria"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Data too long")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsRetryableError(t *testing.T) {
	assert.False(t, isRetryableError(nil))
	assert.True(t, isRetryableError(errors.New("database is locked")))
	assert.True(t, isRetryableError(errors.New("read tcp: i/o timeout")))
	assert.False(t, isRetryableError(gorm.ErrRecordNotFound))
}
