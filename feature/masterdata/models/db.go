package models

import (
	"fmt"
	"time"

	"masterdata-importer/core/merge"

	"github.com/goccy/go-json"
	"gorm.io/datatypes"
)

// EntityRow is one stored entity. The assembled entity is kept whole in Data;
// the remaining columns exist for lookups and ownership.
type EntityRow struct {
	Kind         string         `gorm:"column:kind;primaryKey;size:32"`
	ID           int            `gorm:"column:id;primaryKey;autoIncrement:false"`
	CollectionNo int            `gorm:"column:collection_no;index"`
	Name         string         `gorm:"column:name;size:255"`
	OwnerID      string         `gorm:"column:owner_id;size:64"`
	Data         datatypes.JSON `gorm:"column:data"`
	CreatedAt    time.Time      `gorm:"column:created_at"`
	UpdatedAt    time.Time      `gorm:"column:updated_at"`
}

// TableName overrides the table name.
func (EntityRow) TableName() string {
	return "master_entities"
}

// EntityColumns are the columns Migrate expects on master_entities.
var EntityColumns = []string{"kind", "id", "collection_no", "name", "owner_id", "data", "created_at", "updated_at"}

// ToRow encodes an entity. Ownership and timestamps are left to the store.
func ToRow(e Entity) (EntityRow, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return EntityRow{}, fmt.Errorf("failed to encode %s %d: %w", e.EntityKind(), e.EntityID(), err)
	}
	row := EntityRow{
		Kind: string(e.EntityKind()),
		ID:   e.EntityID(),
		Name: e.DisplayName(),
		Data: datatypes.JSON(data),
	}
	if n, ok := e.(merge.Numbered); ok {
		row.CollectionNo = n.CollectionNumber()
	}
	return row, nil
}

// FromRow decodes a stored row into its concrete entity.
func FromRow(row EntityRow) (Entity, error) {
	e, err := newEntity(merge.Kind(row.Kind))
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(row.Data, e); err != nil {
		return nil, fmt.Errorf("failed to decode %s %d: %w", row.Kind, row.ID, err)
	}
	return e, nil
}

func newEntity(kind merge.Kind) (Entity, error) {
	switch kind {
	case KindServant:
		return &Servant{}, nil
	case KindNPC:
		return &NPC{}, nil
	case KindCraftEssence:
		return &CraftEssence{}, nil
	case KindEnhancementCard:
		return &EnhancementCard{}, nil
	case KindCommandCode:
		return &CommandCode{}, nil
	default:
		return nil, fmt.Errorf("unknown entity kind %q", kind)
	}
}
