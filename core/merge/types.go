package merge

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Kind names a family of entities that share one conflict policy.
type Kind string

// Entity is anything the engine can persist. The id is the natural key within a kind.
type Entity interface {
	EntityID() int
	EntityKind() Kind
}

// Numbered is implemented by entities that belong to a numbered collection.
type Numbered interface {
	CollectionNumber() int
}

// Store is the persistence layer the engine drives. Implementations must leave
// the stored row unchanged when Create or Update returns an error.
type Store interface {
	// Find loads the stored entity. found is false when no row exists.
	Find(ctx context.Context, kind Kind, id int) (existing Entity, found bool, err error)
	// Create inserts a new entity.
	Create(ctx context.Context, e Entity) error
	// Update replaces the stored copy with e, keeping protected fields.
	Update(ctx context.Context, e Entity) error
	// Merge folds incoming into existing according to the kind's append rules.
	Merge(existing, incoming Entity) (Entity, error)
}

// Policy is the caller-selected rule for an entity whose id is already stored.
type Policy string

const (
	// PolicySkip creates missing entities and leaves stored ones untouched.
	PolicySkip Policy = "skip"
	// PolicyOverride creates missing entities and replaces stored ones.
	PolicyOverride Policy = "override"
	// PolicyAppend creates missing entities and merges into stored ones.
	PolicyAppend Policy = "append"
)

// ParsePolicy validates a policy name.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case PolicySkip, PolicyOverride, PolicyAppend:
		return p, nil
	default:
		return "", fmt.Errorf("unknown conflict policy %q", s)
	}
}

// ActionType is the decision taken for one entity.
type ActionType string

const (
	ActionCreate ActionType = "create"
	ActionUpdate ActionType = "update"
	ActionMerge  ActionType = "merge"
	ActionSkip   ActionType = "skip"
)

// KindOptions controls import of one entity kind.
type KindOptions struct {
	// Import enables the kind. Disabled kinds are never read or written.
	Import bool `json:"import"`
	// Policy resolves conflicts with stored entities.
	Policy Policy `json:"conflictPolicy"`
	// MinCollectionNo and MaxCollectionNo bound numbered entities, inclusive.
	MinCollectionNo *int `json:"minCollectionNo,omitempty"`
	MaxCollectionNo *int `json:"maxCollectionNo,omitempty"`
}

// InRange reports whether a collection number passes the configured bounds.
func (o KindOptions) InRange(n int) bool {
	if o.MinCollectionNo != nil && n < *o.MinCollectionNo {
		return false
	}
	if o.MaxCollectionNo != nil && n > *o.MaxCollectionNo {
		return false
	}
	return true
}

// Options controls one engine run.
type Options struct {
	// Kinds holds per-kind settings. A kind without an entry is not imported.
	Kinds map[Kind]KindOptions
	// DryRun checks existence and counts decisions without writing.
	DryRun bool
	// Workers bounds concurrent persistence calls. Values below 1 mean sequential.
	Workers int
	// Timeout bounds each persistence call. Zero disables the bound.
	Timeout time.Duration
}

// Validate rejects options the engine cannot act on.
func (o Options) Validate() error {
	for kind, ko := range o.Kinds {
		if !ko.Import {
			continue
		}
		if _, err := ParsePolicy(string(ko.Policy)); err != nil {
			return fmt.Errorf("kind %s: %w", kind, err)
		}
		if ko.MinCollectionNo != nil && ko.MaxCollectionNo != nil && *ko.MinCollectionNo > *ko.MaxCollectionNo {
			return fmt.Errorf("kind %s: min collection number %d exceeds max %d", kind, *ko.MinCollectionNo, *ko.MaxCollectionNo)
		}
	}
	return nil
}

var (
	// ErrMissingID rejects entities without a usable id before persistence.
	ErrMissingID = errors.New("entity has no id")
	// ErrDuplicateID rejects a second entity with an id already seen in the batch.
	ErrDuplicateID = errors.New("duplicate id in batch")
)

// LogEntry records one per-entity failure.
type LogEntry struct {
	ID      int    `json:"id"`
	Message string `json:"message"`
}

// KindResult summarises one kind.
type KindResult struct {
	Created int        `json:"created"`
	Updated int        `json:"updated"`
	Skipped int        `json:"skipped"`
	Errors  int        `json:"errors"`
	Log     []LogEntry `json:"log"`
}

// Result is the per-kind outcome of a run.
type Result struct {
	Kinds  map[Kind]*KindResult `json:"kinds"`
	DryRun bool                 `json:"dry_run"`
}

// For returns the result for kind, creating an empty one if needed.
func (r *Result) For(kind Kind) *KindResult {
	if r.Kinds == nil {
		r.Kinds = make(map[Kind]*KindResult)
	}
	kr, ok := r.Kinds[kind]
	if !ok {
		kr = &KindResult{Log: []LogEntry{}}
		r.Kinds[kind] = kr
	}
	return kr
}

// Totals sums every kind.
func (r *Result) Totals() KindResult {
	var t KindResult
	for _, kr := range r.Kinds {
		t.Created += kr.Created
		t.Updated += kr.Updated
		t.Skipped += kr.Skipped
		t.Errors += kr.Errors
	}
	return t
}
