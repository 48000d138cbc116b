package merge

import "fmt"

// ItemState is the planning outcome for one input entity.
type ItemState string

const (
	// StatePending entities go to the store.
	StatePending ItemState = "pending"
	// StateFiltered entities are skipped by kind or collection-number settings.
	StateFiltered ItemState = "filtered"
	// StateRejected entities fail before any persistence call.
	StateRejected ItemState = "rejected"
)

// PlanItem is one input entity with its planning decision.
type PlanItem struct {
	Entity Entity
	State  ItemState
	Policy Policy
	// Err explains a rejection.
	Err error
}

// Plan holds every input entity in input order.
type Plan struct {
	Items []PlanItem
}

// Pending counts entities that will reach the store.
func (p *Plan) Pending() int {
	n := 0
	for _, item := range p.Items {
		if item.State == StatePending {
			n++
		}
	}
	return n
}

// BuildPlan filters and validates entities without touching the store.
// Disabled kinds and out-of-range collection numbers are filtered; missing
// and duplicate ids are rejected.
func BuildPlan(entities []Entity, opts Options) *Plan {
	plan := &Plan{Items: make([]PlanItem, 0, len(entities))}
	seen := make(map[Kind]map[int]struct{})

	for _, ent := range entities {
		item := PlanItem{Entity: ent}
		kind := ent.EntityKind()
		ko, ok := opts.Kinds[kind]

		switch {
		case !ok || !ko.Import:
			item.State = StateFiltered
		case !inCollectionRange(ent, ko):
			item.State = StateFiltered
		case ent.EntityID() <= 0:
			item.State = StateRejected
			item.Err = ErrMissingID
		default:
			ids, exists := seen[kind]
			if !exists {
				ids = make(map[int]struct{})
				seen[kind] = ids
			}
			if _, dup := ids[ent.EntityID()]; dup {
				item.State = StateRejected
				item.Err = fmt.Errorf("%w: %d", ErrDuplicateID, ent.EntityID())
				break
			}
			ids[ent.EntityID()] = struct{}{}
			item.State = StatePending
			item.Policy = ko.Policy
		}

		plan.Items = append(plan.Items, item)
	}

	return plan
}

func inCollectionRange(ent Entity, ko KindOptions) bool {
	numbered, ok := ent.(Numbered)
	if !ok {
		return true
	}
	return ko.InRange(numbered.CollectionNumber())
}
