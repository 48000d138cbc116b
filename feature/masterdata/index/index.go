package index

import (
	"sort"

	"masterdata-importer/feature/masterdata/models"
)

// Index holds O(1) lookups over every table of a dump. It is built once per
// run and only read afterwards.
type Index struct {
	// Primaries keyed by id; the last row wins.
	Primaries map[int]models.PrimaryRecord
	// PrimaryOrder lists primary ids in first-seen order, once each.
	PrimaryOrder []int
	// Limits keyed by owner id; the first row wins.
	Limits map[int]models.LimitRecord
	// Cards keyed by owner id and card id.
	Cards map[int]map[models.CardType]models.CardRecord
	// SkillAssignments keyed by owner id and slot. A slot may hold a base and a
	// strengthened row, so each slot is a bucket in source order.
	SkillAssignments map[int]map[int][]models.SkillAssignmentRecord
	// CombineSkills keyed by owner id and skill level (1..9).
	CombineSkills map[int]map[int]models.CombineSkillRecord
	// CombineLimits keyed by owner id and ascension tier (0..3).
	CombineLimits map[int]map[int]models.CombineLimitRecord
	// Skills keyed by id.
	Skills map[int]models.SkillRecord
	// TreasureDevices keyed by id.
	TreasureDevices map[int]models.TreasureDeviceRecord
	// TreasureDeviceAssignments keyed by owner id, in descending priority.
	TreasureDeviceAssignments map[int][]models.TreasureDeviceAssignmentRecord
	// Illustrators keyed by id.
	Illustrators map[int]string
	// Voices keyed by id.
	Voices map[int]string
}

// Build indexes every table of d. It never fails: malformed input surfaces
// later as a missing lookup.
func Build(d *models.Dump) *Index {
	idx := &Index{
		Primaries:                 make(map[int]models.PrimaryRecord, len(d.Servants)),
		PrimaryOrder:              make([]int, 0, len(d.Servants)),
		Limits:                    make(map[int]models.LimitRecord),
		Cards:                     make(map[int]map[models.CardType]models.CardRecord),
		SkillAssignments:          make(map[int]map[int][]models.SkillAssignmentRecord),
		CombineSkills:             make(map[int]map[int]models.CombineSkillRecord),
		CombineLimits:             make(map[int]map[int]models.CombineLimitRecord),
		Skills:                    make(map[int]models.SkillRecord, len(d.Skills)),
		TreasureDevices:           make(map[int]models.TreasureDeviceRecord, len(d.TreasureDevices)),
		TreasureDeviceAssignments: make(map[int][]models.TreasureDeviceAssignmentRecord),
		Illustrators:              make(map[int]string, len(d.Illustrators)),
		Voices:                    make(map[int]string, len(d.Voices)),
	}

	for _, r := range d.Servants {
		if _, seen := idx.Primaries[int(r.ID)]; !seen {
			idx.PrimaryOrder = append(idx.PrimaryOrder, int(r.ID))
		}
		idx.Primaries[int(r.ID)] = r
	}

	for _, r := range d.Limits {
		if _, seen := idx.Limits[int(r.SvtID)]; !seen {
			idx.Limits[int(r.SvtID)] = r
		}
	}

	for _, r := range d.Cards {
		owner := int(r.SvtID)
		if idx.Cards[owner] == nil {
			idx.Cards[owner] = make(map[models.CardType]models.CardRecord)
		}
		idx.Cards[owner][models.CardType(r.CardID)] = r
	}

	for _, r := range d.SkillAssignments {
		owner := int(r.SvtID)
		if idx.SkillAssignments[owner] == nil {
			idx.SkillAssignments[owner] = make(map[int][]models.SkillAssignmentRecord)
		}
		idx.SkillAssignments[owner][int(r.Num)] = append(idx.SkillAssignments[owner][int(r.Num)], r)
	}

	for _, r := range d.CombineSkills {
		owner := int(r.ID)
		if idx.CombineSkills[owner] == nil {
			idx.CombineSkills[owner] = make(map[int]models.CombineSkillRecord)
		}
		idx.CombineSkills[owner][int(r.SkillLv)] = r
	}

	for _, r := range d.CombineLimits {
		owner := int(r.ID)
		if idx.CombineLimits[owner] == nil {
			idx.CombineLimits[owner] = make(map[int]models.CombineLimitRecord)
		}
		idx.CombineLimits[owner][int(r.SvtLimit)] = r
	}

	for _, r := range d.Skills {
		idx.Skills[int(r.ID)] = r
	}

	for _, r := range d.TreasureDevices {
		idx.TreasureDevices[int(r.ID)] = r
	}

	for _, r := range d.TreasureDeviceAssignments {
		idx.TreasureDeviceAssignments[int(r.SvtID)] = append(idx.TreasureDeviceAssignments[int(r.SvtID)], r)
	}
	for _, rows := range idx.TreasureDeviceAssignments {
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Priority > rows[j].Priority })
	}

	for _, r := range d.Illustrators {
		idx.Illustrators[int(r.ID)] = r.Name
	}
	for _, r := range d.Voices {
		idx.Voices[int(r.ID)] = r.Name
	}

	return idx
}

// Primary returns the primary record for id.
func (idx *Index) Primary(id int) (models.PrimaryRecord, bool) {
	r, ok := idx.Primaries[id]
	return r, ok
}

// PrimaryRecords returns one record per primary id, in first-seen id order.
// A duplicated id carries its last row.
func (idx *Index) PrimaryRecords() []models.PrimaryRecord {
	out := make([]models.PrimaryRecord, 0, len(idx.PrimaryOrder))
	for _, id := range idx.PrimaryOrder {
		out = append(out, idx.Primaries[id])
	}
	return out
}

// Limit returns the retained limit record for owner.
func (idx *Index) Limit(owner int) (models.LimitRecord, bool) {
	r, ok := idx.Limits[owner]
	return r, ok
}

// Card returns the card row for (owner, card).
func (idx *Index) Card(owner int, card models.CardType) (models.CardRecord, bool) {
	r, ok := idx.Cards[owner][card]
	return r, ok
}

// SkillSlot returns the assignment rows for (owner, slot).
func (idx *Index) SkillSlot(owner, slot int) []models.SkillAssignmentRecord {
	return idx.SkillAssignments[owner][slot]
}

// SkillSlots returns every slot bucket of owner.
func (idx *Index) SkillSlots(owner int) map[int][]models.SkillAssignmentRecord {
	return idx.SkillAssignments[owner]
}

// CombineSkill returns the skill-upgrade step for (owner, level).
func (idx *Index) CombineSkill(owner, level int) (models.CombineSkillRecord, bool) {
	r, ok := idx.CombineSkills[owner][level]
	return r, ok
}

// CombineLimit returns the ascension step for (owner, tier).
func (idx *Index) CombineLimit(owner, tier int) (models.CombineLimitRecord, bool) {
	r, ok := idx.CombineLimits[owner][tier]
	return r, ok
}

// Skill returns a skill definition.
func (idx *Index) Skill(id int) (models.SkillRecord, bool) {
	r, ok := idx.Skills[id]
	return r, ok
}

// TreasureDevice returns a noble phantasm definition.
func (idx *Index) TreasureDevice(id int) (models.TreasureDeviceRecord, bool) {
	r, ok := idx.TreasureDevices[id]
	return r, ok
}

// TreasureDeviceRows returns owner's noble phantasm rows, highest priority first.
func (idx *Index) TreasureDeviceRows(owner int) []models.TreasureDeviceAssignmentRecord {
	return idx.TreasureDeviceAssignments[owner]
}

// Illustrator returns an illustrator name.
func (idx *Index) Illustrator(id int) (string, bool) {
	n, ok := idx.Illustrators[id]
	return n, ok
}

// Voice returns a voice actor name.
func (idx *Index) Voice(id int) (string, bool) {
	n, ok := idx.Voices[id]
	return n, ok
}
