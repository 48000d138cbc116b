package assemble

import (
	"fmt"
	"slices"
	"sort"

	"masterdata-importer/feature/masterdata/index"
	"masterdata-importer/feature/masterdata/models"
)

const (
	skillSlots        = 3
	skillSteps        = 9
	ascensionSteps    = 4
	noReferenceID     = 1
	baseNoblePhantasm = 1
)

// ComposeSkills builds the three active-skill slots of owner. Every slot must
// end up with a base skill; slot 1's base is the only variant without an
// unlock condition.
func ComposeSkills(idx *index.Index, owner int) (models.SkillSlots, error) {
	buckets := idx.SkillSlots(owner)

	for slot := range buckets {
		if slot < 1 || slot > skillSlots {
			return nil, fmt.Errorf("%w: skill slot %d out of range", ErrSlotConflict, slot)
		}
	}

	slots := make(models.SkillSlots, skillSlots)
	for slot := 1; slot <= skillSlots; slot++ {
		var s models.SkillSlot
		for _, rec := range buckets[slot] {
			variant, err := skillVariant(idx, slot, rec)
			if err != nil {
				return nil, err
			}

			target := &s.Base
			state := "base"
			if rec.Strengthened {
				target = &s.Upgrade
				state = "upgrade"
			}
			if *target != nil {
				return nil, fmt.Errorf("%w: slot %d has more than one %s skill", ErrSlotConflict, slot, state)
			}
			*target = variant
		}

		if s.Base == nil {
			return nil, fmt.Errorf("%w: base skill for slot %d", ErrMissingRecord, slot)
		}
		slots[slot] = s
	}

	return slots, nil
}

func skillVariant(idx *index.Index, slot int, rec models.SkillAssignmentRecord) (*models.SkillVariant, error) {
	ref, err := skillRef(idx, int(rec.SkillID))
	if err != nil {
		return nil, err
	}

	v := &models.SkillVariant{Skill: ref}
	if slot != 1 || rec.Strengthened {
		v.Unlock = &models.UnlockCondition{
			AscensionTier: int(rec.CondLimitCount),
			QuestRequired: bool(rec.CondQuest),
		}
	}
	return v, nil
}

func skillRef(idx *index.Index, id int) (models.SkillRef, error) {
	def, ok := idx.Skill(id)
	if !ok {
		return models.SkillRef{}, fmt.Errorf("%w: skill %d", ErrMissingRecord, id)
	}
	return models.SkillRef{
		ID:       id,
		Name:     def.Name,
		Ruby:     def.Ruby,
		MaxLevel: int(def.MaxLv),
	}, nil
}

// ComposeSkillCosts builds skill-upgrade steps 1..9 of owner.
func ComposeSkillCosts(idx *index.Index, owner int) (models.CostSteps, error) {
	steps := make(models.CostSteps, skillSteps)
	for lv := 1; lv <= skillSteps; lv++ {
		rec, ok := idx.CombineSkill(owner, lv)
		if !ok {
			return nil, fmt.Errorf("%w: skill upgrade step %d", ErrMissingRecord, lv)
		}
		cost, err := toCost(rec.ItemIDs, rec.ItemNums, int(rec.QP))
		if err != nil {
			return nil, fmt.Errorf("skill upgrade step %d: %w", lv, err)
		}
		steps[lv] = cost
	}
	return steps, nil
}

// ComposeAscensionCosts builds ascension steps 1..4 of owner from tiers 0..3.
func ComposeAscensionCosts(idx *index.Index, owner int) (models.CostSteps, error) {
	steps := make(models.CostSteps, ascensionSteps)
	for tier := 0; tier < ascensionSteps; tier++ {
		rec, ok := idx.CombineLimit(owner, tier)
		if !ok {
			return nil, fmt.Errorf("%w: ascension step %d", ErrMissingRecord, tier+1)
		}
		cost, err := toCost(rec.ItemIDs, rec.ItemNums, int(rec.QP))
		if err != nil {
			return nil, fmt.Errorf("ascension step %d: %w", tier+1, err)
		}
		steps[tier+1] = cost
	}
	return steps, nil
}

// noCostSteps fills steps 1..n with zero costs.
func noCostSteps(n int) models.CostSteps {
	steps := make(models.CostSteps, n)
	for i := 1; i <= n; i++ {
		steps[i] = models.UpgradeCost{Materials: []models.Material{}}
	}
	return steps
}

func toCost(itemIDs, itemNums models.IntList, qp int) (models.UpgradeCost, error) {
	if len(itemIDs) != len(itemNums) {
		return models.UpgradeCost{}, fmt.Errorf("%w: %d items, %d quantities", ErrMalformedCost, len(itemIDs), len(itemNums))
	}
	materials := make([]models.Material, len(itemIDs))
	for i := range itemIDs {
		materials[i] = models.Material{ItemID: itemIDs[i], Quantity: itemNums[i]}
	}
	return models.UpgradeCost{Materials: materials, QP: qp}, nil
}

// ComposeCards derives the deck from the five card ids and collects the hit
// distribution of each card row. The four base cards are required; the
// NP-exclusive rows are attached when present.
func ComposeCards(idx *index.Index, owner int, cardIDs []int) (models.Deck, models.CardHits, error) {
	deck, ok := models.DeckFromCards(cardIDs)
	if !ok {
		return "", nil, fmt.Errorf("%w: %v", ErrUnknownDeck, cardIDs)
	}

	hits := make(models.CardHits, len(models.BaseCards))
	for _, card := range models.BaseCards {
		rec, ok := idx.Card(owner, card)
		if !ok {
			return "", nil, fmt.Errorf("%w: %s card", ErrMissingRecord, card)
		}
		hits[card.String()] = []int(rec.NormalDamage)
	}
	for n := 1; n <= 2; n++ {
		card := models.NPExclusiveCard(n)
		if rec, ok := idx.Card(owner, card); ok {
			hits[card.String()] = []int(rec.NormalDamage)
		}
	}

	return deck, hits, nil
}

// ComposeNoblePhantasm picks owner's highest-priority base noble phantasm.
func ComposeNoblePhantasm(idx *index.Index, owner int) (*models.NoblePhantasm, error) {
	for _, row := range idx.TreasureDeviceRows(owner) {
		if int(row.Num) != baseNoblePhantasm || row.Strengthened {
			continue
		}
		def, ok := idx.TreasureDevice(int(row.TreasureDeviceID))
		if !ok {
			return nil, fmt.Errorf("%w: noble phantasm %d", ErrMissingRecord, int(row.TreasureDeviceID))
		}
		return &models.NoblePhantasm{
			ID:       int(def.ID),
			Name:     def.Name,
			Ruby:     def.Ruby,
			Rank:     def.Rank,
			TypeText: def.TypeText,
			Card:     models.CardType(row.CardID),
		}, nil
	}
	return nil, fmt.Errorf("%w: base noble phantasm", ErrMissingRecord)
}

// composeEffects collects every skill assigned to owner in slot order.
func composeEffects(idx *index.Index, owner int) ([]models.SkillRef, error) {
	buckets := idx.SkillSlots(owner)
	slots := make([]int, 0, len(buckets))
	for slot := range buckets {
		slots = append(slots, slot)
	}
	sort.Ints(slots)

	effects := []models.SkillRef{}
	for _, slot := range slots {
		rows := slices.Clone(buckets[slot])
		// Base rows first, then by skill id
		sort.SliceStable(rows, func(i, j int) bool {
			if rows[i].Strengthened != rows[j].Strengthened {
				return !bool(rows[i].Strengthened)
			}
			return rows[i].SkillID < rows[j].SkillID
		})
		for _, rec := range rows {
			ref, err := skillRef(idx, int(rec.SkillID))
			if err != nil {
				return nil, err
			}
			effects = append(effects, ref)
		}
	}
	return effects, nil
}
