package assemble

import (
	"fmt"

	"masterdata-importer/feature/masterdata/index"
	"masterdata-importer/feature/masterdata/models"

	"go.uber.org/zap"
)

// Failure is one primary record that could not be assembled.
// Message mirrors Err for reports.
type Failure struct {
	ID      int    `json:"id"`
	Type    int    `json:"type"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Result is the outcome of one assembly pass.
type Result struct {
	// Entities in primary record order.
	Entities []models.Entity
	// Failures in primary record order.
	Failures []Failure
	// Skipped counts placeholder, unrecognized and uncollected records.
	Skipped int
}

// variant assembles one entity shape from a primary record.
type variant func(a *Assembler, r models.PrimaryRecord) (models.Entity, error)

// Assembler turns primary records into entities using a prebuilt index.
type Assembler struct {
	idx    *index.Index
	logger *zap.Logger
}

// New creates an assembler over idx.
func New(idx *index.Index, logger *zap.Logger) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assembler{idx: idx, logger: logger}
}

// Assemble processes every indexed primary record once. A failing record is
// reported and dropped; it never stops the pass.
func (a *Assembler) Assemble() *Result {
	primaries := a.idx.PrimaryRecords()
	res := &Result{
		Entities: make([]models.Entity, 0, len(primaries)),
		Failures: []Failure{},
	}

	for _, r := range primaries {
		build, ok := classify(r)
		if !ok {
			res.Skipped++
			continue
		}

		ent, err := build(a, r)
		if err != nil {
			a.logger.Warn("Entity assembly failed",
				zap.Int("id", int(r.ID)),
				zap.Int("type", int(r.Type)),
				zap.Error(err),
			)
			res.Failures = append(res.Failures, Failure{ID: int(r.ID), Type: int(r.Type), Err: err, Message: err.Error()})
			continue
		}

		res.Entities = append(res.Entities, ent)
	}

	a.logger.Debug("Assembly finished",
		zap.Int("entities", len(res.Entities)),
		zap.Int("failures", len(res.Failures)),
		zap.Int("skipped", res.Skipped),
	)
	return res
}

// classify picks the variant for a record. ok is false for records that
// contribute no entity.
func classify(r models.PrimaryRecord) (variant, bool) {
	switch int(r.Type) {
	case models.TypeNormal, models.TypeHeroine, models.TypeTemplate:
		if r.CollectionNo == 0 {
			return nil, false
		}
		return (*Assembler).servant, true
	case models.TypeEnemy, models.TypeEnemyCollection:
		return (*Assembler).npc, true
	case models.TypeCombineMaterial, models.TypeStatusUp:
		return (*Assembler).enhancementCard, true
	case models.TypeServantEquip:
		return (*Assembler).craftEssence, true
	case models.TypeCommandCode:
		return (*Assembler).commandCode, true
	default:
		// Includes the -1 placeholder
		return nil, false
	}
}

func (a *Assembler) servant(r models.PrimaryRecord) (models.Entity, error) {
	id := int(r.ID)
	limit, hasLimit := a.idx.Limit(id)

	s := &models.Servant{
		Identity:     a.identity(r),
		Character:    a.character(r, limit, hasLimit),
		SpiritOrigin: a.spiritOrigin(r, limit, hasLimit),
		Collectible:  a.collectible(r),
		Cost:         int(r.Cost),
		Summonable:   int(r.Type) == models.TypeNormal,
		Playable:     int(r.Type) != models.TypeTemplate,
	}

	if !s.Playable {
		s.Passives = []models.SkillRef{}
		s.SkillCosts = noCostSteps(skillSteps)
		s.AscensionCosts = noCostSteps(ascensionSteps)
		return s, nil
	}

	var err error
	if s.Deck, s.Hits, err = ComposeCards(a.idx, id, []int(r.CardIDs)); err != nil {
		return nil, err
	}
	if s.Skills, err = ComposeSkills(a.idx, id); err != nil {
		return nil, err
	}
	if s.Passives, err = a.passives(r); err != nil {
		return nil, err
	}
	if s.SkillCosts, err = ComposeSkillCosts(a.idx, id); err != nil {
		return nil, err
	}
	if s.AscensionCosts, err = ComposeAscensionCosts(a.idx, id); err != nil {
		return nil, err
	}
	if s.NoblePhantasm, err = ComposeNoblePhantasm(a.idx, id); err != nil {
		return nil, err
	}
	return s, nil
}

func (a *Assembler) npc(r models.PrimaryRecord) (models.Entity, error) {
	limit, hasLimit := a.idx.Limit(int(r.ID))
	return &models.NPC{
		Identity:    a.identity(r),
		Character:   a.character(r, limit, hasLimit),
		Illustrator: a.reference(int(r.IllustratorID), a.idx.Illustrator),
		NPCType:     int(r.Type),
	}, nil
}

func (a *Assembler) craftEssence(r models.PrimaryRecord) (models.Entity, error) {
	limit, hasLimit := a.idx.Limit(int(r.ID))
	effects, err := composeEffects(a.idx, int(r.ID))
	if err != nil {
		return nil, err
	}
	return &models.CraftEssence{
		Identity:     a.identity(r),
		SpiritOrigin: a.spiritOrigin(r, limit, hasLimit),
		Collectible:  a.collectible(r),
		Cost:         int(r.Cost),
		Stats:        stats(r, limit, hasLimit),
		Effects:      effects,
	}, nil
}

func (a *Assembler) enhancementCard(r models.PrimaryRecord) (models.Entity, error) {
	kind := models.EnhancementExperience
	if int(r.Type) == models.TypeStatusUp {
		kind = models.EnhancementStatusUp
	}
	limit, hasLimit := a.idx.Limit(int(r.ID))
	return &models.EnhancementCard{
		Identity:     a.identity(r),
		SpiritOrigin: a.spiritOrigin(r, limit, hasLimit),
		CardKind:     kind,
	}, nil
}

func (a *Assembler) commandCode(r models.PrimaryRecord) (models.Entity, error) {
	limit, hasLimit := a.idx.Limit(int(r.ID))
	return &models.CommandCode{
		Identity:     a.identity(r),
		SpiritOrigin: a.spiritOrigin(r, limit, hasLimit),
		Collectible:  a.collectible(r),
	}, nil
}

func (a *Assembler) identity(r models.PrimaryRecord) models.Identity {
	return models.Identity{
		ID:     int(r.ID),
		Name:   r.Name,
		NameEn: r.NameEn,
		Ruby:   r.Ruby,
	}
}

// spiritOrigin fills the fields shared by every spirit origin. Rarity prefers
// the limit row.
func (a *Assembler) spiritOrigin(r models.PrimaryRecord, limit models.LimitRecord, hasLimit bool) models.SpiritOrigin {
	rarity := int(r.Rarity)
	if hasLimit && limit.Rarity > 0 {
		rarity = int(limit.Rarity)
	}
	return models.SpiritOrigin{
		Rarity: rarity,
		Sell: models.SellValue{
			QP:        int(r.SellQP),
			Mana:      int(r.SellMana),
			RarePrism: int(r.SellRarePri),
		},
	}
}

func (a *Assembler) collectible(r models.PrimaryRecord) models.Collectible {
	return models.Collectible{
		CollectionNo: int(r.CollectionNo),
		Illustrator:  a.reference(int(r.IllustratorID), a.idx.Illustrator),
	}
}

func (a *Assembler) character(r models.PrimaryRecord, limit models.LimitRecord, hasLimit bool) models.Character {
	alignments := make([]models.Alignment, len(r.Alignments))
	for i, code := range r.Alignments {
		alignments[i] = models.AlignmentFromCode(code)
	}
	traits := make([]int, len(r.Individuality))
	copy(traits, r.Individuality)

	c := models.Character{
		Class:      models.ClassFromCode(int(r.ClassID)),
		Attribute:  models.AttributeFromCode(int(r.Attribute)),
		Alignments: alignments,
		Traits:     traits,
		Gender:     models.GenderFromCode(int(r.GenderType)),
		Stats:      stats(r, limit, hasLimit),
		StarRate:   int(r.StarRate),
		DeathRate:  int(r.DeathRate),
		Voice:      a.reference(int(r.CvID), a.idx.Voice),
	}
	if hasLimit {
		c.CriticalWeight = int(limit.CriticalWeight)
	}
	return c
}

func (a *Assembler) passives(r models.PrimaryRecord) ([]models.SkillRef, error) {
	out := make([]models.SkillRef, 0, len(r.ClassPassive))
	for _, id := range r.ClassPassive {
		ref, err := skillRef(a.idx, id)
		if err != nil {
			return nil, fmt.Errorf("passive: %w", err)
		}
		out = append(out, ref)
	}
	return out, nil
}

// reference attaches a credit only for ids above the "no reference" sentinel.
// An unknown name is left blank.
func (a *Assembler) reference(id int, lookup func(int) (string, bool)) *models.Reference {
	if id <= noReferenceID {
		return nil
	}
	name, _ := lookup(id)
	return &models.Reference{ID: id, Name: name}
}

// stats prefers the limit row and falls back to the primary record.
func stats(r models.PrimaryRecord, limit models.LimitRecord, hasLimit bool) models.Stats {
	if !hasLimit {
		return models.Stats{
			HPBase:  int(r.HPBase),
			HPMax:   int(r.HPBase),
			ATKBase: int(r.ATKBase),
			ATKMax:  int(r.ATKBase),
		}
	}
	return models.Stats{
		LvMax:   int(limit.LvMax),
		HPBase:  int(limit.HPBase),
		HPMax:   int(limit.HPMax),
		ATKBase: int(limit.ATKBase),
		ATKMax:  int(limit.ATKMax),
	}
}
