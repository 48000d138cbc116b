package models

import (
	"masterdata-importer/core/merge"
)

// Entity kinds.
const (
	KindServant         merge.Kind = "servant"
	KindNPC             merge.Kind = "npc"
	KindCraftEssence    merge.Kind = "craft_essence"
	KindEnhancementCard merge.Kind = "enhancement_card"
	KindCommandCode     merge.Kind = "command_code"
)

// Kinds lists every entity kind.
var Kinds = []merge.Kind{KindServant, KindNPC, KindCraftEssence, KindEnhancementCard, KindCommandCode}

// Entity is the closed set of assembled entities: *Servant, *NPC,
// *CraftEssence, *EnhancementCard and *CommandCode.
type Entity interface {
	merge.Entity
	DisplayName() string
	sealed()
}

// Identity is shared by every entity.
type Identity struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	NameEn string `json:"nameEn,omitempty"`
	Ruby   string `json:"ruby,omitempty"`
}

// EntityID returns the source primary record id.
func (i Identity) EntityID() int { return i.ID }

// DisplayName returns the primary name.
func (i Identity) DisplayName() string { return i.Name }

// Reference points at a named credit (illustrator, voice actor).
type Reference struct {
	ID   int    `json:"id"`
	Name string `json:"name,omitempty"`
}

// Stats are level-scaled combat values.
type Stats struct {
	LvMax   int `json:"lvMax"`
	HPBase  int `json:"hpBase"`
	HPMax   int `json:"hpMax"`
	ATKBase int `json:"atkBase"`
	ATKMax  int `json:"atkMax"`
}

// Character is the base shape of servants and NPCs.
type Character struct {
	Class          Class       `json:"class"`
	Attribute      Attribute   `json:"attribute"`
	Alignments     []Alignment `json:"alignments"`
	Traits         []int       `json:"traits"`
	Gender         Gender      `json:"gender"`
	Stats          Stats       `json:"stats"`
	StarRate       int         `json:"starRate"`
	DeathRate      int         `json:"deathRate"`
	CriticalWeight int         `json:"criticalWeight"`
	Voice          *Reference  `json:"voice,omitempty"`
}

// SellValue is what an entity yields when sold.
type SellValue struct {
	QP        int `json:"qp"`
	Mana      int `json:"mana"`
	RarePrism int `json:"rarePrism"`
}

// SpiritOrigin is the base shape of servants, craft essences, command codes
// and enhancement cards.
type SpiritOrigin struct {
	Rarity int       `json:"rarity"`
	Sell   SellValue `json:"sell"`
}

// Collectible is a spirit origin in a numbered, illustrated collection.
type Collectible struct {
	CollectionNo int        `json:"collectionNo"`
	Illustrator  *Reference `json:"illustrator,omitempty"`
}

// CollectionNumber implements merge.Numbered.
func (c Collectible) CollectionNumber() int { return c.CollectionNo }

// SkillRef names a skill definition.
type SkillRef struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Ruby     string `json:"ruby,omitempty"`
	MaxLevel int    `json:"maxLevel"`
}

// UnlockCondition gates a skill behind an ascension tier and a quest.
type UnlockCondition struct {
	AscensionTier int  `json:"ascensionTier"`
	QuestRequired bool `json:"questRequired"`
}

// SkillVariant is one state of a skill slot.
type SkillVariant struct {
	Skill  SkillRef         `json:"skill"`
	Unlock *UnlockCondition `json:"unlock,omitempty"`
}

// SkillSlot holds the base skill and its optional upgrade.
type SkillSlot struct {
	Base    *SkillVariant `json:"base"`
	Upgrade *SkillVariant `json:"upgrade,omitempty"`
}

// SkillSlots maps slot number (1..3) to slot.
type SkillSlots map[int]SkillSlot

// Material is one item requirement.
type Material struct {
	ItemID   int `json:"itemId"`
	Quantity int `json:"quantity"`
}

// UpgradeCost is the price of one upgrade step.
type UpgradeCost struct {
	Materials []Material `json:"materials"`
	QP        int        `json:"qp"`
}

// CostSteps maps step number to cost. Skill costs use 1..9, ascensions 1..4.
type CostSteps map[int]UpgradeCost

// NoblePhantasm is a servant's base noble phantasm.
type NoblePhantasm struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Ruby     string   `json:"ruby,omitempty"`
	Rank     string   `json:"rank,omitempty"`
	TypeText string   `json:"typeText,omitempty"`
	Card     CardType `json:"card"`
}

// CardHits maps card name (see CardType.String) to its hit distribution.
type CardHits map[string][]int

// Servant is a playable or template servant.
type Servant struct {
	Identity
	Character
	SpiritOrigin
	Collectible
	Cost           int            `json:"cost"`
	Deck           Deck           `json:"deck,omitempty"`
	Hits           CardHits       `json:"hits,omitempty"`
	Summonable     bool           `json:"summonable"`
	Playable       bool           `json:"playable"`
	Skills         SkillSlots     `json:"skills,omitempty"`
	Passives       []SkillRef     `json:"passives"`
	AscensionCosts CostSteps      `json:"ascensionCosts"`
	SkillCosts     CostSteps      `json:"skillCosts"`
	NoblePhantasm  *NoblePhantasm `json:"noblePhantasm,omitempty"`
}

// EntityKind implements merge.Entity.
func (*Servant) EntityKind() merge.Kind { return KindServant }
func (*Servant) sealed()                {}

// NPC is an enemy or story character.
type NPC struct {
	Identity
	Character
	Illustrator *Reference `json:"illustrator,omitempty"`
	NPCType     int        `json:"npcType"`
}

// EntityKind implements merge.Entity.
func (*NPC) EntityKind() merge.Kind { return KindNPC }
func (*NPC) sealed()                {}

// CraftEssence is an equippable card.
type CraftEssence struct {
	Identity
	SpiritOrigin
	Collectible
	Cost    int        `json:"cost"`
	Stats   Stats      `json:"stats"`
	Effects []SkillRef `json:"effects"`
}

// EntityKind implements merge.Entity.
func (*CraftEssence) EntityKind() merge.Kind { return KindCraftEssence }
func (*CraftEssence) sealed()                {}

// EnhancementCard kinds.
const (
	EnhancementExperience = "experience"
	EnhancementStatusUp   = "status_up"
)

// EnhancementCard is an experience or status-up material.
type EnhancementCard struct {
	Identity
	SpiritOrigin
	CardKind string `json:"cardKind"`
}

// EntityKind implements merge.Entity.
func (*EnhancementCard) EntityKind() merge.Kind { return KindEnhancementCard }
func (*EnhancementCard) sealed()                {}

// CommandCode is a collectible command card attachment.
type CommandCode struct {
	Identity
	SpiritOrigin
	Collectible
}

// EntityKind implements merge.Entity.
func (*CommandCode) EntityKind() merge.Kind { return KindCommandCode }
func (*CommandCode) sealed()                {}

// EntitySet is a pre-assembled entity list grouped by kind, as exchanged
// with the reference-data API and written by the assemble command.
type EntitySet struct {
	Servants         []*Servant         `json:"servants"`
	NPCs             []*NPC             `json:"npcs"`
	CraftEssences    []*CraftEssence    `json:"craftEssences"`
	EnhancementCards []*EnhancementCard `json:"enhancementCards"`
	CommandCodes     []*CommandCode     `json:"commandCodes"`
}

// NewEntitySet groups entities by kind, keeping their relative order.
func NewEntitySet(entities []Entity) *EntitySet {
	set := &EntitySet{
		Servants:         []*Servant{},
		NPCs:             []*NPC{},
		CraftEssences:    []*CraftEssence{},
		EnhancementCards: []*EnhancementCard{},
		CommandCodes:     []*CommandCode{},
	}
	for _, e := range entities {
		switch v := e.(type) {
		case *Servant:
			set.Servants = append(set.Servants, v)
		case *NPC:
			set.NPCs = append(set.NPCs, v)
		case *CraftEssence:
			set.CraftEssences = append(set.CraftEssences, v)
		case *EnhancementCard:
			set.EnhancementCards = append(set.EnhancementCards, v)
		case *CommandCode:
			set.CommandCodes = append(set.CommandCodes, v)
		}
	}
	return set
}

// Entities flattens the set, kind by kind.
func (s *EntitySet) Entities() []Entity {
	out := make([]Entity, 0, len(s.Servants)+len(s.NPCs)+len(s.CraftEssences)+len(s.EnhancementCards)+len(s.CommandCodes))
	for _, e := range s.Servants {
		out = append(out, e)
	}
	for _, e := range s.NPCs {
		out = append(out, e)
	}
	for _, e := range s.CraftEssences {
		out = append(out, e)
	}
	for _, e := range s.EnhancementCards {
		out = append(out, e)
	}
	for _, e := range s.CommandCodes {
		out = append(out, e)
	}
	return out
}
