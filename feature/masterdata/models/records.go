package models

import (
	"bytes"
	"fmt"

	"masterdata-importer/core/utils"

	"github.com/goccy/go-json"
)

// Dump table names as published under masterdata/<region>/.
const (
	TableServant                  = "mstSvt"
	TableLimit                    = "mstSvtLimit"
	TableCard                     = "mstSvtCard"
	TableSkillAssignment          = "mstSvtSkill"
	TableCombineSkill             = "mstCombineSkill"
	TableCombineLimit             = "mstCombineLimit"
	TableSkill                    = "mstSkill"
	TableTreasureDeviceAssignment = "mstSvtTreasureDevice"
	TableTreasureDevice           = "mstTreasureDevice"
	TableIllustrator              = "mstIllustrator"
	TableVoice                    = "mstCv"
)

// RequiredTables must be present for a dump to be assembled.
var RequiredTables = []string{
	TableServant,
	TableLimit,
	TableCard,
	TableSkillAssignment,
	TableCombineSkill,
	TableCombineLimit,
	TableSkill,
	TableTreasureDeviceAssignment,
	TableTreasureDevice,
}

// OptionalTables only enrich entities; absent tables leave names blank.
var OptionalTables = []string{
	TableIllustrator,
	TableVoice,
}

// Dump is the full set of flat tables for one import run.
type Dump struct {
	Servants                  []PrimaryRecord                  `json:"mstSvt"`
	Limits                    []LimitRecord                    `json:"mstSvtLimit"`
	Cards                     []CardRecord                     `json:"mstSvtCard"`
	SkillAssignments          []SkillAssignmentRecord          `json:"mstSvtSkill"`
	CombineSkills             []CombineSkillRecord             `json:"mstCombineSkill"`
	CombineLimits             []CombineLimitRecord             `json:"mstCombineLimit"`
	Skills                    []SkillRecord                    `json:"mstSkill"`
	TreasureDeviceAssignments []TreasureDeviceAssignmentRecord `json:"mstSvtTreasureDevice"`
	TreasureDevices           []TreasureDeviceRecord           `json:"mstTreasureDevice"`
	Illustrators              []NamedRecord                    `json:"mstIllustrator"`
	Voices                    []NamedRecord                    `json:"mstCv"`
}

// DecodeTable decodes one table payload into the matching Dump field.
func (d *Dump) DecodeTable(table string, data []byte) error {
	var target any
	switch table {
	case TableServant:
		target = &d.Servants
	case TableLimit:
		target = &d.Limits
	case TableCard:
		target = &d.Cards
	case TableSkillAssignment:
		target = &d.SkillAssignments
	case TableCombineSkill:
		target = &d.CombineSkills
	case TableCombineLimit:
		target = &d.CombineLimits
	case TableSkill:
		target = &d.Skills
	case TableTreasureDeviceAssignment:
		target = &d.TreasureDeviceAssignments
	case TableTreasureDevice:
		target = &d.TreasureDevices
	case TableIllustrator:
		target = &d.Illustrators
	case TableVoice:
		target = &d.Voices
	default:
		return fmt.Errorf("unknown table %q", table)
	}

	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to decode %s: %w", table, err)
	}
	return nil
}

// PrimaryRecord is one mstSvt row.
type PrimaryRecord struct {
	ID            Int     `json:"id"`
	Name          string  `json:"name"`
	NameEn        string  `json:"nameEn"`
	Ruby          string  `json:"ruby"`
	Type          Int     `json:"type"`
	ClassID       Int     `json:"classId"`
	Rarity        Int     `json:"rarity"`
	Attribute     Int     `json:"attri"`
	GenderType    Int     `json:"genderType"`
	Alignments    IntList `json:"alignments"`
	Individuality IntList `json:"individuality"`
	ClassPassive  IntList `json:"classPassive"`
	CardIDs       IntList `json:"cardIds"`
	Cost          Int     `json:"cost"`
	HPBase        Int     `json:"hpBase"`
	ATKBase       Int     `json:"atkBase"`
	StarRate      Int     `json:"starRate"`
	DeathRate     Int     `json:"deathRate"`
	IllustratorID Int     `json:"illustratorId"`
	CvID          Int     `json:"cvId"`
	CollectionNo  Int     `json:"collectionNo"`
	SellQP        Int     `json:"sellQp"`
	SellMana      Int     `json:"sellMana"`
	SellRarePri   Int     `json:"sellRarePri"`
}

// LimitRecord is one mstSvtLimit row.
type LimitRecord struct {
	SvtID          Int `json:"svtId"`
	LimitCount     Int `json:"limitCount"`
	Rarity         Int `json:"rarity"`
	LvMax          Int `json:"lvMax"`
	HPBase         Int `json:"hpBase"`
	HPMax          Int `json:"hpMax"`
	ATKBase        Int `json:"atkBase"`
	ATKMax         Int `json:"atkMax"`
	CriticalWeight Int `json:"criticalWeight"`
}

// CardRecord is one mstSvtCard row. CardID uses the CardType numbering.
type CardRecord struct {
	SvtID        Int     `json:"svtId"`
	CardID       Int     `json:"cardId"`
	NormalDamage IntList `json:"normalDamage"`
}

// SkillAssignmentRecord is one mstSvtSkill row.
type SkillAssignmentRecord struct {
	SvtID          Int  `json:"svtId"`
	Num            Int  `json:"num"`
	SkillID        Int  `json:"skillId"`
	CondLimitCount Int  `json:"condLimitCount"`
	CondQuest      Bool `json:"condQuest"`
	Strengthened   Bool `json:"strengthened"`
}

// CombineSkillRecord is one mstCombineSkill row: the cost of raising a skill from SkillLv.
type CombineSkillRecord struct {
	ID       Int     `json:"id"`
	SkillLv  Int     `json:"skillLv"`
	ItemIDs  IntList `json:"itemIds"`
	ItemNums IntList `json:"itemNums"`
	QP       Int     `json:"qp"`
}

// CombineLimitRecord is one mstCombineLimit row: the cost of ascending from SvtLimit.
type CombineLimitRecord struct {
	ID       Int     `json:"id"`
	SvtLimit Int     `json:"svtLimit"`
	ItemIDs  IntList `json:"itemIds"`
	ItemNums IntList `json:"itemNums"`
	QP       Int     `json:"qp"`
}

// SkillRecord is one mstSkill row.
type SkillRecord struct {
	ID    Int    `json:"id"`
	Name  string `json:"name"`
	Ruby  string `json:"ruby"`
	MaxLv Int    `json:"maxLv"`
}

// TreasureDeviceAssignmentRecord is one mstSvtTreasureDevice row.
type TreasureDeviceAssignmentRecord struct {
	SvtID            Int  `json:"svtId"`
	TreasureDeviceID Int  `json:"treasureDeviceId"`
	Num              Int  `json:"num"`
	Priority         Int  `json:"priority"`
	CardID           Int  `json:"cardId"`
	Strengthened     Bool `json:"strengthened"`
}

// TreasureDeviceRecord is one mstTreasureDevice row.
type TreasureDeviceRecord struct {
	ID       Int    `json:"id"`
	Name     string `json:"name"`
	Ruby     string `json:"ruby"`
	Rank     string `json:"rank"`
	TypeText string `json:"typeText"`
}

// NamedRecord is an id/name row (mstIllustrator, mstCv).
type NamedRecord struct {
	ID   Int    `json:"id"`
	Name string `json:"name"`
}

// Int is an int that also accepts string, float and bool JSON encodings.
type Int int

// UnmarshalJSON implements json.Unmarshaler.
func (i *Int) UnmarshalJSON(data []byte) error {
	v, err := decodeLoose(data)
	if err != nil {
		return err
	}
	*i = Int(utils.ToInt(v))
	return nil
}

// Bool is a bool that also accepts numeric and string JSON encodings.
type Bool bool

// UnmarshalJSON implements json.Unmarshaler.
func (b *Bool) UnmarshalJSON(data []byte) error {
	v, err := decodeLoose(data)
	if err != nil {
		return err
	}
	*b = Bool(utils.ToBool(v))
	return nil
}

// IntList is a list of Int. A JSON null decodes to an empty list.
type IntList []int

// UnmarshalJSON implements json.Unmarshaler.
func (l *IntList) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*l = IntList{}
		return nil
	}
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(IntList, len(raw))
	for i, v := range raw {
		out[i] = utils.ToInt(v)
	}
	*l = out
	return nil
}

func decodeLoose(data []byte) (any, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}
