package models

import "fmt"

// Class is a servant class.
type Class string

const (
	ClassUnknown        Class = "unknown"
	ClassSaber          Class = "saber"
	ClassArcher         Class = "archer"
	ClassLancer         Class = "lancer"
	ClassRider          Class = "rider"
	ClassCaster         Class = "caster"
	ClassAssassin       Class = "assassin"
	ClassBerserker      Class = "berserker"
	ClassShielder       Class = "shielder"
	ClassRuler          Class = "ruler"
	ClassAlterEgo       Class = "alterEgo"
	ClassAvenger        Class = "avenger"
	ClassDemonGodPillar Class = "demonGodPillar"
	ClassGrandCaster    Class = "grandCaster"
	ClassBeastII        Class = "beastII"
	ClassBeastI         Class = "beastI"
	ClassMoonCancer     Class = "moonCancer"
	ClassBeastIIIR      Class = "beastIIIR"
	ClassForeigner      Class = "foreigner"
	ClassBeastIIIL      Class = "beastIIIL"
	ClassBeastUnknown   Class = "beastUnknown"
	ClassPretender      Class = "pretender"
	ClassBeastIV        Class = "beastIV"
)

var classByCode = map[int]Class{
	1:  ClassSaber,
	2:  ClassArcher,
	3:  ClassLancer,
	4:  ClassRider,
	5:  ClassCaster,
	6:  ClassAssassin,
	7:  ClassBerserker,
	8:  ClassShielder,
	9:  ClassRuler,
	10: ClassAlterEgo,
	11: ClassAvenger,
	12: ClassDemonGodPillar,
	17: ClassGrandCaster,
	20: ClassBeastII,
	22: ClassBeastI,
	23: ClassMoonCancer,
	24: ClassBeastIIIR,
	25: ClassForeigner,
	26: ClassBeastIIIL,
	27: ClassBeastUnknown,
	28: ClassPretender,
	29: ClassBeastIV,
}

// ClassFromCode maps a classId. Unmapped codes yield ClassUnknown.
func ClassFromCode(code int) Class {
	if c, ok := classByCode[code]; ok {
		return c
	}
	return ClassUnknown
}

// Attribute is the hidden attribute.
type Attribute string

const (
	AttributeUnknown Attribute = "unknown"
	AttributeHuman   Attribute = "human"
	AttributeSky     Attribute = "sky"
	AttributeEarth   Attribute = "earth"
	AttributeStar    Attribute = "star"
	AttributeBeast   Attribute = "beast"
)

var attributeByCode = map[int]Attribute{
	1: AttributeHuman,
	2: AttributeSky,
	3: AttributeEarth,
	4: AttributeStar,
	5: AttributeBeast,
}

// AttributeFromCode maps an attri code. Unmapped codes yield AttributeUnknown.
func AttributeFromCode(code int) Attribute {
	if a, ok := attributeByCode[code]; ok {
		return a
	}
	return AttributeUnknown
}

// Gender of a character. GenderNone is a real value, not a fallback.
type Gender string

const (
	GenderUnknown Gender = "unknown"
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderNone    Gender = "none"
)

var genderByCode = map[int]Gender{
	1: GenderMale,
	2: GenderFemale,
	3: GenderNone,
}

// GenderFromCode maps a genderType. Unmapped codes yield GenderUnknown.
func GenderFromCode(code int) Gender {
	if g, ok := genderByCode[code]; ok {
		return g
	}
	return GenderUnknown
}

// Alignment is one component of a character's alignment.
type Alignment string

const (
	AlignmentUnknown  Alignment = "unknown"
	AlignmentLawful   Alignment = "lawful"
	AlignmentChaotic  Alignment = "chaotic"
	AlignmentNeutral  Alignment = "neutral"
	AlignmentGood     Alignment = "good"
	AlignmentEvil     Alignment = "evil"
	AlignmentBalanced Alignment = "balanced"
	AlignmentMadness  Alignment = "madness"
	AlignmentSummer   Alignment = "summer"
)

var alignmentByCode = map[int]Alignment{
	300: AlignmentLawful,
	301: AlignmentChaotic,
	302: AlignmentNeutral,
	303: AlignmentGood,
	304: AlignmentEvil,
	305: AlignmentBalanced,
	306: AlignmentMadness,
	308: AlignmentSummer,
}

// AlignmentFromCode maps an alignment code. Unmapped codes yield AlignmentUnknown.
func AlignmentFromCode(code int) Alignment {
	if a, ok := alignmentByCode[code]; ok {
		return a
	}
	return AlignmentUnknown
}

// CardType is a command card colour as numbered in mstSvtCard.
type CardType int

const (
	CardArts   CardType = 1
	CardBuster CardType = 2
	CardQuick  CardType = 3
	CardExtra  CardType = 4

	// npExclusiveBase offsets the 1-based ordinal of an NP-exclusive card row.
	npExclusiveBase = 9
)

// BaseCards are the card rows every playable servant must carry.
var BaseCards = []CardType{CardArts, CardBuster, CardQuick, CardExtra}

// NPExclusiveCard returns the card id of the n-th (1-based) NP-exclusive row.
func NPExclusiveCard(n int) CardType {
	return CardType(npExclusiveBase + n)
}

func (c CardType) String() string {
	switch c {
	case CardArts:
		return "arts"
	case CardBuster:
		return "buster"
	case CardQuick:
		return "quick"
	case CardExtra:
		return "extra"
	}
	if c > npExclusiveBase {
		return fmt.Sprintf("exclusive%d", int(c)-npExclusiveBase)
	}
	return "unknown"
}

// letter returns the deck letter of a deck-capable card.
func (c CardType) letter() (byte, bool) {
	switch c {
	case CardArts:
		return 'A', true
	case CardBuster:
		return 'B', true
	case CardQuick:
		return 'Q', true
	}
	return 0, false
}

// Deck is one of the six legal five-card compositions.
type Deck string

const (
	DeckQQQAB Deck = "QQQAB"
	DeckQQAAB Deck = "QQAAB"
	DeckQAAAB Deck = "QAAAB"
	DeckQQABB Deck = "QQABB"
	DeckQAABB Deck = "QAABB"
	DeckQABBB Deck = "QABBB"
)

// Decks lists every legal deck.
var Decks = []Deck{DeckQQQAB, DeckQQAAB, DeckQAAAB, DeckQQABB, DeckQAABB, DeckQABBB}

// DeckFromCards folds a five-card id list into a Deck. ok is false for any
// composition outside the six legal decks.
func DeckFromCards(cards []int) (Deck, bool) {
	if len(cards) != 5 {
		return "", false
	}
	buf := make([]byte, len(cards))
	for i, id := range cards {
		l, ok := CardType(id).letter()
		if !ok {
			return "", false
		}
		buf[i] = l
	}
	candidate := Deck(buf)
	for _, d := range Decks {
		if d == candidate {
			return d, true
		}
	}
	return "", false
}

// Entity type discriminator values from mstSvt.type.
const (
	TypePlaceholder     = -1
	TypeNormal          = 1
	TypeHeroine         = 2
	TypeCombineMaterial = 3
	TypeEnemy           = 4
	TypeEnemyCollection = 5
	TypeServantEquip    = 6
	TypeStatusUp        = 7
	TypeTemplate        = 9
	TypeCommandCode     = 11
)
