package store

import (
	"fmt"

	"masterdata-importer/feature/masterdata/models"
)

// Append merges incoming into a copy of existing. Existing non-zero values
// are kept and incoming values only fill zero fields. Lists are unioned with
// existing entries first. Skill slots, upgrade steps and card hits keep what
// is stored and gain only what is missing. The id is always the stored one.
func Append(existing, incoming models.Entity) (models.Entity, error) {
	if existing.EntityKind() != incoming.EntityKind() {
		return nil, fmt.Errorf("cannot append %s into %s", incoming.EntityKind(), existing.EntityKind())
	}

	switch old := existing.(type) {
	case *models.Servant:
		return appendServant(old, incoming.(*models.Servant)), nil
	case *models.NPC:
		return appendNPC(old, incoming.(*models.NPC)), nil
	case *models.CraftEssence:
		return appendCraftEssence(old, incoming.(*models.CraftEssence)), nil
	case *models.EnhancementCard:
		return appendEnhancementCard(old, incoming.(*models.EnhancementCard)), nil
	case *models.CommandCode:
		return appendCommandCode(old, incoming.(*models.CommandCode)), nil
	default:
		return nil, fmt.Errorf("unsupported entity type %T", existing)
	}
}

func appendServant(old, in *models.Servant) *models.Servant {
	out := *old
	out.Identity = appendIdentity(old.Identity, in.Identity)
	out.Character = appendCharacter(old.Character, in.Character)
	out.SpiritOrigin = appendSpiritOrigin(old.SpiritOrigin, in.SpiritOrigin)
	out.Collectible = appendCollectible(old.Collectible, in.Collectible)
	fill(&out.Cost, in.Cost)
	fill(&out.Deck, in.Deck)
	fill(&out.Summonable, in.Summonable)
	fill(&out.Playable, in.Playable)
	out.Hits = fillMap(old.Hits, in.Hits)
	out.Skills = appendSkills(old.Skills, in.Skills)
	out.Passives = unionBy(old.Passives, in.Passives, func(r models.SkillRef) int { return r.ID })
	out.AscensionCosts = fillMap(old.AscensionCosts, in.AscensionCosts)
	out.SkillCosts = fillMap(old.SkillCosts, in.SkillCosts)
	out.NoblePhantasm = fillPtr(old.NoblePhantasm, in.NoblePhantasm)
	return &out
}

func appendNPC(old, in *models.NPC) *models.NPC {
	out := *old
	out.Identity = appendIdentity(old.Identity, in.Identity)
	out.Character = appendCharacter(old.Character, in.Character)
	out.Illustrator = fillPtr(old.Illustrator, in.Illustrator)
	fill(&out.NPCType, in.NPCType)
	return &out
}

func appendCraftEssence(old, in *models.CraftEssence) *models.CraftEssence {
	out := *old
	out.Identity = appendIdentity(old.Identity, in.Identity)
	out.SpiritOrigin = appendSpiritOrigin(old.SpiritOrigin, in.SpiritOrigin)
	out.Collectible = appendCollectible(old.Collectible, in.Collectible)
	fill(&out.Cost, in.Cost)
	out.Stats = appendStats(old.Stats, in.Stats)
	out.Effects = unionBy(old.Effects, in.Effects, func(r models.SkillRef) int { return r.ID })
	return &out
}

func appendEnhancementCard(old, in *models.EnhancementCard) *models.EnhancementCard {
	out := *old
	out.Identity = appendIdentity(old.Identity, in.Identity)
	out.SpiritOrigin = appendSpiritOrigin(old.SpiritOrigin, in.SpiritOrigin)
	fill(&out.CardKind, in.CardKind)
	return &out
}

func appendCommandCode(old, in *models.CommandCode) *models.CommandCode {
	out := *old
	out.Identity = appendIdentity(old.Identity, in.Identity)
	out.SpiritOrigin = appendSpiritOrigin(old.SpiritOrigin, in.SpiritOrigin)
	out.Collectible = appendCollectible(old.Collectible, in.Collectible)
	return &out
}

func appendIdentity(old, in models.Identity) models.Identity {
	// ID is never filled
	fill(&old.Name, in.Name)
	fill(&old.NameEn, in.NameEn)
	fill(&old.Ruby, in.Ruby)
	return old
}

func appendCharacter(old, in models.Character) models.Character {
	if old.Class == models.ClassUnknown || old.Class == "" {
		old.Class = in.Class
	}
	if old.Attribute == models.AttributeUnknown || old.Attribute == "" {
		old.Attribute = in.Attribute
	}
	if old.Gender == models.GenderUnknown || old.Gender == "" {
		old.Gender = in.Gender
	}
	old.Alignments = unionBy(old.Alignments, in.Alignments, func(a models.Alignment) models.Alignment { return a })
	old.Traits = unionBy(old.Traits, in.Traits, func(t int) int { return t })
	old.Stats = appendStats(old.Stats, in.Stats)
	fill(&old.StarRate, in.StarRate)
	fill(&old.DeathRate, in.DeathRate)
	fill(&old.CriticalWeight, in.CriticalWeight)
	old.Voice = fillPtr(old.Voice, in.Voice)
	return old
}

func appendStats(old, in models.Stats) models.Stats {
	fill(&old.LvMax, in.LvMax)
	fill(&old.HPBase, in.HPBase)
	fill(&old.HPMax, in.HPMax)
	fill(&old.ATKBase, in.ATKBase)
	fill(&old.ATKMax, in.ATKMax)
	return old
}

func appendSpiritOrigin(old, in models.SpiritOrigin) models.SpiritOrigin {
	fill(&old.Rarity, in.Rarity)
	fill(&old.Sell.QP, in.Sell.QP)
	fill(&old.Sell.Mana, in.Sell.Mana)
	fill(&old.Sell.RarePrism, in.Sell.RarePrism)
	return old
}

func appendCollectible(old, in models.Collectible) models.Collectible {
	fill(&old.CollectionNo, in.CollectionNo)
	old.Illustrator = fillPtr(old.Illustrator, in.Illustrator)
	return old
}

func appendSkills(old, in models.SkillSlots) models.SkillSlots {
	if len(old) == 0 && len(in) == 0 {
		return old
	}
	out := make(models.SkillSlots, len(old))
	for slot, s := range old {
		out[slot] = s
	}
	for slot, s := range in {
		cur, ok := out[slot]
		if !ok {
			out[slot] = s
			continue
		}
		cur.Base = fillPtr(cur.Base, s.Base)
		cur.Upgrade = fillPtr(cur.Upgrade, s.Upgrade)
		out[slot] = cur
	}
	return out
}

// fill sets *dst to v when *dst is the zero value.
func fill[T comparable](dst *T, v T) {
	var zero T
	if *dst == zero {
		*dst = v
	}
}

func fillPtr[T any](old, in *T) *T {
	if old != nil {
		return old
	}
	return in
}

// fillMap returns a copy of old with keys only present in in added.
func fillMap[K comparable, V any](old, in map[K]V) map[K]V {
	if old == nil && in == nil {
		return nil
	}
	out := make(map[K]V, len(old)+len(in))
	for k, v := range old {
		out[k] = v
	}
	for k, v := range in {
		if _, ok := out[k]; !ok {
			out[k] = v
		}
	}
	return out
}

// unionBy appends the items of in whose key is not already in old.
func unionBy[T any, K comparable](old, in []T, key func(T) K) []T {
	if old == nil && in == nil {
		return nil
	}
	seen := make(map[K]struct{}, len(old)+len(in))
	out := make([]T, 0, len(old)+len(in))
	for _, v := range old {
		if _, dup := seen[key(v)]; !dup {
			seen[key(v)] = struct{}{}
			out = append(out, v)
		}
	}
	for _, v := range in {
		if _, dup := seen[key(v)]; !dup {
			seen[key(v)] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}
