// Package assemble reconstructs master-data entities from an index.
//
// The Assembler classifies each primary record by its type discriminator and
// hands it to one builder per entity shape. Skill slots, upgrade costs, card
// decks and noble phantasms are composed by the Compose* functions, which can
// also be used on their own.
//
// Assembly is pure. A record that cannot be assembled is logged and returned
// as a Failure; the rest of the pass continues.
//
// Type discriminators:
//
//	-1      placeholder, skipped
//	1, 2    servant (1 is also summonable)
//	9       template servant, not playable, no active skills
//	4, 5    NPC
//	3, 7    enhancement card (experience, status up)
//	6       craft essence
//	11      command code
//
// Servant records with collection number 0 are skipped. Records are taken from
// the index, one per id in first-seen order; a duplicated id uses its last row.
package assemble
