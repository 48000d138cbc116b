// Package models defines the flat dump records, the assembled master-data
// entities and the persistence row they are stored in.
//
// Numeric record fields use Int, IntList and Bool so that dumps which encode
// numbers as strings still decode. Enum mappings degrade to an explicit
// Unknown value for unmapped codes, except Deck which has no default.
package models
