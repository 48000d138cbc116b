// Package index builds in-memory lookups over the flat dump tables.
//
// One-to-one tables map id to row. One-to-many tables are keyed by owner id
// and then by the table's own ordinal (slot, skill level, ascension tier), so
// a lookup by (owner, ordinal) never scans.
package index
