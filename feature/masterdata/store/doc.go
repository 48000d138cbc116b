// Package store persists master-data entities with GORM.
//
// Every kind shares the master_entities table, keyed by (kind, id). The full
// entity is kept as a JSON document in the data column; collection_no and
// name are copied out for lookups. owner_id and created_at are written on
// create only.
//
// Store implements merge.Store. Merge applies the append rules in Append:
// stored values win, incoming values fill gaps, lists are unioned.
//
// Transient connection and lock errors are retried with exponential backoff.
package store
