// Package masterdata implements the master-data import feature.
//
// An import run reads the flat tables of one region's dump, indexes them,
// assembles typed entities and merges them into the database:
//
//  1. Source: storage prefix, single bundle object or local directory.
//  2. Index: per-table lookups keyed by owner id (package index).
//  3. Assemble: one entity per primary record (package assemble).
//  4. Merge: per-kind policy against stored copies (core/merge over package store).
//
// A run can also import a pre-assembled entity set, skipping steps 1 to 3.
//
// # Components
//
//   - Service: Orchestrates one run and writes the run report.
//   - Config: Source, worker and policy settings under the import.* keys.
//   - KindSelection: Turns command line kind filters into merge options.
//
// Every run gets a run id. Log lines carry it as run_id, and the report is
// uploaded to <import.report_prefix>/<run id>.json when a prefix is set.
package masterdata
