// Package integrity provides pre-import health checks.
//
// Unlike the 'masterdata' package which imports content, this package
// validates that an import can run at all.
//
// # Checks Provided
//
//   - Dump: Checks that every required table exists under the region prefix in the storage bucket.
//     Missing optional tables (illustrators, voice actors) are reported but do not fail the check.
//   - Schema: Validates that the connected database has the master_entities columns and primary key.
package integrity
