// Package source loads published master-data dumps.
//
// A dump is read from one of three layouts:
//
//   - StorageSource: one object per table under a bucket prefix (masterdata/<region>/mstSvt.json).
//   - BundleSource: a single object holding every table, split with gjson.
//   - DirSource: one file per table in a local directory.
//
// LoadEntities reads an already assembled EntitySet instead of flat tables.
// Fetching the dump from the game itself is not handled here.
package source
