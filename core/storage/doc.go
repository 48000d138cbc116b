// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client. Published master-data dumps are read from a
// bucket and import reports are written back to it. Works against AWS S3 and
// self-hosted MinIO instances.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it easier
// to mock storage interactions for unit testing (see core/storage/mocks).
//
// # Helpers
//
//   - ReadObject: downloads an object into memory.
//   - WriteObject: uploads a byte slice with a content type.
//   - ListKeys: lists every key under a prefix.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	data, err := storage.ReadObject(ctx, client, "masterdata", "masterdata/jp/mstSvt.json")
package storage
