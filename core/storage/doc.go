// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client and exposes only what the reconciler uses:
// reading marketplace batch-results exports stored in a bucket and writing
// run reports. Both AWS S3 and self-hosted MinIO instances are supported.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it easier
// to mock storage interactions for unit testing (see core/storage/mocks).
//
// # Locations
//
// ParseURI splits s3://bucket/key locations used in configuration and flags.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	bucket, key, ok := storage.ParseURI("s3://exports/batch.csv")
//	rc, err := client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
package storage
