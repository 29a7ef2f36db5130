// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client so manifests can be read from and written to
// AWS S3 or self-hosted MinIO with "s3://bucket/key" locations.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it easier
// to mock storage interactions for unit testing (see core/storage/mocks).
//
// # Operations
//
//   - BucketExists: Verifies access to the target bucket.
//   - GetObject: Retrieves content as a stream.
//   - PutObject: Uploads content (with size and options).
//   - StatObject: Checks whether an object exists before it is overwritten.
//
// # Usage
//
//	client, err := storage.NewClient(config)
//	bucket, key, ok := storage.ParseURI("s3://manifests/master.json")
//	obj, err := client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
package storage
