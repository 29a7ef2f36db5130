// Package loader reads and writes manifest documents.
//
// A location is one of:
//   - a local file path
//   - "-" for stdin (reads) or stdout (writes)
//   - "s3://bucket/key" for an object in S3 or MinIO, read through core/storage
//
// # Decoding
//
// Documents are JSON or YAML, chosen by file extension and otherwise sniffed
// from the first byte. Object key order is preserved in both formats. A
// document whose top-level value is a JSON string is decoded again until it
// yields a non-string value ("double encoding").
//
// # Manifests
//
// LoadManifest additionally unwraps the {"manifest": {...}} envelope and
// requires the result to be an object mapping header names to trees.
//
// # Usage
//
//	l := loader.New(client, cfg.Storage.Bucket)
//	master, err := l.LoadManifest(ctx, "s3://manifests/master.json")
//	data, err := loader.Encode(report, loader.FormatYAML)
//	err = l.Write(ctx, "-", data)
package loader
