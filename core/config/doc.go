// Package config provides configuration management for the manifest reconciler.
//
// Values come from the process environment, optionally seeded from a .env
// file, and fall back to the `default` struct tags of each section.
//
// # Configuration Structure
//
// The Config struct is divided into subsections:
//   - Storage: S3/MinIO credentials and the default bucket for s3:// locations
//   - Log: logging level and format
//   - Reconcile: ignored keys and header prefixes, stable key fields, label
//     keys, the app path pattern, the master template header and workers
//
// Keys map to environment variables by upper-casing and replacing dots with
// underscores: reconcile.ignored_keys is RECONCILE_IGNORED_KEYS. List values
// are comma separated.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	rules, err := cfg.Reconcile.Build()
package config
