package storage

import "strings"

// Scheme prefixes object locations given on the command line.
const Scheme = "s3://"

// ParseURI splits "s3://bucket/key" into its parts. An empty bucket
// ("s3:///key" or "s3://key" without a slash) is returned as "" so the
// caller can apply its default bucket. ok is false when s is not an s3 URI.
func ParseURI(s string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(s, Scheme)
	if !found {
		return "", "", false
	}
	bucket, key, found = strings.Cut(rest, "/")
	if !found {
		return "", bucket, true
	}
	return bucket, key, true
}
