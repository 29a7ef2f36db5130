// Package manifest runs manifest reconciliations end to end.
//
// A run loads the master and working manifests (concurrently, from files,
// stdin or object storage), hands them to the reconcile engine in audit,
// merge or update mode and writes the resulting document as JSON or YAML.
//
// # Outputs
//
//   - audit: the three-category report, or the two-category legacy layout
//   - merge: {"manifest": {<header>: <merged root>}}
//   - update: {"manifest": {<header>: <updated root>}}, optionally with a
//     second document holding one JSON merge patch per changed header
//
// Reporter renders the same results as console tables.
package manifest
