// Package reconcile compares per-application manifest headers against a
// master manifest and derives audit reports, merged headers and updated
// headers from the comparison.
//
// # Modes
//
//   - Audit: Diff every header against its master root and aggregate the
//     findings across headers (Summarize, SummarizeLabels).
//   - Merge: start from a copy of the master root, attach the header-only
//     content found by Diff, then substitute placeholders (Substitute).
//   - Update: apply the remove, update and override instructions master
//     declares for a header directly onto the working header (Update).
//
// Master wins every conflict: merge never replaces a node master already
// has, and update instructions only add what is missing. Overrides are the
// exception: they replace whole features.
//
// # Configuration
//
// All rules (ignored keys, ignored header prefixes, stable key fields,
// label keys, app path pattern) travel in an explicit Config value built
// from Settings:
//
//	cfg, err := reconcile.DefaultSettings().Build()
//	engine := reconcile.NewEngine(cfg, logger)
//	res, err := engine.Run(ctx, reconcile.ModeAudit, master, working, "")
//
// Headers are processed concurrently on an errgroup bounded by
// Config.Workers. Per-header results are written to disjoint slots and
// aggregated after all workers finish.
package reconcile
