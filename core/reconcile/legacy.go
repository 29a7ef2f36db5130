package reconcile

// Legacy folds the audit into the two-category layout. Each text mismatch
// is reported in both categories with the value of the respective side.
func (r *AuditReport) Legacy() *LegacyAudit {
	out := &LegacyAudit{
		Headers:         r.Headers,
		DiffMaster:      make(map[string][]DiffEntry, len(r.Headers)),
		DiffApp:         make(map[string][]DiffEntry, len(r.Headers)),
		DiffCountMaster: make(map[string]int, len(r.Headers)),
		DiffCountApp:    make(map[string]int, len(r.Headers)),
		Prefixes:        r.Prefixes,
	}

	for _, h := range r.Headers {
		master := append([]DiffEntry{}, r.MissingContent[h]...)
		app := append([]DiffEntry{}, r.UniqueContent[h]...)
		for _, t := range r.TextDiff[h] {
			master = append(master, DiffEntry{Path: t.Path, Subtree: t.MasterValue})
			app = append(app, DiffEntry{Path: t.Path, Subtree: t.AppValue})
		}
		out.DiffMaster[h] = master
		out.DiffApp[h] = app
		out.DiffCountMaster[h] = len(master)
		out.DiffCountApp[h] = len(app)
	}
	return out
}
