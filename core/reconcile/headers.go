package reconcile

import (
	"manifest-reconciler/core/tree"
	"manifest-reconciler/core/utils"
)

// Reserved master keys holding update instructions rather than headers.
const (
	keyRemove   = "remove"
	keyUpdate   = "update"
	keyOverride = "override"
)

// SelectHeaders returns the working manifest's header names in declared
// order, without those starting with an ignored prefix. Prefix matching is
// case-insensitive. Non-object headers are skipped.
func SelectHeaders(cfg Config, working *tree.Node) []string {
	headers := make([]string, 0, working.Len())
	for _, name := range working.Keys() {
		if IsIgnoredHeader(cfg, name) {
			continue
		}
		if root, _ := working.Get(name); !root.IsObject() {
			continue
		}
		headers = append(headers, name)
	}
	return headers
}

// IsIgnoredHeader reports whether a header is excluded from processing.
func IsIgnoredHeader(cfg Config, name string) bool {
	for _, prefix := range cfg.IgnoredHeaderPrefixes {
		if utils.HasPrefixFold(name, prefix) {
			return true
		}
	}
	return false
}

// MasterRoot resolves the master tree compared against a header. It falls
// back to the configured template header. The bool is false when neither
// exists, in which case an empty object is returned.
func MasterRoot(cfg Config, master *tree.Node, header string) (*tree.Node, bool) {
	if root, ok := master.Get(header); ok && root.IsObject() {
		return root, true
	}
	if cfg.MasterTemplate != "" {
		if root, ok := master.Get(cfg.MasterTemplate); ok && root.IsObject() {
			return root, true
		}
	}
	return tree.NewObject(), false
}
