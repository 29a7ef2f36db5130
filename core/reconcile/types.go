package reconcile

import (
	"errors"
	"fmt"
	"strings"

	"manifest-reconciler/core/tree"
)

// ErrInvalidMode is returned for a mode other than audit, merge or update.
var ErrInvalidMode = errors.New("invalid mode")

// Mode selects the operation performed by Engine.Run.
type Mode string

const (
	// ModeAudit reports differences between master and every header.
	ModeAudit Mode = "audit"
	// ModeMerge compiles master plus header-only content per header.
	ModeMerge Mode = "merge"
	// ModeUpdate applies master's remove/update/override instructions.
	ModeUpdate Mode = "update"
)

// ParseMode validates a mode name. Matching is case-insensitive.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeAudit, ModeMerge, ModeUpdate:
		return m, nil
	}
	return "", fmt.Errorf("%w %q: expected audit, merge or update", ErrInvalidMode, s)
}

// DiffEntry is a whole node present on one side only.
type DiffEntry struct {
	// Path locates the node from the header root.
	Path tree.Path `json:"path"`

	// Subtree is the node content with ignored keys removed.
	Subtree *tree.Node `json:"subtree"`
}

// TextDiffEntry is a scalar leaf present on both sides with different values.
type TextDiffEntry struct {
	Path        tree.Path  `json:"path"`
	AppValue    *tree.Node `json:"app_value"`
	MasterValue *tree.Node `json:"master_value"`
}

// HeaderDiff holds the findings for a single header.
type HeaderDiff struct {
	// Header is the header name.
	Header string `json:"header"`

	// Missing lists nodes present in master but not in the header.
	Missing []DiffEntry `json:"missing"`

	// Unique lists nodes present in the header but not in master.
	Unique []DiffEntry `json:"unique"`

	// Text lists scalar mismatches.
	Text []TextDiffEntry `json:"text"`

	// Labels counts label keys touched while walking this header.
	Labels map[string]int `json:"labels"`
}

// SummaryEntry groups identical findings across headers.
type SummaryEntry struct {
	Path    tree.Path  `json:"path"`
	Subtree *tree.Node `json:"subtree"`

	// Count is the number of occurrences across all headers.
	Count int `json:"count"`

	// Headers lists the headers containing the finding, in processing order.
	Headers []string `json:"headers"`
}

// KeyLabelEntry is the frequency of one label key.
type KeyLabelEntry struct {
	Key         string   `json:"key"`
	TotalCount  int      `json:"total_count"`
	HeaderCount int      `json:"header_count"`
	Headers     []string `json:"headers"`
}

// AuditReport is the output of audit mode.
type AuditReport struct {
	// Headers lists the processed headers in working manifest order.
	Headers []string `json:"headers"`

	MissingContent map[string][]DiffEntry     `json:"missing_content"`
	UniqueContent  map[string][]DiffEntry     `json:"unique_content"`
	TextDiff       map[string][]TextDiffEntry `json:"text_diff"`

	// Summary groups missing entries; UniqueSummary groups unique entries.
	Summary         []SummaryEntry  `json:"summary"`
	UniqueSummary   []SummaryEntry  `json:"unique_summary"`
	KeyLabelSummary []KeyLabelEntry `json:"key_label_summary"`

	DiffCountMaster map[string]int `json:"diff_count_master"`
	DiffCountApp    map[string]int `json:"diff_count_app"`

	// Prefixes holds the analytics prefix of every header it could be extracted from.
	Prefixes map[string]string `json:"prefixes"`
}

// LegacyAudit is the two-category audit layout. Text mismatches are folded
// into both categories: DiffMaster carries the master value and DiffApp the
// app value.
type LegacyAudit struct {
	Headers         []string               `json:"headers"`
	DiffMaster      map[string][]DiffEntry `json:"diff_master"`
	DiffApp         map[string][]DiffEntry `json:"diff_app"`
	DiffCountMaster map[string]int         `json:"diff_count_master"`
	DiffCountApp    map[string]int         `json:"diff_count_app"`
	Prefixes        map[string]string      `json:"prefixes"`
}

// Substitution counts placeholder rewrites in one merged header.
type Substitution struct {
	AppID int `json:"app_id"`
	Path  int `json:"path"`

	// AppPaths counts rewritten app path segments.
	AppPaths int `json:"app_paths"`

	// Unresolved counts PATH tokens left in place for lack of a prefix.
	Unresolved int `json:"unresolved"`

	// UnresolvedAppID counts ChangeMe tokens left in place for lack of an app id.
	UnresolvedAppID int `json:"unresolved_app_id"`
}

// MergeReport is the output of merge mode.
type MergeReport struct {
	// Manifest maps header name to merged root.
	Manifest *tree.Node `json:"manifest"`

	Prefixes      map[string]string       `json:"prefixes"`
	Substitutions map[string]Substitution `json:"substitutions"`
}

// Document wraps the merged headers in the manifest envelope.
func (r *MergeReport) Document() *tree.Node {
	return tree.NewObject().Set("manifest", r.Manifest)
}

// UpdateStats counts instruction outcomes for one header.
type UpdateStats struct {
	Removed    int `json:"removed"`
	Added      int `json:"added"`
	Overridden int `json:"overridden"`

	// Skipped counts instructions that changed nothing.
	Skipped int `json:"skipped"`
}

// Changed reports whether any instruction modified the header.
func (s UpdateStats) Changed() bool {
	return s.Removed+s.Added+s.Overridden > 0
}

// UpdateReport is the output of update mode.
type UpdateReport struct {
	// Manifest maps header name to updated root for the processed headers.
	Manifest *tree.Node `json:"manifest"`

	// Headers lists the processed headers.
	Headers []string               `json:"headers"`
	Stats   map[string]UpdateStats `json:"stats"`
}

// Document wraps the updated headers in the manifest envelope.
func (r *UpdateReport) Document() *tree.Node {
	return tree.NewObject().Set("manifest", r.Manifest)
}

// Result is the outcome of Engine.Run. Exactly one report is set.
type Result struct {
	Mode   Mode
	Audit  *AuditReport
	Merge  *MergeReport
	Update *UpdateReport
}
