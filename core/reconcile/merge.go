package reconcile

import (
	"regexp"
	"strings"

	"manifest-reconciler/core/tree"
)

// pathToken is replaced by the header's analytics prefix. Matching is exact.
const pathToken = "PATH"

// changeMeToken is replaced by the app id. It matches as a whole word in any
// letter case.
const changeMeToken = `\b(?i:changeme)\b`

// Placeholders are the per-header values substituted into merged content.
type Placeholders struct {
	AppID string
	// Prefix is empty when no analytics prefix was extracted.
	Prefix string
}

// Merge compiles one header: a copy of master with every header-only entry
// attached where master lacks it, followed by placeholder substitution.
// Master content is never removed or replaced. The returned count is the
// number of entries that could not be attached because master holds a node
// of another kind on their path.
func Merge(cfg Config, master *tree.Node, unique []DiffEntry, p Placeholders) (*tree.Node, Substitution, int) {
	m := cfg.Matcher()
	base := master.Clone()

	conflicts := 0
	for _, e := range unique {
		if !m.Attach(base, e.Path, e.Subtree) {
			conflicts++
		}
	}

	merged, stats := Substitute(cfg, base, p)
	return merged, stats, conflicts
}

// Substitute returns a copy of root with placeholder tokens replaced in
// every string value. All tokens of a value are replaced in a single pass,
// so substituted text is never rewritten again. Tokens without a value to
// substitute are left in place and counted as unresolved.
func Substitute(cfg Config, root *tree.Node, p Placeholders) (*tree.Node, Substitution) {
	pattern := changeMeToken + "|" + pathToken
	if cfg.AppPath != nil {
		pattern += "|(?:" + cfg.AppPath.String() + ")"
	}
	tokens := regexp.MustCompile(pattern)

	var stats Substitution
	out := root.MapStrings(func(s string) string {
		return tokens.ReplaceAllStringFunc(s, func(match string) string {
			switch {
			case strings.EqualFold(match, "changeme"):
				if p.AppID == "" {
					stats.UnresolvedAppID++
					return match
				}
				stats.AppID++
				return p.AppID
			case match == pathToken:
				if p.Prefix == "" {
					stats.Unresolved++
					return match
				}
				stats.Path++
				return p.Prefix
			case p.AppID != "":
				stats.AppPaths++
				return "/ocvapps/" + p.AppID + "/"
			default:
				return match
			}
		})
	})
	return out, stats
}
