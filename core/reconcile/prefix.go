package reconcile

import (
	"strings"

	"manifest-reconciler/core/tree"
)

const (
	settingsFeature = "openSettings"
	prefixSegments  = 3
)

// ExtractPrefix returns the analytics prefix of a header root: the first two
// pipe-separated segments of the first qualifying features.*.analyticsName,
// in declared feature order. Settings entries do not qualify. Extraction
// stops at the first qualifying value; it fails if that value does not have
// exactly three segments.
func ExtractPrefix(root *tree.Node) (string, bool) {
	features, ok := root.Get("features")
	if !ok || !features.IsObject() {
		return "", false
	}

	for _, name := range features.Keys() {
		if name == settingsFeature {
			continue
		}
		feature, _ := features.Get(name)
		value, ok := feature.Get("analyticsName")
		if !ok {
			continue
		}
		text, ok := value.Text()
		if !ok || text == "" || text == settingsFeature || strings.HasSuffix(text, "|"+settingsFeature) {
			continue
		}

		parts := strings.Split(text, "|")
		if len(parts) != prefixSegments {
			return "", false
		}
		return parts[0] + "|" + parts[1], true
	}
	return "", false
}
