package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"

	"manifest-reconciler/core/reconcile"
	"manifest-reconciler/core/tree"

	jsonpatch "github.com/evanphx/json-patch/v5"
)

var emptyPatch = []byte("{}")

// ChangePatches describes what an update run changed as one RFC 7386 merge
// patch per header, computed from the working header to its updated tree.
// Unchanged headers are left out.
func ChangePatches(working *tree.Node, report *reconcile.UpdateReport) (map[string]json.RawMessage, error) {
	patches := make(map[string]json.RawMessage)
	for _, header := range report.Headers {
		if !report.Stats[header].Changed() {
			continue
		}
		before, ok := working.Get(header)
		if !ok {
			before = tree.NewObject()
		}
		after, ok := report.Manifest.Get(header)
		if !ok {
			continue
		}

		patch, err := mergePatch(before, after)
		if err != nil {
			return nil, fmt.Errorf("patch %s: %w", header, err)
		}
		if bytes.Equal(patch, emptyPatch) {
			continue
		}
		patches[header] = patch
	}
	return patches, nil
}

func mergePatch(before, after *tree.Node) ([]byte, error) {
	original, err := json.Marshal(before)
	if err != nil {
		return nil, err
	}
	modified, err := json.Marshal(after)
	if err != nil {
		return nil, err
	}
	return jsonpatch.CreateMergePatch(original, modified)
}
