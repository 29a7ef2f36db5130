package reconcile

import (
	"encoding/json"
	"testing"

	"manifest-reconciler/core/tree"

	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, s string) *tree.Node {
	t.Helper()
	n, err := tree.Parse([]byte(s))
	require.NoError(t, err)
	return n
}

func path(t *testing.T, s string) tree.Path {
	t.Helper()
	p, err := tree.ParsePath(s)
	require.NoError(t, err)
	return p
}

func toJSON(t *testing.T, v any) string {
	t.Helper()
	out, err := json.Marshal(v)
	require.NoError(t, err)
	return string(out)
}

func paths(entries []DiffEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Path.String()
	}
	return out
}
