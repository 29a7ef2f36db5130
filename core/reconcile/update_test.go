package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdate_AddAndRemove(t *testing.T) {
	master := parse(t, `{
		"update": {"headerA": {"features": {"newFeature": {"text": "Hello"}}}},
		"remove": {"headerA": {"features": {"oldFeature": {}}}}
	}`)
	root := parse(t, `{"features": {"oldFeature": {"text": "Deprecated"}, "keep": {"text": "Keep"}}}`)

	out, stats, err := Update(DefaultConfig(), master, "headerA", root)
	require.NoError(t, err)

	jsonEqual(t, `{"features": {"keep": {"text": "Keep"}, "newFeature": {"text": "Hello"}}}`, out)
	assert.Equal(t, UpdateStats{Removed: 1, Added: 1}, stats)
	assert.True(t, stats.Changed())

	assert.True(t, root.Has("features"))
	old, _ := root.Get("features")
	assert.True(t, old.Has("oldFeature"), "input tree is not modified")
}

func TestUpdate_DottedInstructionKeys(t *testing.T) {
	master := parse(t, `{
		"update": {"headerA": {"features.newFeature": {"text": "Hello"}}},
		"remove": {"headerA": {"features.oldFeature": {}}}
	}`)
	root := parse(t, `{"features": {"oldFeature": {"text": "Deprecated"}}}`)

	out, _, err := Update(DefaultConfig(), master, "headerA", root)
	require.NoError(t, err)
	jsonEqual(t, `{"features": {"newFeature": {"text": "Hello"}}}`, out)
}

func TestUpdate_NeverOverwrites(t *testing.T) {
	master := parse(t, `{"update": {"headerA": {"features": {"welcome": {"text": "Master", "icon": "star"}}}}}`)
	root := parse(t, `{"features": {"welcome": {"text": "App"}}}`)

	out, stats, err := Update(DefaultConfig(), master, "headerA", root)
	require.NoError(t, err)

	jsonEqual(t, `{"features": {"welcome": {"text": "App", "icon": "star"}}}`, out)
	assert.Equal(t, UpdateStats{Added: 1, Skipped: 1}, stats)
}

func TestUpdate_RemoveRunsBeforeUpdate(t *testing.T) {
	master := parse(t, `{
		"update": {"headerA": {"features": {"welcome": {"text": "Fresh"}}}},
		"remove": {"headerA": ["features.welcome"]}
	}`)
	root := parse(t, `{"features": {"welcome": {"text": "Stale", "extra": 1}}}`)

	out, stats, err := Update(DefaultConfig(), master, "headerA", root)
	require.NoError(t, err)

	jsonEqual(t, `{"features": {"welcome": {"text": "Fresh"}}}`, out)
	assert.Equal(t, UpdateStats{Removed: 1, Added: 1}, stats)
}

func TestUpdate_UnresolvablePathsAreNoOps(t *testing.T) {
	master := parse(t, `{"remove": {"headerA": ["missing.deep", "features.tabs[featureID=none]"]}}`)
	root := parse(t, `{"features": {"tabs": [{"featureID": "home"}]}}`)

	out, stats, err := Update(DefaultConfig(), master, "headerA", root)
	require.NoError(t, err)

	jsonEqual(t, `{"features": {"tabs": [{"featureID": "home"}]}}`, out)
	assert.Equal(t, UpdateStats{Skipped: 2}, stats)
	assert.False(t, stats.Changed())
}

func TestUpdate_InvalidPathIsAnError(t *testing.T) {
	master := parse(t, `{"remove": {"headerA": ["features..x"]}}`)

	_, _, err := Update(DefaultConfig(), master, "headerA", parse(t, `{}`))
	assert.Error(t, err)
}

func TestUpdate_ListItems(t *testing.T) {
	master := parse(t, `{
		"remove": {"headerA": {"features": {"tabs": [{"featureID": "old"}]}}},
		"update": {"headerA": {"features": {"tabs": [
			{"featureID": "home", "title": "Ignored"},
			{"featureID": "events", "title": "Events"}
		]}}}
	}`)
	root := parse(t, `{"features": {"tabs": [
		{"featureID": "home", "title": "Home"},
		{"featureID": "old", "title": "Old"}
	]}}`)

	out, stats, err := Update(DefaultConfig(), master, "headerA", root)
	require.NoError(t, err)

	jsonEqual(t, `{"features": {"tabs": [
		{"featureID": "home", "title": "Home"},
		{"featureID": "events", "title": "Events"}
	]}}`, out)
	assert.Equal(t, UpdateStats{Removed: 1, Added: 1, Skipped: 1}, stats)
}

func TestUpdate_InsertIndex(t *testing.T) {
	master := parse(t, `{"update": {"headerA": {"blocks": [
		{"insert_index": 1, "payload": {"headerText": "Patched", "color": "red"}},
		{"insert_index": 9, "type": "appended"},
		{"type": "new", "meta": {"insert_index": 0}}
	]}}}`)
	root := parse(t, `{"blocks": [
		{"type": "first"},
		{"type": "second", "payload": {"headerText": "Kept"}}
	]}`)

	out, stats, err := Update(DefaultConfig(), master, "headerA", root)
	require.NoError(t, err)

	jsonEqual(t, `{"blocks": [
		{"type": "first"},
		{"type": "second", "payload": {"headerText": "Kept", "color": "red"}},
		{"type": "appended"},
		{"type": "new", "meta": {}}
	]}`, out)
	assert.Equal(t, 3, stats.Added)
}

func TestUpdate_NegativeInsertIndexPatchesFirstElement(t *testing.T) {
	master := parse(t, `{"update": {"headerA": {"blocks": [{"insert_index": -2, "color": "red"}]}}}`)
	root := parse(t, `{"blocks": [{"type": "first"}, {"type": "second"}]}`)

	out, stats, err := Update(DefaultConfig(), master, "headerA", root)
	require.NoError(t, err)

	jsonEqual(t, `{"blocks": [{"type": "first", "color": "red"}, {"type": "second"}]}`, out)
	assert.Equal(t, UpdateStats{Added: 1}, stats)
}

func TestUpdate_GlobalScope(t *testing.T) {
	master := parse(t, `{
		"update": {
			"*": {"features": {"help": {"text": "Help"}}},
			"headerA": {"features": {"help": {"icon": "q"}}}
		}
	}`)

	out, _, err := Update(DefaultConfig(), master, "headerA", parse(t, `{}`))
	require.NoError(t, err)
	jsonEqual(t, `{"features": {"help": {"text": "Help", "icon": "q"}}}`, out)

	out, _, err = Update(DefaultConfig(), master, "headerB", parse(t, `{}`))
	require.NoError(t, err)
	jsonEqual(t, `{"features": {"help": {"text": "Help"}}}`, out)
}

func TestUpdate_Override(t *testing.T) {
	master := parse(t, `{
		"headerA": {"features": {"alerts": {"text": "Master alerts", "list": [1, 2]}}},
		"override": {"headerA": ["alerts", "unknown"]}
	}`)
	root := parse(t, `{"features": {"alerts": {"text": "App alerts", "extra": true}}}`)

	out, stats, err := Update(DefaultConfig(), master, "headerA", root)
	require.NoError(t, err)

	jsonEqual(t, `{"features": {"alerts": {"text": "Master alerts", "list": [1, 2]}}}`, out)
	assert.Equal(t, UpdateStats{Overridden: 1, Skipped: 1}, stats)

	again, stats, err := Update(DefaultConfig(), master, "headerA", out)
	require.NoError(t, err)
	jsonEqual(t, toJSON(t, out), again)
	assert.Equal(t, UpdateStats{Skipped: 2}, stats)
}

func TestUpdate_OverrideObjectCreatesFeatures(t *testing.T) {
	master := parse(t, `{"override": {"headerA": {"menu": {"items": []}}}}`)

	out, stats, err := Update(DefaultConfig(), master, "headerA", parse(t, `{"pages": {}}`))
	require.NoError(t, err)

	jsonEqual(t, `{"pages": {}, "features": {"menu": {"items": []}}}`, out)
	assert.Equal(t, 1, stats.Overridden)
}
