package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	cfg := DefaultConfig()
	master := parse(t, `{"features": {"alerts": {"text": "A"}, "news": {"text": "N"}}}`)

	entries := map[string][]DiffEntry{}
	headers := []string{"h1", "h2", "h3"}
	apps := map[string]string{
		"h1": `{"features": {}}`,
		"h2": `{"features": {"news": {"text": "N"}}}`,
		"h3": `{"features": {"news": {"text": "N"}, "alerts": {"text": "A", "url": "ignored"}}}`,
	}
	for _, h := range headers {
		entries[h] = Diff(cfg, master, parse(t, apps[h])).Missing
	}

	summary := Summarize(cfg.Matcher(), headers, entries)
	require.Len(t, summary, 2)

	assert.Equal(t, "features.alerts", summary[0].Path.String())
	assert.Equal(t, 2, summary[0].Count)
	assert.Equal(t, []string{"h1", "h2"}, summary[0].Headers)

	assert.Equal(t, "features.news", summary[1].Path.String())
	assert.Equal(t, 1, summary[1].Count)
	assert.Equal(t, []string{"h1"}, summary[1].Headers)
}

func TestSummarize_SamePathDifferentContent(t *testing.T) {
	cfg := DefaultConfig()
	p := path(t, "features.x")
	entries := map[string][]DiffEntry{
		"h1": {{Path: p, Subtree: parse(t, `{"v": 1}`)}},
		"h2": {{Path: p, Subtree: parse(t, `{"v": 2}`)}},
		"h3": {{Path: p, Subtree: parse(t, `{"v": 1}`)}, {Path: p, Subtree: parse(t, `{"v": 1}`)}},
	}

	summary := Summarize(cfg.Matcher(), []string{"h1", "h2", "h3"}, entries)
	require.Len(t, summary, 2)
	assert.Equal(t, 3, summary[0].Count)
	assert.Equal(t, []string{"h1", "h3"}, summary[0].Headers)
	assert.Equal(t, []string{"h2"}, summary[1].Headers)
}

func TestSummarize_Empty(t *testing.T) {
	summary := Summarize(DefaultConfig().Matcher(), nil, nil)
	assert.NotNil(t, summary)
	assert.Empty(t, summary)
}

func TestSummarizeLabels(t *testing.T) {
	diffs := []HeaderDiff{
		{Header: "h1", Labels: map[string]int{"featureID": 3, "title": 1}},
		{Header: "h2", Labels: map[string]int{"featureID": 1}},
		{Header: "h3", Labels: map[string]int{}},
	}

	labels := SummarizeLabels(diffs)
	require.Len(t, labels, 2)
	assert.Equal(t, KeyLabelEntry{Key: "featureID", TotalCount: 4, HeaderCount: 2, Headers: []string{"h1", "h2"}}, labels[0])
	assert.Equal(t, KeyLabelEntry{Key: "title", TotalCount: 1, HeaderCount: 1, Headers: []string{"h1"}}, labels[1])
}

func TestAuditReport_Legacy(t *testing.T) {
	cfg := DefaultConfig()
	d := Diff(cfg,
		parse(t, `{"a": 1, "gone": true}`),
		parse(t, `{"a": 2, "added": true}`))

	report := &AuditReport{
		Headers:        []string{"h"},
		MissingContent: map[string][]DiffEntry{"h": d.Missing},
		UniqueContent:  map[string][]DiffEntry{"h": d.Unique},
		TextDiff:       map[string][]TextDiffEntry{"h": d.Text},
		Prefixes:       map[string]string{},
	}

	legacy := report.Legacy()
	assert.Equal(t, []string{"gone", "a"}, paths(legacy.DiffMaster["h"]))
	assert.Equal(t, []string{"added", "a"}, paths(legacy.DiffApp["h"]))
	assert.Equal(t, "1", legacy.DiffMaster["h"][1].Subtree.ScalarText())
	assert.Equal(t, "2", legacy.DiffApp["h"][1].Subtree.ScalarText())
	assert.Equal(t, 2, legacy.DiffCountMaster["h"])
	assert.Len(t, report.MissingContent["h"], 1, "source report is not modified")
}
