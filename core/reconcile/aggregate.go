package reconcile

import (
	"sort"

	"manifest-reconciler/core/tree"
)

// Summarize groups entries that are identical in path and content across
// headers. Headers are visited in the given order, which is also the order
// of each entry's header list. The most frequent findings come first.
func Summarize(m tree.Matcher, headers []string, entries map[string][]DiffEntry) []SummaryEntry {
	index := make(map[string]int)
	out := []SummaryEntry{}

	for _, header := range headers {
		for _, e := range entries[header] {
			key := e.Path.String() + "\x00" + m.Canonical(e.Subtree)
			i, ok := index[key]
			if !ok {
				i = len(out)
				index[key] = i
				out = append(out, SummaryEntry{Path: e.Path, Subtree: e.Subtree, Headers: []string{}})
			}
			out[i].Count++
			if hs := out[i].Headers; len(hs) == 0 || hs[len(hs)-1] != header {
				out[i].Headers = append(hs, header)
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

// SummarizeLabels folds the per-header label counters into one entry per
// label key, most frequent first.
func SummarizeLabels(diffs []HeaderDiff) []KeyLabelEntry {
	index := make(map[string]int)
	out := []KeyLabelEntry{}

	for _, d := range diffs {
		keys := make([]string, 0, len(d.Labels))
		for k := range d.Labels {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			i, ok := index[k]
			if !ok {
				i = len(out)
				index[k] = i
				out = append(out, KeyLabelEntry{Key: k, Headers: []string{}})
			}
			out[i].TotalCount += d.Labels[k]
			out[i].HeaderCount++
			out[i].Headers = append(out[i].Headers, d.Header)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalCount != out[j].TotalCount {
			return out[i].TotalCount > out[j].TotalCount
		}
		return out[i].Key < out[j].Key
	})
	return out
}
