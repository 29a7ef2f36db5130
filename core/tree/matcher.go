package tree

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spaolacci/murmur3"
)

// hashPrefix marks a list identity derived from element content.
const hashPrefix = "#"

// Matcher holds the comparison rules shared by diff, merge and update:
// which keys are skipped, which fields identify list elements, and how
// string scalars are normalized before comparison.
type Matcher struct {
	// StableKeys are tried in order to label a list element. An entry may join
	// several dotted field paths with '+', e.g. "type+payload.headerText".
	StableKeys []string
	// Ignored keys are skipped at any depth.
	Ignored map[string]struct{}
	// Normalize rewrites string scalars before they are compared. Optional.
	Normalize func(string) string
}

// IsIgnored reports whether key is skipped during traversal.
func (m Matcher) IsIgnored(key string) bool {
	_, ok := m.Ignored[key]
	return ok
}

// Equal reports structural equality: ignored keys are skipped, lists are
// compared as multisets and strings are normalized.
func (m Matcher) Equal(a, b *Node) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	return m.Canonical(a) == m.Canonical(b)
}

// Canonical returns an encoding of n that is independent of object key
// order and list element order.
func (m Matcher) Canonical(n *Node) string {
	var b strings.Builder
	m.canonical(&b, n)
	return b.String()
}

func (m Matcher) canonical(b *strings.Builder, n *Node) {
	switch n.Kind() {
	case KindObject:
		keys := make([]string, 0, len(n.keys))
		for _, k := range n.keys {
			if !m.IsIgnored(k) {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Quote(k))
			b.WriteByte(':')
			m.canonical(b, n.fields[k])
		}
		b.WriteByte('}')
	case KindList:
		parts := make([]string, len(n.items))
		for i, item := range n.items {
			parts[i] = m.Canonical(item)
		}
		sort.Strings(parts)
		b.WriteByte('[')
		b.WriteString(strings.Join(parts, ","))
		b.WriteByte(']')
	case KindString:
		s := n.value.(string)
		if m.Normalize != nil {
			s = m.Normalize(s)
		}
		b.WriteByte('s')
		b.WriteString(strconv.Quote(s))
	case KindNumber:
		b.WriteByte('n')
		b.WriteString(canonicalNumber(n.value.(json.Number)))
	case KindBool:
		b.WriteByte('b')
		b.WriteString(strconv.FormatBool(n.value.(bool)))
	default:
		b.WriteString("null")
	}
}

func canonicalNumber(n json.Number) string {
	if f, err := n.Float64(); err == nil {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return string(n)
}

// Hash returns the content identity of n.
func (m Matcher) Hash(n *Node) string {
	return fmt.Sprintf("%s%016x", hashPrefix, murmur3.Sum64([]byte(m.Canonical(n))))
}

// StableKey returns the label of the first stable key present on n.
func (m Matcher) StableKey(n *Node) (string, bool) {
	if !n.IsObject() {
		return "", false
	}
	for _, field := range m.StableKeys {
		if label, ok := keyLabel(n, field); ok {
			return label, true
		}
	}
	return "", false
}

func keyLabel(n *Node, composite string) (string, bool) {
	parts := strings.Split(composite, "+")
	labels := make([]string, 0, len(parts))
	for _, field := range parts {
		v, ok := lookupField(n, field)
		if !ok || !v.IsScalar() || v.Kind() == KindNull {
			return "", false
		}
		text := v.ScalarText()
		if text == "" {
			return "", false
		}
		labels = append(labels, field+"="+text)
	}
	return strings.Join(labels, "+"), true
}

func lookupField(n *Node, dotted string) (*Node, bool) {
	cur := n
	for _, k := range strings.Split(dotted, ".") {
		next, ok := cur.Get(k)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// ElementID returns the identity of a single list element: its stable key
// label when it has one, otherwise its content hash.
func (m Matcher) ElementID(n *Node) string {
	if label, ok := m.StableKey(n); ok {
		return label
	}
	return m.Hash(n)
}

// Identities labels the elements of two lists that are compared with each
// other. A stable key label that repeats inside either list cannot pair
// elements unambiguously, so those elements use their content hash.
func (m Matcher) Identities(a, b []*Node) ([]string, []string) {
	labelsA, countA := m.labels(a)
	labelsB, countB := m.labels(b)

	resolve := func(items []*Node, labels []string) []string {
		ids := make([]string, len(items))
		for i, item := range items {
			l := labels[i]
			if l == "" || countA[l] > 1 || countB[l] > 1 {
				ids[i] = m.Hash(item)
				continue
			}
			ids[i] = l
		}
		return ids
	}
	return resolve(a, labelsA), resolve(b, labelsB)
}

func (m Matcher) labels(items []*Node) ([]string, map[string]int) {
	labels := make([]string, len(items))
	counts := make(map[string]int)
	for i, item := range items {
		if l, ok := m.StableKey(item); ok {
			labels[i] = l
			counts[l]++
		}
	}
	return labels, counts
}

// Matches reports whether the list element n answers to identity id.
func (m Matcher) Matches(n *Node, id string) bool {
	if strings.HasPrefix(id, hashPrefix) {
		return m.Hash(n) == id
	}
	label, ok := m.StableKey(n)
	return ok && label == id
}

// Strip returns a copy of n without ignored keys at any depth.
func (m Matcher) Strip(n *Node) *Node {
	switch n.Kind() {
	case KindObject:
		out := NewObject()
		for _, k := range n.keys {
			if m.IsIgnored(k) {
				continue
			}
			out.Set(k, m.Strip(n.fields[k]))
		}
		return out
	case KindList:
		out := NewList()
		for _, item := range n.items {
			out.Append(m.Strip(item))
		}
		return out
	default:
		return n.Clone()
	}
}
