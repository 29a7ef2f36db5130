package reconcile

import (
	"fmt"
	"strconv"

	"manifest-reconciler/core/tree"
)

// globalScope is the instruction key applied to every header.
const globalScope = "*"

// insertIndexKey marks a list update item that patches a position.
const insertIndexKey = "insert_index"

// addition is one update instruction. Positional additions patch element
// index of the list at path; the others attach payload at the first
// missing segment of path.
type addition struct {
	path       tree.Path
	payload    *tree.Node
	index      int
	positional bool
}

// Update applies the remove, update and override instructions master
// declares for header to a copy of root. All removals run before any
// addition, and overrides run last. Instructions under the "*" scope apply
// before the header's own.
func Update(cfg Config, master *tree.Node, header string, root *tree.Node) (*tree.Node, UpdateStats, error) {
	m := cfg.Matcher()
	out := root.Clone()
	var stats UpdateStats

	scopes := []string{globalScope, header}

	for _, scope := range scopes {
		instr, ok := instructions(master, keyRemove, scope)
		if !ok {
			continue
		}
		paths, err := removals(m, instr)
		if err != nil {
			return nil, stats, fmt.Errorf("remove[%s]: %w", scope, err)
		}
		for _, p := range paths {
			if m.Detach(out, p) {
				stats.Removed++
			} else {
				stats.Skipped++
			}
		}
	}

	for _, scope := range scopes {
		instr, ok := instructions(master, keyUpdate, scope)
		if !ok {
			continue
		}
		added, skipped := applyAdditions(m, out, additions(m, nil, instr))
		stats.Added += added
		stats.Skipped += skipped
	}

	for _, scope := range scopes {
		instr, ok := instructions(master, keyOverride, scope)
		if !ok {
			continue
		}
		src, _ := MasterRoot(cfg, master, header)
		overridden, skipped := applyOverrides(out, src, instr)
		stats.Overridden += overridden
		stats.Skipped += skipped
	}

	return out, stats, nil
}

func instructions(master *tree.Node, kind, scope string) (*tree.Node, bool) {
	section, ok := master.Get(kind)
	if !ok {
		return nil, false
	}
	instr, ok := section.Get(scope)
	if !ok || instr.Kind() == tree.KindNull {
		return nil, false
	}
	return instr, true
}

// removals reads a remove instruction: either a list of path strings or a
// tree whose leaves name what to delete. A non-empty list inside the tree
// deletes the elements it lists.
func removals(m tree.Matcher, instr *tree.Node) ([]tree.Path, error) {
	var paths []tree.Path
	if instr.IsList() {
		for _, item := range instr.Items() {
			if text, ok := item.Text(); ok {
				p, err := tree.ParsePath(text)
				if err != nil {
					return nil, err
				}
				if len(p) > 0 {
					paths = append(paths, p)
				}
				continue
			}
			paths = append(paths, removalTree(m, nil, item)...)
		}
		return paths, nil
	}
	return removalTree(m, nil, instr), nil
}

func removalTree(m tree.Matcher, path tree.Path, n *tree.Node) []tree.Path {
	switch {
	case n.IsObject() && n.Len() > 0:
		var paths []tree.Path
		for _, key := range n.Keys() {
			child, _ := n.Get(key)
			paths = append(paths, removalTree(m, path.Append(keyPath(key)...), child)...)
		}
		return paths
	case n.IsList() && n.Len() > 0:
		paths := make([]tree.Path, 0, n.Len())
		for _, item := range n.Items() {
			paths = append(paths, path.Append(tree.Item(m.ElementID(item))))
		}
		return paths
	case len(path) == 0:
		return nil
	default:
		return []tree.Path{path}
	}
}

// additions flattens an update tree into instructions. Objects are walked
// down to their leaves so that content already present is never replaced.
// List items are added by identity; items carrying insert_index patch that
// position instead and come first.
func additions(m tree.Matcher, path tree.Path, n *tree.Node) []addition {
	switch {
	case n.IsObject() && n.Len() > 0:
		var out []addition
		for _, key := range n.Keys() {
			child, _ := n.Get(key)
			out = append(out, additions(m, path.Append(keyPath(key)...), child)...)
		}
		return out
	case n.IsList() && n.Len() > 0:
		var positional, appended []addition
		for _, item := range n.Items() {
			if idx, ok := insertIndex(item); ok {
				positional = append(positional, addition{path: path, payload: stripInsertIndex(item), index: idx, positional: true})
				continue
			}
			item = stripInsertIndex(item)
			appended = append(appended, addition{path: path.Append(tree.Item(m.ElementID(item))), payload: item})
		}
		return append(positional, appended...)
	case len(path) == 0:
		return nil
	default:
		return []addition{{path: path, payload: stripInsertIndex(n)}}
	}
}

// keyPath reads an instruction key. Dotted keys such as "features.old"
// address nested nodes; keys that are not valid paths are taken literally.
func keyPath(key string) tree.Path {
	p, err := tree.ParsePath(key)
	if err != nil || len(p) == 0 {
		return tree.Path{tree.Key(key)}
	}
	return p
}

func applyAdditions(m tree.Matcher, root *tree.Node, adds []addition) (added, skipped int) {
	for _, a := range adds {
		var changed bool
		if a.positional {
			changed = patchPosition(m, root, a)
		} else {
			changed = m.Attach(root, a.path, a.payload)
		}
		if changed {
			added++
		} else {
			skipped++
		}
	}
	return added, skipped
}

// patchPosition adds the missing parts of a.payload to element a.index of
// the list at a.path. Out of range indexes append. A missing list is
// created holding the payload.
func patchPosition(m tree.Matcher, root *tree.Node, a addition) bool {
	list, ok := m.Resolve(root, a.path)
	if !ok {
		return m.Attach(root, a.path, tree.NewList(a.payload))
	}
	if !list.IsList() {
		return false
	}
	if a.index >= list.Len() {
		list.Append(a.payload.Clone())
		return true
	}

	target := list.Item(a.index)
	if target.Kind() != a.payload.Kind() || target.IsScalar() {
		return false
	}
	added, _ := applyAdditions(m, target, additions(m, nil, a.payload))
	return added > 0
}

func insertIndex(n *tree.Node) (int, bool) {
	v, ok := n.Get(insertIndexKey)
	if !ok || v.Kind() != tree.KindNumber {
		return 0, false
	}
	idx, err := strconv.Atoi(v.ScalarText())
	if err != nil {
		return 0, false
	}
	return max(idx, 0), true
}

func stripInsertIndex(n *tree.Node) *tree.Node {
	switch n.Kind() {
	case tree.KindObject:
		out := tree.NewObject()
		for _, k := range n.Keys() {
			if k == insertIndexKey {
				continue
			}
			v, _ := n.Get(k)
			out.Set(k, stripInsertIndex(v))
		}
		return out
	case tree.KindList:
		out := tree.NewList()
		for _, item := range n.Items() {
			out.Append(stripInsertIndex(item))
		}
		return out
	default:
		return n.Clone()
	}
}

// applyOverrides replaces whole features. instr is a list of feature names
// copied from src, or an object of name to replacement subtree.
func applyOverrides(root, src, instr *tree.Node) (overridden, skipped int) {
	replacements := tree.NewObject()
	switch {
	case instr.IsList():
		srcFeatures, _ := src.Get("features")
		for _, item := range instr.Items() {
			name, ok := item.Text()
			if !ok {
				skipped++
				continue
			}
			feature, ok := srcFeatures.Get(name)
			if !ok {
				skipped++
				continue
			}
			replacements.Set(name, feature)
		}
	case instr.IsObject():
		replacements = instr
	default:
		return 0, 1
	}
	if replacements.Len() == 0 {
		return 0, skipped
	}

	features, ok := root.Get("features")
	if !ok {
		features = tree.NewObject()
		root.Set("features", features)
	}
	if !features.IsObject() {
		return 0, skipped + replacements.Len()
	}

	for _, name := range replacements.Keys() {
		want, _ := replacements.Get(name)
		if have, ok := features.Get(name); ok && identical(have, want) {
			skipped++
			continue
		}
		features.Set(name, want.Clone())
		overridden++
	}
	return overridden, skipped
}

// identical compares exact serializations; list order counts here.
func identical(a, b *tree.Node) bool {
	ja, errA := a.MarshalJSON()
	jb, errB := b.MarshalJSON()
	return errA == nil && errB == nil && string(ja) == string(jb)
}
