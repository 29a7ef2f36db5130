package tree

// Resolve returns the node at path, or false when any segment is absent.
func (m Matcher) Resolve(root *Node, path Path) (*Node, bool) {
	cur := root
	for _, seg := range path {
		next, ok := m.child(cur, seg)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

func (m Matcher) child(n *Node, seg Segment) (*Node, bool) {
	if seg.List {
		i := m.indexOf(n, seg.Key)
		if i < 0 {
			return nil, false
		}
		return n.items[i], true
	}
	return n.Get(seg.Key)
}

func (m Matcher) indexOf(list *Node, id string) int {
	if !list.IsList() {
		return -1
	}
	for i, item := range list.items {
		if m.Matches(item, id) {
			return i
		}
	}
	return -1
}

// InsertAt returns a copy of root with subtree attached at the first segment
// of path that root does not have. If the whole path exists the copy is
// returned unchanged.
func (m Matcher) InsertAt(root *Node, path Path, subtree *Node) *Node {
	out := root.Clone()
	m.Attach(out, path, subtree)
	return out
}

// Attach is the in-place form of InsertAt. Existing content is never
// replaced: when the divergence point sits under a node of the wrong kind
// nothing is attached. It reports whether root changed.
func (m Matcher) Attach(root *Node, path Path, subtree *Node) bool {
	cur := root
	for i, seg := range path {
		if next, ok := m.child(cur, seg); ok {
			cur = next
			continue
		}

		value := materialize(path[i+1:], subtree.Clone())
		switch {
		case seg.List && cur.IsList():
			cur.Append(value)
			return true
		case !seg.List && cur.IsObject():
			cur.Set(seg.Key, value)
			return true
		}
		return false
	}
	return false
}

// materialize wraps v in the containers named by rest.
func materialize(rest Path, v *Node) *Node {
	for i := len(rest) - 1; i >= 0; i-- {
		if rest[i].List {
			v = NewList(v)
		} else {
			v = NewObject().Set(rest[i].Key, v)
		}
	}
	return v
}

// DeleteAt returns a copy of root without the node at path. Unresolvable
// paths leave the copy unchanged.
func (m Matcher) DeleteAt(root *Node, path Path) *Node {
	out := root.Clone()
	m.Detach(out, path)
	return out
}

// Detach is the in-place form of DeleteAt. A list segment removes every
// element answering to that identity. It reports whether root changed.
func (m Matcher) Detach(root *Node, path Path) bool {
	if len(path) == 0 {
		return false
	}
	parent, ok := m.Resolve(root, path[:len(path)-1])
	if !ok {
		return false
	}

	last := path[len(path)-1]
	if !last.List {
		return parent.Delete(last.Key)
	}
	if !parent.IsList() {
		return false
	}
	removed := false
	for i := len(parent.items) - 1; i >= 0; i-- {
		if m.Matches(parent.items[i], last.Key) {
			parent.RemoveItem(i)
			removed = true
		}
	}
	return removed
}
