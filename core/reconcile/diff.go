package reconcile

import (
	"sort"

	"manifest-reconciler/core/tree"
)

// frame is one pending pair of nodes in the lockstep walk.
type frame struct {
	path   tree.Path
	master *tree.Node
	app    *tree.Node
}

// differ accumulates the findings of one Diff call.
type differ struct {
	cfg     Config
	matcher tree.Matcher
	out     HeaderDiff
}

// Diff walks master and app in lockstep and reports what each side has that
// the other lacks, plus scalar mismatches. Lists are compared by element
// identity, so element order never produces a finding.
func Diff(cfg Config, master, app *tree.Node) HeaderDiff {
	d := &differ{
		cfg:     cfg,
		matcher: cfg.Matcher(),
		out: HeaderDiff{
			Missing: []DiffEntry{},
			Unique:  []DiffEntry{},
			Text:    []TextDiffEntry{},
			Labels:  map[string]int{},
		},
	}

	stack := []frame{{master: master, app: app}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		children := d.visit(f)
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}

	return d.out
}

func (d *differ) visit(f frame) []frame {
	switch {
	case f.master.IsObject() && f.app.IsObject():
		return d.objects(f)
	case f.master.IsList() && f.app.IsList():
		return d.lists(f)
	case f.master.IsScalar() && f.app.IsScalar():
		if !d.matcher.Equal(f.master, f.app) {
			d.out.Text = append(d.out.Text, TextDiffEntry{
				Path:        f.path,
				AppValue:    f.app.Clone(),
				MasterValue: f.master.Clone(),
			})
		}
		return nil
	default:
		d.missing(f.path, f.master)
		d.unique(f.path, f.app)
		return nil
	}
}

func (d *differ) objects(f frame) []frame {
	var children []frame
	visit := func(key string) {
		if d.cfg.IsLabel(key) {
			d.out.Labels[key]++
		}
		path := f.path.Append(tree.Key(key))
		mv, inMaster := f.master.Get(key)
		av, inApp := f.app.Get(key)
		switch {
		case inMaster && inApp:
			children = append(children, frame{path: path, master: mv, app: av})
		case inMaster:
			d.missing(path, mv)
		default:
			d.unique(path, av)
		}
	}

	for _, key := range f.master.Keys() {
		if !d.matcher.IsIgnored(key) {
			visit(key)
		}
	}
	for _, key := range f.app.Keys() {
		if !d.matcher.IsIgnored(key) && !f.master.Has(key) {
			visit(key)
		}
	}
	return children
}

// element is a list item with its identity and original position.
type element struct {
	id    string
	index int
	node  *tree.Node
}

func sortedElements(items []*tree.Node, ids []string) []element {
	out := make([]element, len(items))
	for i, item := range items {
		out[i] = element{id: ids[i], index: i, node: item}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// lists pairs elements by identity. Elements are visited sorted by identity
// so the findings do not depend on either list's order.
func (d *differ) lists(f frame) []frame {
	masterItems, appItems := f.master.Items(), f.app.Items()
	masterIDs, appIDs := d.matcher.Identities(masterItems, appItems)

	pending := make(map[string][]element)
	for _, e := range sortedElements(appItems, appIDs) {
		pending[e.id] = append(pending[e.id], e)
	}

	var children []frame
	for _, e := range sortedElements(masterItems, masterIDs) {
		path := f.path.Append(tree.Item(e.id))
		if queue := pending[e.id]; len(queue) > 0 {
			pending[e.id] = queue[1:]
			children = append(children, frame{path: path, master: e.node, app: queue[0].node})
			continue
		}
		d.missing(path, e.node)
	}

	for _, e := range sortedElements(appItems, appIDs) {
		queue := pending[e.id]
		if len(queue) == 0 || queue[0].index != e.index {
			continue
		}
		pending[e.id] = queue[1:]
		d.unique(f.path.Append(tree.Item(e.id)), e.node)
	}
	return children
}

func (d *differ) missing(path tree.Path, n *tree.Node) {
	sub := d.matcher.Strip(n)
	d.countLabels(sub)
	d.out.Missing = append(d.out.Missing, DiffEntry{Path: path, Subtree: sub})
}

func (d *differ) unique(path tree.Path, n *tree.Node) {
	sub := d.matcher.Strip(n)
	d.countLabels(sub)
	d.out.Unique = append(d.out.Unique, DiffEntry{Path: path, Subtree: sub})
}

// countLabels counts label keys inside a subtree only one side holds.
func (d *differ) countLabels(n *tree.Node) {
	stack := []*tree.Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		switch {
		case cur.IsObject():
			for _, key := range cur.Keys() {
				if d.cfg.IsLabel(key) {
					d.out.Labels[key]++
				}
				child, _ := cur.Get(key)
				stack = append(stack, child)
			}
		case cur.IsList():
			stack = append(stack, cur.Items()...)
		}
	}
}
