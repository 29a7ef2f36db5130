// Package tree provides the document model used for every manifest.
//
// A Node is a tagged value: an object (keys kept in insertion order), a list,
// or a scalar (string, number, boolean, null). The tag is fixed when the node
// is created; nodes built from source documents are never reinterpreted.
//
// # Paths
//
// A Path addresses a node from the root of a header tree. Object steps use
// the key; list steps use the element identity, which is the label of the
// element's first stable key field (e.g. "featureID=home") or, when it has
// none, a murmur3 hash of its content ("#9f1c...").
//
// # Matcher
//
// Matcher bundles the comparison rules (ignored keys, stable key fields,
// string normalization) and provides the path operations used by the
// reconcile engine:
//
//	m := tree.Matcher{StableKeys: []string{"featureID"}}
//	node, ok := m.Resolve(root, path)
//	merged := m.InsertAt(root, path, subtree)
//	pruned := m.DeleteAt(root, path)
//
// List order is never significant: Equal and Canonical treat lists as
// multisets.
package tree
