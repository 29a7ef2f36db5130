package tree

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Kind is the immutable type tag of a Node.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindObject
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	case KindList:
		return "list"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Node is one value of a manifest document: an object, a list or a scalar.
// Objects keep their keys in insertion order. A nil *Node reads as null.
type Node struct {
	kind   Kind
	value  any // bool, json.Number or string for scalars
	keys   []string
	fields map[string]*Node
	items  []*Node
}

// NewObject returns an empty object node.
func NewObject() *Node {
	return &Node{kind: KindObject, fields: make(map[string]*Node)}
}

// NewList returns a list node holding items.
func NewList(items ...*Node) *Node {
	return &Node{kind: KindList, items: append([]*Node(nil), items...)}
}

// String returns a string scalar.
func String(s string) *Node {
	return &Node{kind: KindString, value: s}
}

// Number returns a number scalar keeping the literal text of n.
func Number(n json.Number) *Node {
	return &Node{kind: KindNumber, value: n}
}

// Int returns a number scalar for i.
func Int(i int64) *Node {
	return Number(json.Number(strconv.FormatInt(i, 10)))
}

// Bool returns a boolean scalar.
func Bool(b bool) *Node {
	return &Node{kind: KindBool, value: b}
}

// Null returns a null scalar.
func Null() *Node {
	return &Node{kind: KindNull}
}

// Kind returns the type tag of n.
func (n *Node) Kind() Kind {
	if n == nil {
		return KindNull
	}
	return n.kind
}

func (n *Node) IsObject() bool { return n.Kind() == KindObject }
func (n *Node) IsList() bool   { return n.Kind() == KindList }

// IsScalar reports whether n is a string, number, boolean or null.
func (n *Node) IsScalar() bool {
	k := n.Kind()
	return k != KindObject && k != KindList
}

// Keys returns the object keys in insertion order.
func (n *Node) Keys() []string {
	if !n.IsObject() {
		return nil
	}
	return append([]string(nil), n.keys...)
}

// Get returns the child stored under key.
func (n *Node) Get(key string) (*Node, bool) {
	if !n.IsObject() {
		return nil, false
	}
	child, ok := n.fields[key]
	return child, ok
}

// Has reports whether the object holds key.
func (n *Node) Has(key string) bool {
	_, ok := n.Get(key)
	return ok
}

// Set stores v under key, keeping the original position of an existing key.
// It returns n so calls can be chained. Set on a non-object panics.
func (n *Node) Set(key string, v *Node) *Node {
	if !n.IsObject() {
		panic(fmt.Sprintf("tree: Set on %s node", n.Kind()))
	}
	if v == nil {
		v = Null()
	}
	if _, exists := n.fields[key]; !exists {
		n.keys = append(n.keys, key)
	}
	n.fields[key] = v
	return n
}

// Delete removes key from the object and reports whether it was present.
func (n *Node) Delete(key string) bool {
	if !n.IsObject() {
		return false
	}
	if _, ok := n.fields[key]; !ok {
		return false
	}
	delete(n.fields, key)
	for i, k := range n.keys {
		if k == key {
			n.keys = append(n.keys[:i], n.keys[i+1:]...)
			break
		}
	}
	return true
}

// Len returns the number of keys of an object or items of a list.
func (n *Node) Len() int {
	switch n.Kind() {
	case KindObject:
		return len(n.keys)
	case KindList:
		return len(n.items)
	default:
		return 0
	}
}

// Items returns the list elements.
func (n *Node) Items() []*Node {
	if !n.IsList() {
		return nil
	}
	return append([]*Node(nil), n.items...)
}

// Item returns element i of a list.
func (n *Node) Item(i int) *Node {
	return n.items[i]
}

// Append adds elements to the end of a list. Append on a non-list panics.
func (n *Node) Append(items ...*Node) *Node {
	if !n.IsList() {
		panic(fmt.Sprintf("tree: Append on %s node", n.Kind()))
	}
	n.items = append(n.items, items...)
	return n
}

// RemoveItem drops element i of a list.
func (n *Node) RemoveItem(i int) {
	n.items = append(n.items[:i], n.items[i+1:]...)
}

// Text returns the value of a string scalar.
func (n *Node) Text() (string, bool) {
	if n.Kind() != KindString {
		return "", false
	}
	return n.value.(string), true
}

// Value returns the Go value of a scalar: nil, bool, json.Number or string.
func (n *Node) Value() any {
	if !n.IsScalar() || n == nil {
		return nil
	}
	return n.value
}

// ScalarText renders a scalar the way it appears in identity labels.
func (n *Node) ScalarText() string {
	switch n.Kind() {
	case KindString:
		return n.value.(string)
	case KindNumber:
		return string(n.value.(json.Number))
	case KindBool:
		return strconv.FormatBool(n.value.(bool))
	case KindNull:
		return "null"
	default:
		return ""
	}
}

// Clone returns a deep, independent copy of n.
func (n *Node) Clone() *Node {
	if n == nil {
		return Null()
	}
	switch n.kind {
	case KindObject:
		out := &Node{kind: KindObject, keys: append([]string(nil), n.keys...), fields: make(map[string]*Node, len(n.fields))}
		for k, v := range n.fields {
			out.fields[k] = v.Clone()
		}
		return out
	case KindList:
		out := &Node{kind: KindList, items: make([]*Node, len(n.items))}
		for i, v := range n.items {
			out.items[i] = v.Clone()
		}
		return out
	default:
		return &Node{kind: n.kind, value: n.value}
	}
}

// MapStrings returns a copy of n with fn applied to every string scalar.
// Object keys are not rewritten.
func (n *Node) MapStrings(fn func(string) string) *Node {
	switch n.Kind() {
	case KindObject:
		out := NewObject()
		for _, k := range n.keys {
			out.Set(k, n.fields[k].MapStrings(fn))
		}
		return out
	case KindList:
		out := NewList()
		for _, v := range n.items {
			out.Append(v.MapStrings(fn))
		}
		return out
	case KindString:
		return String(fn(n.value.(string)))
	default:
		return n.Clone()
	}
}

// Equal reports structural equality with list order ignored.
func (n *Node) Equal(o *Node) bool {
	return Matcher{}.Equal(n, o)
}

// FromValue builds a node from plain Go values such as the output of
// encoding/json. Map keys are sorted since Go maps carry no order.
func FromValue(v any) (*Node, error) {
	switch t := v.(type) {
	case nil:
		return Null(), nil
	case *Node:
		return t.Clone(), nil
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case json.Number:
		return Number(t), nil
	case int:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint64:
		return Number(json.Number(strconv.FormatUint(t, 10))), nil
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil, fmt.Errorf("tree: %v is not a valid number", t)
		}
		return Number(json.Number(strconv.FormatFloat(t, 'g', -1, 64))), nil
	case []any:
		list := NewList()
		for _, item := range t {
			child, err := FromValue(item)
			if err != nil {
				return nil, err
			}
			list.Append(child)
		}
		return list, nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := NewObject()
		for _, k := range keys {
			child, err := FromValue(t[k])
			if err != nil {
				return nil, err
			}
			obj.Set(k, child)
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("tree: unsupported value type %T", v)
	}
}

// MustFromValue is FromValue for literals known to be valid.
func MustFromValue(v any) *Node {
	n, err := FromValue(v)
	if err != nil {
		panic(err)
	}
	return n
}
