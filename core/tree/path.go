package tree

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPath is returned when a path string cannot be parsed.
var ErrInvalidPath = errors.New("invalid path")

// Segment is one step of a Path: an object key, or the identity of a list
// element when List is true.
type Segment struct {
	Key  string
	List bool
}

// Key returns an object key segment.
func Key(k string) Segment {
	return Segment{Key: k}
}

// Item returns a list element segment for the given identity.
func Item(id string) Segment {
	return Segment{Key: id, List: true}
}

func (s Segment) String() string {
	if s.List {
		return "[" + s.Key + "]"
	}
	return s.Key
}

// Path locates a node from the root of a header tree.
type Path []Segment

// Append returns a new path with segs added; p is never modified.
func (p Path) Append(segs ...Segment) Path {
	out := make(Path, 0, len(p)+len(segs))
	out = append(out, p...)
	return append(out, segs...)
}

// String renders the path as dotted keys with list identities in brackets,
// e.g. features.tabs[featureID=home].title.
func (p Path) String() string {
	var b strings.Builder
	for i, s := range p {
		if i > 0 && !s.List {
			b.WriteByte('.')
		}
		b.WriteString(s.String())
	}
	return b.String()
}

// MarshalJSON encodes the path as an array of segment strings.
func (p Path) MarshalJSON() ([]byte, error) {
	out := make([]string, len(p))
	for i, s := range p {
		out[i] = s.String()
	}
	return json.Marshal(out)
}

// ParsePath parses the String form of a path.
func ParsePath(s string) (Path, error) {
	var (
		path Path
		key  strings.Builder
		// afterItem is set right after a closing bracket, where only '.' or '[' may follow
		afterItem bool
	)

	flush := func(pos int) error {
		if key.Len() == 0 {
			return fmt.Errorf("%w: empty key at offset %d in %q", ErrInvalidPath, pos, s)
		}
		path = append(path, Key(key.String()))
		key.Reset()
		return nil
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '.':
			if afterItem {
				afterItem = false
				continue
			}
			if err := flush(i); err != nil {
				return nil, err
			}
		case '[':
			if key.Len() > 0 {
				if err := flush(i); err != nil {
					return nil, err
				}
			}
			end := strings.IndexByte(s[i+1:], ']')
			if end < 0 {
				return nil, fmt.Errorf("%w: unclosed bracket in %q", ErrInvalidPath, s)
			}
			path = append(path, Item(s[i+1:i+1+end]))
			i += end + 1
			afterItem = true
		default:
			if afterItem {
				return nil, fmt.Errorf("%w: expected '.' after ']' in %q", ErrInvalidPath, s)
			}
			key.WriteByte(c)
		}
	}

	if key.Len() > 0 {
		path = append(path, Key(key.String()))
	} else if len(s) > 0 && !afterItem {
		return nil, fmt.Errorf("%w: trailing '.' in %q", ErrInvalidPath, s)
	}
	return path, nil
}
