package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"manifest-reconciler/core/tree"

	gyaml "github.com/goccy/go-yaml"
)

var (
	// ErrEmptyDocument is returned for input without a value.
	ErrEmptyDocument = errors.New("empty document")
	// ErrNotObject is returned when a manifest is not a mapping.
	ErrNotObject = errors.New("document is not an object")
)

// maxEncodingDepth bounds how many string layers Decode unwraps.
const maxEncodingDepth = 8

// Format is a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown format %q: expected json or yaml", s)
}

// ContentType returns the MIME type used when uploading the format.
func (f Format) ContentType() string {
	if f == FormatYAML {
		return "application/yaml"
	}
	return "application/json"
}

// FormatFor picks the format of a location from its extension, falling
// back to sniffing data: JSON documents start with '{', '[' or '"'.
func FormatFor(location string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(location)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return FormatJSON
	}
	switch trimmed[0] {
	case '{', '[', '"':
		return FormatJSON
	}
	return FormatYAML
}

// Decode parses a JSON or YAML document into a tree, unwrapping double
// encoding.
func Decode(data []byte, format Format) (*tree.Node, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyDocument
	}

	var (
		n   *tree.Node
		err error
	)
	switch format {
	case FormatYAML:
		n, err = decodeYAML(data)
	default:
		n, err = tree.Parse(data)
	}
	if err != nil {
		return nil, err
	}
	return unwrapString(n)
}

func decodeYAML(data []byte) (*tree.Node, error) {
	var v any
	if err := gyaml.UnmarshalWithOptions(data, &v, gyaml.UseOrderedMap()); err != nil {
		return nil, err
	}
	if v == nil {
		return nil, ErrEmptyDocument
	}
	return fromYAML(v)
}

func fromYAML(v any) (*tree.Node, error) {
	switch t := v.(type) {
	case gyaml.MapSlice:
		out := tree.NewObject()
		for _, item := range t {
			child, err := fromYAML(item.Value)
			if err != nil {
				return nil, err
			}
			out.Set(fmt.Sprint(item.Key), child)
		}
		return out, nil
	case []any:
		out := tree.NewList()
		for _, item := range t {
			child, err := fromYAML(item)
			if err != nil {
				return nil, err
			}
			out.Append(child)
		}
		return out, nil
	case map[string]any:
		return tree.FromValue(t)
	}

	n, err := tree.FromValue(v)
	if err != nil {
		// Timestamps and other tagged scalars keep their text form.
		return tree.String(fmt.Sprint(v)), nil
	}
	return n, nil
}

// unwrapString decodes string values that hold an encoded JSON document.
func unwrapString(n *tree.Node) (*tree.Node, error) {
	for depth := 0; ; depth++ {
		s, ok := n.Text()
		if !ok {
			return n, nil
		}
		if depth == maxEncodingDepth {
			return nil, fmt.Errorf("document still encoded after %d passes", maxEncodingDepth)
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, ErrEmptyDocument
		}
		next, err := tree.Parse([]byte(s))
		if err != nil {
			return nil, fmt.Errorf("decode encoded document: %w", err)
		}
		n = next
	}
}

// UnwrapManifest returns the header mapping of a document: the value under
// "manifest" when present, otherwise the document itself.
func UnwrapManifest(doc *tree.Node) (*tree.Node, error) {
	manifest := doc
	if inner, ok := doc.Get("manifest"); ok {
		unwrapped, err := unwrapString(inner)
		if err != nil {
			return nil, fmt.Errorf("manifest: %w", err)
		}
		manifest = unwrapped
	}
	if !manifest.IsObject() {
		return nil, fmt.Errorf("%w: got %s", ErrNotObject, manifest.Kind())
	}
	return manifest, nil
}

// Encode renders v as indented JSON or as YAML. Values containing tree
// nodes keep their key order in both formats.
func Encode(v any, format Format) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	if format != FormatYAML {
		return buf.Bytes(), nil
	}

	n, err := tree.Parse(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	out, err := gyaml.Marshal(toYAML(n))
	if err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	return out, nil
}

func toYAML(n *tree.Node) any {
	switch n.Kind() {
	case tree.KindObject:
		out := make(gyaml.MapSlice, 0, n.Len())
		for _, k := range n.Keys() {
			child, _ := n.Get(k)
			out = append(out, gyaml.MapItem{Key: k, Value: toYAML(child)})
		}
		return out
	case tree.KindList:
		items := n.Items()
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = toYAML(item)
		}
		return out
	case tree.KindNumber:
		num := n.Value().(json.Number)
		if i, err := strconv.ParseInt(string(num), 10, 64); err == nil {
			return i
		}
		if f, err := num.Float64(); err == nil {
			return f
		}
		return string(num)
	default:
		return n.Value()
	}
}
