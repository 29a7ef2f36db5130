package tree

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_PreservesKeyOrder(t *testing.T) {
	n, err := Parse([]byte(`{"zeta": 1, "alpha": {"b": true, "a": null}, "mid": ["x", 2.50]}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, n.Keys())

	alpha, ok := n.Get("alpha")
	require.True(t, ok)
	assert.Equal(t, []string{"b", "a"}, alpha.Keys())

	out, err := json.Marshal(n)
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":1,"alpha":{"b":true,"a":null},"mid":["x",2.50]}`, string(out))
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"Empty", ""},
		{"Truncated", `{"a": `},
		{"TrailingData", `{"a": 1} {"b": 2}`},
		{"BadToken", `{"a": nope}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestMarshalJSON_DoesNotEscapeHTML(t *testing.T) {
	n := NewObject().Set("url", String("/ocvapps/<APP>/a&b"))
	out, err := n.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"url":"/ocvapps/<APP>/a&b"}`, string(out))
}

func TestNode_ObjectOperations(t *testing.T) {
	n := NewObject().Set("a", Int(1)).Set("b", Int(2)).Set("c", Int(3))

	n.Set("a", String("replaced"))
	assert.Equal(t, []string{"a", "b", "c"}, n.Keys(), "existing key keeps its position")

	assert.True(t, n.Delete("b"))
	assert.False(t, n.Delete("b"))
	assert.Equal(t, []string{"a", "c"}, n.Keys())
	assert.Equal(t, 2, n.Len())

	v, ok := n.Get("a")
	require.True(t, ok)
	text, ok := v.Text()
	assert.True(t, ok)
	assert.Equal(t, "replaced", text)
}

func TestNode_SetOnScalarPanics(t *testing.T) {
	assert.Panics(t, func() { String("x").Set("k", Null()) })
	assert.Panics(t, func() { NewObject().Append(Null()) })
}

func TestNode_NilIsNull(t *testing.T) {
	var n *Node
	assert.Equal(t, KindNull, n.Kind())
	assert.True(t, n.IsScalar())
	_, ok := n.Get("x")
	assert.False(t, ok)
	assert.Nil(t, n.Value())
}

func TestClone_IsIndependent(t *testing.T) {
	orig := MustFromValue(map[string]any{
		"features": map[string]any{"home": map[string]any{"text": "Hi"}},
		"list":     []any{"a", "b"},
	})
	cp := orig.Clone()

	features, _ := cp.Get("features")
	features.Set("extra", String("new"))
	list, _ := cp.Get("list")
	list.Append(String("c"))

	origFeatures, _ := orig.Get("features")
	assert.False(t, origFeatures.Has("extra"))
	origList, _ := orig.Get("list")
	assert.Equal(t, 2, origList.Len())
}

func TestFromValue(t *testing.T) {
	n, err := FromValue(map[string]any{"b": 1, "a": []any{true, nil, 2.5, "s"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, n.Keys())

	out, err := json.Marshal(n)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":[true,null,2.5,"s"],"b":1}`, string(out))

	_, err = FromValue(struct{}{})
	assert.Error(t, err)
}

func TestScalarText(t *testing.T) {
	assert.Equal(t, "x", String("x").ScalarText())
	assert.Equal(t, "42", Int(42).ScalarText())
	assert.Equal(t, "true", Bool(true).ScalarText())
	assert.Equal(t, "null", Null().ScalarText())
	assert.Equal(t, "", NewObject().ScalarText())
}

func TestMapStrings(t *testing.T) {
	n := MustFromValue(map[string]any{
		"title": "ChangeMe",
		"list":  []any{"a", 1, map[string]any{"ChangeMe": "x"}},
	})

	out := n.MapStrings(func(s string) string { return "<" + s + ">" })

	got, err := json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"<ChangeMe>","list":["<a>",1,{"ChangeMe":"<x>"}]}`, string(got))

	title, _ := n.Get("title")
	assert.Equal(t, "ChangeMe", title.ScalarText(), "source is untouched")
}
