package ctyconv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestToGo(t *testing.T) {
	testCases := []struct {
		name string
		in   cty.Value
		want any
	}{
		{name: "string", in: cty.StringVal("hi"), want: "hi"},
		{name: "whole number", in: cty.NumberIntVal(3), want: 3},
		{name: "fraction", in: cty.NumberFloatVal(0.5), want: 0.5},
		{name: "bool", in: cty.True, want: true},
		{name: "null", in: cty.NullVal(cty.String), want: nil},
		{name: "unknown", in: cty.UnknownVal(cty.String), want: nil},
		{name: "tuple", in: cty.TupleVal([]cty.Value{cty.StringVal("a"), cty.NumberIntVal(1)}), want: []any{"a", 1}},
		{name: "set", in: cty.SetVal([]cty.Value{cty.StringVal("a")}), want: []any{"a"}},
		{
			name: "nested object",
			in: cty.ObjectVal(map[string]cty.Value{
				"outer": cty.ObjectVal(map[string]cty.Value{"inner": cty.False}),
			}),
			want: map[string]any{"outer": map[string]any{"inner": false}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ToGo(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestObjectToMap(t *testing.T) {
	// --- Arrange & Act ---
	absent, absentErr := ObjectToMap(cty.NilVal)
	got, err := ObjectToMap(cty.MapVal(map[string]cty.Value{"k": cty.StringVal("v")}))
	_, wrongErr := ObjectToMap(cty.StringVal("nope"))

	// --- Assert ---
	require.NoError(t, absentErr)
	assert.Nil(t, absent)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"k": "v"}, got)
	assert.ErrorContains(t, wrongErr, "expected an object")
}
