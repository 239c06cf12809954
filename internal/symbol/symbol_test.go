package symbol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want Kind
	}{
		{"variable", Variable},
		{"VAR", Variable},
		{" mixin ", Mixin},
		{"function", Function},
		{"func", Function},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseKind("placeholder")
	require.Error(t, err)
}

func TestKindString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "variable", Variable.String())
	assert.Equal(t, "mixin", Mixin.String())
	assert.Equal(t, "function", Function.String())
	assert.Equal(t, "unknown", Kind(0).String())
}

func TestFileHandleEqualityIsPathBased(t *testing.T) {
	t.Parallel()
	a := FileHandle{Path: "/proj/a/../a/_vars.scss", Scheme: "file"}
	b := FileHandle{Path: "/proj/a/_vars.scss", Scheme: "untitled"}
	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Key(), b.Key())

	c := NewFile("/proj/b/_vars.scss")
	assert.False(t, a.Equal(c))
	assert.Equal(t, "file", c.Scheme)
}
