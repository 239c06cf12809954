package server

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/sassdef"
	"github.com/jward/sassdef/internal/cache"
	"github.com/jward/sassdef/internal/workspace"
)

func writeFile(t *testing.T, root, rel, text string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
}

func newTestHandler(t *testing.T, policy sassdef.Policy) (*Handler, string) {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "theme/_colors.scss", "$primary: #333;\n@mixin center {\n}\n")
	writeFile(t, root, "theme/main.scss", "body {\n  color: $primary;\n  @include center;\n}\n")
	writeFile(t, root, "widgets/_button.scss", "$primary: red;\n")

	e, err := sassdef.New(root, cache.New(workspace.NewFSReader(root)), sassdef.WithPolicy(policy))
	require.NoError(t, err)
	corpus := func(ctx context.Context) ([]sassdef.FileHandle, error) {
		return workspace.Discover(ctx, root, workspace.Options{NoGit: true})
	}
	h := NewHandler(e, corpus, nil)
	h.newID = func() string { return "test-request" }
	return h, root
}

func call(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{Params: mcp.CallToolParams{Arguments: args}}
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func decode(t *testing.T, res *mcp.CallToolResult) DefinitionResponse {
	t.Helper()
	require.False(t, res.IsError, resultText(t, res))
	var out DefinitionResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	return out
}

func TestFindDefinition_Query(t *testing.T) {
	h, _ := newTestHandler(t, sassdef.AllMatches)

	res, err := h.FindDefinition(context.Background(), call(map[string]any{
		"file":  "theme/main.scss",
		"query": "$primary",
	}))
	require.NoError(t, err)

	out := decode(t, res)
	assert.Equal(t, "$primary", out.Reference)
	assert.Equal(t, "variable", out.Kind)
	assert.Equal(t, "all", out.Policy)
	require.Len(t, out.Declarations, 2)
	assert.Equal(t, "theme/_colors.scss:1", out.Declarations[0].Description)
	assert.Equal(t, "widgets/_button.scss:1", out.Declarations[1].Description)
}

func TestFindDefinition_Position(t *testing.T) {
	h, root := newTestHandler(t, sassdef.FirstMatch)

	res, err := h.FindDefinition(context.Background(), call(map[string]any{
		"file":   filepath.Join(root, "theme/main.scss"),
		"line":   float64(2),
		"column": float64(12),
	}))
	require.NoError(t, err)

	out := decode(t, res)
	assert.Equal(t, "mixin", out.Kind)
	require.Len(t, out.Declarations, 1)
	assert.Equal(t, filepath.Join(root, "theme/_colors.scss"), out.Declarations[0].File)
	assert.Equal(t, uint32(1), out.Declarations[0].Line)
	assert.Equal(t, uint32(13), out.Declarations[0].ColumnEnd)
}

func TestFindDefinition_NoDefinitionIsNotAnError(t *testing.T) {
	h, _ := newTestHandler(t, sassdef.AllMatches)

	res, err := h.FindDefinition(context.Background(), call(map[string]any{
		"file":  "theme/main.scss",
		"query": "$missing",
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "No definition found for $missing", resultText(t, res))
}

func TestFindDefinition_BadArguments(t *testing.T) {
	h, _ := newTestHandler(t, sassdef.FirstMatch)
	ctx := context.Background()

	res, err := h.FindDefinition(ctx, call(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = h.FindDefinition(ctx, call(map[string]any{"file": "theme/main.scss"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = h.FindDefinition(ctx, call(map[string]any{"file": "theme/main.scss", "line": 0, "column": 0}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "no variable, mixin or function")
}

func TestFindDefinition_UnreadableOrigin(t *testing.T) {
	h, _ := newTestHandler(t, sassdef.FirstMatch)
	res, err := h.FindDefinition(context.Background(), call(map[string]any{
		"file": "theme/gone.scss", "line": 0, "column": 0,
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, "file could not be read", resultText(t, res))
}

func TestFindDefinition_CorpusFailure(t *testing.T) {
	h, _ := newTestHandler(t, sassdef.FirstMatch)
	h.corpus = func(ctx context.Context) ([]sassdef.FileHandle, error) {
		return nil, errors.New("boom")
	}
	res, err := h.FindDefinition(context.Background(), call(map[string]any{"file": "a.scss", "query": "$x"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestHover(t *testing.T) {
	h, _ := newTestHandler(t, sassdef.FirstMatch)
	ctx := context.Background()

	res, err := h.Hover(ctx, call(map[string]any{"file": "theme/main.scss", "line": 1, "column": 11}))
	require.NoError(t, err)
	assert.Equal(t, sassdef.HoverText, resultText(t, res))

	res, err = h.Hover(ctx, call(map[string]any{"file": "theme/main.scss", "line": 2, "column": 12}))
	require.NoError(t, err)
	assert.Equal(t, "", resultText(t, res))

	res, err = h.Hover(ctx, call(map[string]any{"file": "theme/main.scss", "line": 99, "column": 0}))
	require.NoError(t, err)
	assert.False(t, res.IsError)

	res, err = h.Hover(ctx, call(map[string]any{"file": "theme/main.scss"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestNew(t *testing.T) {
	h, _ := newTestHandler(t, sassdef.FirstMatch)
	require.NotNil(t, New(h, "test"))
}
