package sassdef

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/sassdef/internal/cache"
	"github.com/jward/sassdef/internal/workspace"
)

// Golden test format.
type goldenFile struct {
	Queries []goldenQuery `json:"queries"`
}

type goldenQuery struct {
	Origin string    `json:"origin"`
	Query  string    `json:"query,omitempty"`
	At     *goldenAt `json:"at,omitempty"`
	Policy string    `json:"policy"`
	// Expect lists descriptions in order; empty means no definition.
	Expect []string `json:"expect"`
}

type goldenAt struct {
	Line int `json:"line"`
	Col  int `json:"col"`
}

// TestGolden walks testdata/scss/ and runs every level that has a golden.json
// and a src/ workspace.
func TestGolden(t *testing.T) {
	levels, err := os.ReadDir(filepath.Join("testdata", "scss"))
	if err != nil {
		t.Skip("no testdata directory found")
	}

	for _, level := range levels {
		if !level.IsDir() {
			continue
		}
		testDir := filepath.Join("testdata", "scss", level.Name())
		goldenPath := filepath.Join(testDir, "golden.json")
		srcDir := filepath.Join(testDir, "src")

		if _, err := os.Stat(goldenPath); err != nil {
			continue
		}
		if _, err := os.Stat(srcDir); err != nil {
			continue
		}

		t.Run(level.Name(), func(t *testing.T) {
			runGoldenTest(t, srcDir, goldenPath)
		})
	}
}

func runGoldenTest(t *testing.T, srcDir, goldenPath string) {
	t.Helper()

	goldenData, err := os.ReadFile(goldenPath)
	require.NoError(t, err)
	var golden goldenFile
	require.NoError(t, json.Unmarshal(goldenData, &golden))

	root, err := filepath.Abs(srcDir)
	require.NoError(t, err)

	ctx := context.Background()
	corpus, err := workspace.Discover(ctx, root, workspace.Options{NoGit: true})
	require.NoError(t, err)
	require.NotEmpty(t, corpus)

	c := cache.New(workspace.NewFSReader(root))
	for _, q := range golden.Queries {
		name := q.Query
		if q.At != nil {
			name = q.Origin
		}
		t.Run(q.Policy+"/"+name, func(t *testing.T) {
			policy := FirstMatch
			if q.Policy == "all" {
				policy = AllMatches
			}
			e, err := New(root, c, WithPolicy(policy))
			require.NoError(t, err)

			origin := NewFile(filepath.Join(root, q.Origin))
			var res *Result
			if q.At != nil {
				res, err = e.ResolveAt(ctx, origin, q.At.Line, q.At.Col, corpus)
			} else {
				res, err = e.ResolveQuery(ctx, q.Query, origin, corpus)
			}

			if len(q.Expect) == 0 {
				assert.True(t, errors.Is(err, ErrNoDefinition), "expected no definition, got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, q.Expect, descriptions(res))
		})
	}
}
