package watch

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/sassdef/internal/symbol"
	"github.com/jward/sassdef/internal/workspace"
)

type recorder struct {
	mu      sync.Mutex
	changed []string
	deleted []string
}

func (r *recorder) OnChanged(f symbol.FileHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changed = append(r.changed, filepath.Base(f.Path))
}

func (r *recorder) OnDeleted(f symbol.FileHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, filepath.Base(f.Path))
}

func (r *recorder) sawChange(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Contains(r.changed, name)
}

func (r *recorder) sawDelete(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Contains(r.deleted, name)
}

func startWatcher(t *testing.T, root string, h Handler) *Watcher {
	t.Helper()
	w, err := New(root, workspace.Options{}, h, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		w.Close()
	})
	return w
}

func TestEventType_String(t *testing.T) {
	assert.Equal(t, "change", EventChange.String())
	assert.Equal(t, "delete", EventDelete.String())
	assert.Equal(t, "unknown", EventType(9).String())
}

func TestWatcher_ChangeAndDelete(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "a"), 0o755))
	r := &recorder{}
	startWatcher(t, root, r)

	path := filepath.Join(root, "a", "_vars.scss")
	require.NoError(t, os.WriteFile(path, []byte("$x: 1;\n"), 0o644))
	require.Eventually(t, func() bool { return r.sawChange("_vars.scss") }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.Remove(path))
	require.Eventually(t, func() bool { return r.sawDelete("_vars.scss") }, 5*time.Second, 10*time.Millisecond)
}

func TestWatcher_IgnoresNonStylesheets(t *testing.T) {
	root := t.TempDir()
	r := &recorder{}
	startWatcher(t, root, r)

	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("hi"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.sass"), []byte("$a: 1\n"), 0o644))
	require.Eventually(t, func() bool { return r.sawChange("main.sass") }, 5*time.Second, 10*time.Millisecond)
	assert.False(t, r.sawChange("notes.txt"))
}

func TestWatcher_NewDirectory(t *testing.T) {
	root := t.TempDir()
	r := &recorder{}
	w := startWatcher(t, root, r)

	dir := filepath.Join(root, "late")
	require.NoError(t, os.Mkdir(dir, 0o755))
	require.Eventually(t, func() bool { return slices.Contains(w.Dirs(), dir) }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "x.scss"), []byte("$x: 1;\n"), 0o644))
	require.Eventually(t, func() bool { return r.sawChange("x.scss") }, 5*time.Second, 10*time.Millisecond)
}

func TestNew_SkipsDependencyDirs(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "node_modules", "pkg"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o755))

	w, err := New(root, workspace.Options{}, &recorder{}, nil)
	require.NoError(t, err)
	defer w.Close()

	dirs := w.Dirs()
	assert.Contains(t, dirs, filepath.Join(root, "src"))
	assert.NotContains(t, dirs, filepath.Join(root, "node_modules"))
}
