// Package watch forwards filesystem changes under a project root to a
// change handler, typically the catalog indexer or the content cache.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/jward/sassdef/internal/logging"
	"github.com/jward/sassdef/internal/symbol"
	"github.com/jward/sassdef/internal/workspace"
)

// EventType is the kind of change reported to a Handler.
type EventType int

const (
	EventChange EventType = iota
	EventDelete
)

func (e EventType) String() string {
	switch e {
	case EventChange:
		return "change"
	case EventDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Handler receives changes to watched stylesheet files.
type Handler interface {
	OnChanged(f symbol.FileHandle)
	OnDeleted(f symbol.FileHandle)
}

// Watcher watches every directory under a root and reports events for files
// that match the workspace include and exclude patterns.
type Watcher struct {
	root    string
	opts    workspace.Options
	handler Handler
	logger  *slog.Logger
	fsw     *fsnotify.Watcher
}

// New creates a Watcher and registers every directory under root. Events
// are delivered once Run is called.
func New(root string, opts workspace.Options, handler Handler, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	if len(opts.Include) == 0 {
		opts.Include = workspace.DefaultInclude
	}
	if opts.Exclude == nil {
		opts.Exclude = workspace.DefaultExclude
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	w := &Watcher{
		root:    filepath.Clean(root),
		opts:    opts,
		handler: handler,
		logger:  logger,
		fsw:     fsw,
	}
	if err := w.addTree(w.root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Run delivers events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addTree(ev.Name); err != nil {
				w.logger.Warn("watch new directory", "dir", ev.Name, "error", err)
			}
			return
		}
	}
	if !w.selected(ev.Name) {
		return
	}

	var typ EventType
	switch {
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		typ = EventDelete
	case ev.Has(fsnotify.Write), ev.Has(fsnotify.Create):
		typ = EventChange
	default:
		return
	}

	f := symbol.NewFile(ev.Name)
	w.logger.Debug("file event", "type", typ.String(), "file", f.Path)
	if typ == EventDelete {
		w.handler.OnDeleted(f)
		return
	}
	w.handler.OnChanged(f)
}

func (w *Watcher) selected(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	return workspace.Matches(filepath.ToSlash(rel), w.opts.Include, w.opts.Exclude)
}

// addTree registers dir and its subdirectories, skipping hidden and
// dependency directories.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// The directory may vanish between the event and the walk.
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && workspace.SkipDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// Dirs returns the watched directories, for diagnostics.
func (w *Watcher) Dirs() []string {
	list := w.fsw.WatchList()
	out := make([]string, 0, len(list))
	for _, d := range list {
		if strings.HasPrefix(d, w.root) {
			out = append(out, d)
		}
	}
	return out
}
