package sassdef

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/jward/sassdef/internal/cache"
	"github.com/jward/sassdef/internal/logging"
	"github.com/jward/sassdef/internal/store"
)

// Store is the SQLite file catalog.
type Store = store.Store

// Notifier receives file change notifications. *cache.Cache satisfies it.
type Notifier interface {
	OnChanged(f FileHandle)
	OnDeleted(f FileHandle)
}

// SyncStats summarizes one catalog sync.
type SyncStats struct {
	Added     int
	Changed   int
	Deleted   int
	Unchanged int
	Skipped   int
}

// Indexer keeps the file catalog in step with the workspace. Content hashes
// detect edits; changed and deleted files are forwarded to the notifier so a
// content cache never serves stale text past the next sync.
//
// Indexer also implements Notifier so a file watcher can drive it directly.
type Indexer struct {
	store    *store.Store
	reader   cache.Reader
	root     string
	prefix   string
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time

	mu sync.Mutex
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithNotifier forwards catalog changes to n.
func WithNotifier(n Notifier) IndexerOption {
	return func(ix *Indexer) {
		ix.notifier = n
	}
}

// WithIndexLogger sets the Indexer's logger.
func WithIndexLogger(logger *slog.Logger) IndexerOption {
	return func(ix *Indexer) {
		if logger != nil {
			ix.logger = logger
		}
	}
}

// WithIndexPartialPrefix sets the filename prefix recorded as partial.
func WithIndexPartialPrefix(prefix string) IndexerOption {
	return func(ix *Indexer) {
		ix.prefix = prefix
	}
}

// OpenCatalog opens and migrates the catalog database at dbPath.
func OpenCatalog(dbPath string) (*Store, error) {
	s, err := store.NewStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("sassdef: create store: %w", err)
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		return nil, fmt.Errorf("sassdef: migrate: %w", err)
	}
	return s, nil
}

// NewIndexer creates an Indexer over s for the workspace at root, reading
// file bytes through reader.
func NewIndexer(s *Store, reader cache.Reader, root string, opts ...IndexerOption) *Indexer {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = filepath.Clean(root)
	}
	ix := &Indexer{
		store:  s,
		reader: reader,
		root:   abs,
		prefix: "_",
		logger: logging.Discard(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// Sync reconciles the catalog with files: new files are added, files whose
// content hash changed are updated, and catalogued files absent from files
// are removed. Files that cannot be read are skipped and left as they were.
func (ix *Indexer) Sync(ctx context.Context, files []FileHandle) (SyncStats, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	var stats SyncStats
	existing, err := ix.store.Files()
	if err != nil {
		return stats, fmt.Errorf("list catalog: %w", err)
	}
	known := make(map[string]*store.File, len(existing))
	for _, f := range existing {
		known[f.Path] = f
	}

	seen := make(map[string]bool, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return stats, cancelled(err)
		}
		seen[f.Key()] = true
		out, err := ix.update(ctx, f, known[f.Key()])
		if err != nil {
			if ctx.Err() != nil {
				return stats, cancelled(ctx.Err())
			}
			ix.logger.Warn("skipping unreadable file", "file", f.Path, "error", err)
			stats.Skipped++
			continue
		}
		switch out {
		case outcomeAdded:
			stats.Added++
		case outcomeChanged:
			stats.Changed++
			ix.notifyChanged(f)
		default:
			stats.Unchanged++
		}
	}

	var gone []string
	for _, f := range existing {
		if !seen[f.Path] {
			gone = append(gone, f.Path)
		}
	}
	if len(gone) > 0 {
		if err := ix.store.DeleteFiles(gone); err != nil {
			return stats, err
		}
		for _, p := range gone {
			ix.notifyDeleted(NewFile(p))
		}
		stats.Deleted = len(gone)
	}

	if err := ix.store.SetMetadata("root", ix.root); err != nil {
		return stats, err
	}
	if err := ix.store.SetMetadata("last_sync", ix.now().UTC().Format(time.RFC3339)); err != nil {
		return stats, err
	}

	ix.logger.Info("catalog synced",
		"added", stats.Added,
		"changed", stats.Changed,
		"deleted", stats.Deleted,
		"unchanged", stats.Unchanged,
		"skipped", stats.Skipped)
	return stats, nil
}

// Corpus returns the catalogued files in path order.
func (ix *Indexer) Corpus() ([]FileHandle, error) {
	files, err := ix.store.Files()
	if err != nil {
		return nil, err
	}
	out := make([]FileHandle, len(files))
	for i, f := range files {
		out[i] = NewFile(f.Path)
	}
	return out, nil
}

// OnChanged re-hashes f and records it. A file that has disappeared is
// treated as deleted.
func (ix *Indexer) OnChanged(f FileHandle) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	prev, err := ix.store.FileByPath(f.Key())
	if err != nil {
		ix.logger.Warn("catalog lookup failed", "file", f.Path, "error", err)
		return
	}
	if _, err := ix.update(context.Background(), f, prev); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			ix.remove(f)
			return
		}
		ix.logger.Warn("skipping unreadable file", "file", f.Path, "error", err)
	}
	// Cached text may predate the catalog row, so drop it regardless.
	ix.notifyChanged(f)
}

// OnDeleted removes f from the catalog.
func (ix *Indexer) OnDeleted(f FileHandle) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.remove(f)
}

type outcome int

const (
	outcomeUnchanged outcome = iota
	outcomeAdded
	outcomeChanged
)

func (ix *Indexer) update(ctx context.Context, f FileHandle, prev *store.File) (outcome, error) {
	text, err := ix.reader.ReadText(ctx, f)
	if err != nil {
		return outcomeUnchanged, err
	}
	hash := store.ContentHash([]byte(text))
	if prev != nil && prev.Hash == hash {
		return outcomeUnchanged, nil
	}

	row := &store.File{
		Path:        f.Key(),
		TopDir:      TopDir(ix.root, f.Path),
		Partial:     ix.prefix != "" && strings.HasPrefix(filepath.Base(f.Path), ix.prefix),
		Hash:        hash,
		Size:        int64(len(text)),
		LastIndexed: ix.now(),
	}
	if _, err := ix.store.UpsertFile(row); err != nil {
		return outcomeUnchanged, err
	}
	if prev == nil {
		ix.logger.Debug("file added", "file", f.Path)
		return outcomeAdded, nil
	}
	ix.logger.Debug("file changed", "file", f.Path)
	return outcomeChanged, nil
}

func (ix *Indexer) remove(f FileHandle) {
	if err := ix.store.DeleteFiles([]string{f.Key()}); err != nil {
		ix.logger.Warn("catalog delete failed", "file", f.Path, "error", err)
	}
	ix.notifyDeleted(f)
}

func (ix *Indexer) notifyChanged(f FileHandle) {
	if ix.notifier != nil {
		ix.notifier.OnChanged(f)
	}
}

func (ix *Indexer) notifyDeleted(f FileHandle) {
	if ix.notifier != nil {
		ix.notifier.OnDeleted(f)
	}
}
