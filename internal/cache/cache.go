// Package cache memoizes file text for the resolution engine.
//
// Entries expire lazily: staleness is checked on the next Get, there is no
// background sweep. Concurrent misses on the same path share a single read.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jward/sassdef/internal/symbol"
)

// DefaultTTL is the maximum age of an entry before it is re-read.
const DefaultTTL = 5 * time.Second

// ErrNotReadable is returned when the backing read for a file fails.
var ErrNotReadable = errors.New("file not readable")

// Reader is the file-access collaborator the cache reads through.
type Reader interface {
	ReadText(ctx context.Context, f symbol.FileHandle) (string, error)
}

// ReaderFunc adapts a function to the Reader interface.
type ReaderFunc func(ctx context.Context, f symbol.FileHandle) (string, error)

func (fn ReaderFunc) ReadText(ctx context.Context, f symbol.FileHandle) (string, error) {
	return fn(ctx, f)
}

type entry struct {
	text       string
	capturedAt time.Time
}

// Cache holds the text of recently read files.
type Cache struct {
	reader Reader
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger

	mu      sync.Mutex
	entries map[string]entry
	// gens is bumped on every invalidation so an in-flight read that started
	// before the invalidation does not store its result.
	gens  map[string]uint64
	group singleflight.Group
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL sets the staleness bound. A zero TTL disables reuse: every Get
// re-reads.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// WithLogger sets the logger used for read failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// New creates a Cache that reads through reader.
func New(reader Reader, opts ...Option) *Cache {
	c := &Cache{
		reader:  reader,
		ttl:     DefaultTTL,
		now:     time.Now,
		logger:  slog.New(slog.DiscardHandler),
		entries: make(map[string]entry),
		gens:    make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the text of f, reading it through the Reader when there is no
// entry or the entry is at least TTL old.
func (c *Cache) Get(ctx context.Context, f symbol.FileHandle) (string, error) {
	key := f.Key()

	c.mu.Lock()
	e, ok := c.entries[key]
	gen := c.gens[key]
	c.mu.Unlock()
	if ok && c.now().Sub(e.capturedAt) < c.ttl {
		return e.text, nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// The generation is part of the flight key so a read started before an
	// invalidation is never shared with callers arriving after it. The read is
	// detached from the caller that starts it; a cancelled caller stops
	// waiting without ending the flight for the others.
	readCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(fmt.Sprintf("%s\x00%d", key, gen), func() (any, error) {
		// A flight for this key may have completed between the lookup above
		// and joining the group.
		c.mu.Lock()
		if e, ok := c.entries[key]; ok && c.gens[key] == gen && c.now().Sub(e.capturedAt) < c.ttl {
			c.mu.Unlock()
			return e.text, nil
		}
		c.mu.Unlock()

		text, err := c.reader.ReadText(readCtx, f)
		c.mu.Lock()
		defer c.mu.Unlock()
		if err != nil {
			delete(c.entries, key)
			return "", err
		}
		if c.gens[key] == gen {
			c.entries[key] = entry{text: text, capturedAt: c.now()}
		}
		return text, nil
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			c.logger.Debug("read failed", "path", key, "error", res.Err)
			return "", fmt.Errorf("%w: %s: %w", ErrNotReadable, key, res.Err)
		}
		return res.Val.(string), nil
	}
}

// Invalidate removes any entry for f. The next Get re-reads.
func (c *Cache) Invalidate(f symbol.FileHandle) {
	key := f.Key()
	c.mu.Lock()
	delete(c.entries, key)
	c.gens[key]++
	c.mu.Unlock()
}

// OnChanged is the change-notification hook for a modified file.
func (c *Cache) OnChanged(f symbol.FileHandle) {
	c.Invalidate(f)
}

// OnDeleted is the change-notification hook for a removed file.
func (c *Cache) OnDeleted(f symbol.FileHandle) {
	c.Invalidate(f)
}

// Len returns the number of stored entries, fresh or stale.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Close drops every entry. The Cache remains usable afterwards.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		c.gens[key]++
	}
	c.entries = make(map[string]entry)
}
