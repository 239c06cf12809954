package sassdef

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/jward/sassdef/internal/logging"
)

// DefaultChunkSize bounds how many far-set files are read concurrently.
const DefaultChunkSize = 20

// ContentSource supplies the text of a file. *cache.Cache satisfies it.
type ContentSource interface {
	Get(ctx context.Context, f FileHandle) (string, error)
}

// Engine resolves references against a corpus of stylesheet files.
// An Engine holds no per-request state and is safe for concurrent use.
type Engine struct {
	root          string
	source        ContentSource
	policy        Policy
	chunkSize     int
	legacyRanking bool
	partialPrefix string
	logger        *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithPolicy selects FirstMatch (default) or AllMatches.
func WithPolicy(p Policy) Option {
	return func(e *Engine) {
		e.policy = p
	}
}

// WithChunkSize sets how many far-set files are scanned at once. Values
// below one are ignored.
func WithChunkSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.chunkSize = n
		}
	}
}

// WithLegacyRanking orders each partition by directory level outward from
// the origin, with partials first within a level.
func WithLegacyRanking(enabled bool) Option {
	return func(e *Engine) {
		e.legacyRanking = enabled
	}
}

// WithPartialPrefix sets the filename prefix that marks a partial.
func WithPartialPrefix(prefix string) Option {
	return func(e *Engine) {
		e.partialPrefix = prefix
	}
}

// WithLogger sets the logger. Unreadable files are reported at warn level.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an Engine for the workspace rooted at root that reads file
// text through source.
func New(root string, source ContentSource, opts ...Option) (*Engine, error) {
	if source == nil {
		return nil, errors.New("sassdef: nil content source")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("sassdef: resolve root: %w", err)
	}
	e := &Engine{
		root:          abs,
		source:        source,
		policy:        FirstMatch,
		chunkSize:     DefaultChunkSize,
		partialPrefix: "_",
		logger:        logging.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Root returns the absolute workspace root.
func (e *Engine) Root() string {
	return e.root
}

// Policy returns the configured match policy.
func (e *Engine) Policy() Policy {
	return e.policy
}

// Partition splits corpus into near and far sets for origin.
func (e *Engine) Partition(origin FileHandle, corpus []FileHandle) RankedFileSet {
	return Partition(e.root, origin, corpus, RankOptions{
		Legacy:        e.legacyRanking,
		PartialPrefix: e.partialPrefix,
	})
}

// Resolve finds the declarations of ref in corpus, ranked relative to the
// origin file. The near set is scanned first; the far set is scanned in
// chunks only when the policy still needs matches.
//
// A result always holds at least one declaration. When nothing matches the
// error is a *NoDefinitionError. Unreadable files count as holding no
// matches.
func (e *Engine) Resolve(ctx context.Context, ref Reference, origin FileHandle, corpus []FileHandle) (*Result, error) {
	if !validReference(ref) {
		return nil, fmt.Errorf("%w: %s", ErrMalformedQuery, ref)
	}
	if err := ctx.Err(); err != nil {
		return nil, cancelled(err)
	}

	set := e.Partition(origin, corpus)
	e.logger.Debug("resolving",
		"reference", ref.String(),
		"origin", origin.Path,
		"near", len(set.Near),
		"far", len(set.Far),
		"policy", e.policy.String())

	matches, err := e.scanFiles(ctx, set.Near, 0, ref)
	if err != nil {
		return nil, err
	}
	if e.policy == FirstMatch && len(matches) > 0 {
		return e.result(ref, matches[:1]), nil
	}

	for start := 0; start < len(set.Far); start += e.chunkSize {
		end := min(start+e.chunkSize, len(set.Far))
		found, err := e.scanFiles(ctx, set.Far[start:end], e.chunkSize, ref)
		if err != nil {
			return nil, err
		}
		if e.policy == FirstMatch && len(found) > 0 {
			return e.result(ref, found[:1]), nil
		}
		matches = append(matches, found...)
	}

	if len(matches) == 0 {
		return nil, &NoDefinitionError{Reference: ref}
	}
	return e.result(ref, matches), nil
}

// ResolveQuery classifies a raw query and resolves it.
func (e *Engine) ResolveQuery(ctx context.Context, query string, origin FileHandle, corpus []FileHandle) (*Result, error) {
	ref, err := Classify(query)
	if err != nil {
		return nil, err
	}
	return e.Resolve(ctx, ref, origin, corpus)
}

// ResolveAt resolves the reference at a 0-based line and byte column of the
// origin file.
func (e *Engine) ResolveAt(ctx context.Context, origin FileHandle, line, col int, corpus []FileHandle) (*Result, error) {
	ref, err := e.ReferenceAt(ctx, origin, line, col)
	if err != nil {
		return nil, err
	}
	return e.Resolve(ctx, ref, origin, corpus)
}

// ReferenceAt reads the origin file and extracts the reference at a 0-based
// line and byte column.
func (e *Engine) ReferenceAt(ctx context.Context, origin FileHandle, line, col int) (Reference, error) {
	text, err := e.LineAt(ctx, origin, line)
	if err != nil {
		return Reference{}, err
	}
	return ReferenceAt(text, col)
}

// LineAt returns one 0-based line of f, without its terminator.
func (e *Engine) LineAt(ctx context.Context, f FileHandle, line int) (string, error) {
	text, err := e.source.Get(ctx, f)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", cancelled(ctxErr)
		}
		return "", err
	}
	lines := strings.Split(text, "\n")
	if line < 0 || line >= len(lines) {
		return "", fmt.Errorf("%w: line %d out of range (%d lines)", ErrMalformedQuery, line, len(lines))
	}
	return strings.TrimSuffix(lines[line], "\r"), nil
}

func (e *Engine) result(ref Reference, matches []Match) *Result {
	decls := make([]Declaration, len(matches))
	for i, m := range matches {
		decls[i] = Declaration{Match: m, Description: describe(e.root, m)}
	}
	return &Result{Reference: ref, Declarations: decls}
}
