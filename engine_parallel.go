package sassdef

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/jward/sassdef/internal/scan"
)

// scanFiles reads and scans files concurrently, at most limit at a time
// (zero means no limit). Matches are concatenated in file order, each file's
// matches in line order. A file that cannot be read contributes nothing.
// Context cancellation aborts the whole batch with ErrCancelled.
func (e *Engine) scanFiles(ctx context.Context, files []FileHandle, limit int, ref Reference) ([]Match, error) {
	if len(files) == 0 {
		return nil, nil
	}

	results := make([][]Match, len(files))
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			text, err := e.source.Get(gctx, f)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				e.logger.Warn("skipping unreadable file", "file", f.Path, "error", err)
				return nil
			}
			results[i] = scan.Scan(f, text, ref)
			return nil
		})
	}

	waitErr := g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, cancelled(err)
	}
	if waitErr != nil {
		if errors.Is(waitErr, context.Canceled) || errors.Is(waitErr, context.DeadlineExceeded) {
			return nil, cancelled(waitErr)
		}
		return nil, waitErr
	}

	var out []Match
	for _, ms := range results {
		out = append(out, ms...)
	}
	return out, nil
}
