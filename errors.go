package sassdef

import (
	"errors"
	"fmt"

	"github.com/jward/sassdef/internal/cache"
)

var (
	// ErrNotReadable marks a file that could not be read. Resolve skips such
	// files; it surfaces only from ResolveAt when the origin is unreadable.
	ErrNotReadable = cache.ErrNotReadable

	// ErrNoDefinition matches every *NoDefinitionError.
	ErrNoDefinition = errors.New("no definition found")

	// ErrCancelled is returned when the context ends during resolution. No
	// partial result accompanies it.
	ErrCancelled = errors.New("resolution cancelled")

	// ErrMalformedQuery is returned when a query or cursor position does not
	// hold a variable, mixin or function reference.
	ErrMalformedQuery = errors.New("malformed query")
)

// NoDefinitionError reports that no file declares the reference. It is an
// informational outcome rather than a failure.
type NoDefinitionError struct {
	Reference Reference
}

func (e *NoDefinitionError) Error() string {
	return fmt.Sprintf("no definition found for %s %s", e.Reference.Kind, e.Reference.Text)
}

func (e *NoDefinitionError) Is(target error) bool {
	return target == ErrNoDefinition
}

func cancelled(err error) error {
	return fmt.Errorf("%w: %w", ErrCancelled, err)
}
