package sassdef

import (
	"fmt"
	"path/filepath"

	"github.com/jward/sassdef/internal/symbol"
)

// Public type aliases for the internal symbol types used in the Engine API.
// These are Go type aliases (=), identical to the internal types at compile
// time.

type Kind = symbol.Kind
type Reference = symbol.Reference
type FileHandle = symbol.FileHandle
type Match = symbol.Match

const (
	Variable = symbol.Variable
	Mixin    = symbol.Mixin
	Function = symbol.Function
)

// NewFile returns a file-scheme handle for path.
func NewFile(path string) FileHandle {
	return symbol.NewFile(path)
}

// Policy selects how many matches Resolve keeps.
type Policy int

const (
	// FirstMatch returns the first declaration found, near set first.
	FirstMatch Policy = iota
	// AllMatches returns every declaration in the corpus, near set first.
	AllMatches
)

func (p Policy) String() string {
	if p == AllMatches {
		return "all"
	}
	return "first"
}

// PolicyFor maps the show-all-references setting to a Policy.
func PolicyFor(showAllReferences bool) Policy {
	if showAllReferences {
		return AllMatches
	}
	return FirstMatch
}

// Declaration is a match plus its presentation description.
type Declaration struct {
	Match
	// Description is "relative/path:line" with a 1-based line.
	Description string
}

// Result is the ordered outcome of a successful Resolve: near-set matches
// before far-set matches, each partition in ranked file order and line order.
type Result struct {
	Reference    Reference
	Declarations []Declaration
}

// Matches returns the bare matches in order.
func (r *Result) Matches() []Match {
	out := make([]Match, len(r.Declarations))
	for i, d := range r.Declarations {
		out[i] = d.Match
	}
	return out
}

// describe builds the "relative/path:line" description for m.
func describe(root string, m Match) string {
	rel, err := filepath.Rel(root, anchor(root, m.File.Path))
	if err != nil {
		rel = m.File.Path
	}
	return fmt.Sprintf("%s:%d", filepath.ToSlash(rel), m.Line+1)
}
