// Package scan finds declaration sites in SCSS/Sass source text with
// line-local pattern rules. It does not tokenize: a declaration-shaped
// substring inside a string literal is reported like any other.
package scan

import (
	"regexp"
	"strings"

	"fortio.org/safecast"

	"github.com/jward/sassdef/internal/symbol"
)

// CommentPrefix marks a single-line comment.
const CommentPrefix = "//"

var (
	// mixinDecl matches "@mixin name" or the indented-syntax "=name",
	// followed by a parameter list, a block, a terminator or end of line.
	mixinDecl = regexp.MustCompile(`^\s*(@mixin\s+|=)([A-Za-z_][\w-]*)\s*(?:[({;]|$)`)

	// functionDecl matches "@function name(".
	functionDecl = regexp.MustCompile(`^\s*(@function\s+)([A-Za-z_][\w-]*)\s*\(`)
)

// Scan returns every declaration of ref in text, in line order. Matches are
// stamped with file.
func Scan(file symbol.FileHandle, text string, ref symbol.Reference) []symbol.Match {
	if ref.Text == "" {
		return nil
	}

	var matches []symbol.Match
	for i, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, CommentPrefix) {
			continue
		}

		start, end, ok := matchLine(line, trimmed, ref)
		if !ok {
			continue
		}
		m, err := newMatch(file, i, start, end)
		if err != nil {
			// Positions beyond uint32 cannot be reported to an editor.
			continue
		}
		matches = append(matches, m)
	}
	return matches
}

// matchLine applies the rule for ref.Kind and returns the byte span of the
// declaration within the untrimmed line.
func matchLine(line, trimmed string, ref symbol.Reference) (int, int, bool) {
	switch ref.Kind {
	case symbol.Variable:
		if !strings.Contains(trimmed, ref.Text+":") {
			return 0, 0, false
		}
		start := strings.Index(line, ref.Text)
		return start, start + len(ref.Text), true
	case symbol.Mixin:
		return keywordSpan(mixinDecl, line, ref.Text)
	case symbol.Function:
		return keywordSpan(functionDecl, line, ref.Text)
	}
	return 0, 0, false
}

// keywordSpan runs a declaration pattern whose first group is the keyword
// and second group the name. The span runs from the keyword through the name.
func keywordSpan(re *regexp.Regexp, line, name string) (int, int, bool) {
	loc := re.FindStringSubmatchIndex(line)
	if loc == nil {
		return 0, 0, false
	}
	if line[loc[4]:loc[5]] != name {
		return 0, 0, false
	}
	return loc[2], loc[5], true
}

func newMatch(file symbol.FileHandle, line, start, end int) (symbol.Match, error) {
	l, err := safecast.Conv[uint32](line)
	if err != nil {
		return symbol.Match{}, err
	}
	s, err := safecast.Conv[uint32](start)
	if err != nil {
		return symbol.Match{}, err
	}
	e, err := safecast.Conv[uint32](end)
	if err != nil {
		return symbol.Match{}, err
	}
	return symbol.Match{File: file, Line: l, ColumnStart: s, ColumnEnd: e}, nil
}
