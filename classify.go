package sassdef

import (
	"fmt"
	"regexp"
	"strings"
)

// HoverText is shown when the cursor rests on a variable.
const HoverText = "⌘ Click to jump to definition"

var (
	// variableToken is a sigil-prefixed variable name.
	variableToken = regexp.MustCompile(`\$[\w-]+`)

	// mixinToken is a mixin name after @include or @mixin, or after the
	// indented-syntax "+" / "=" shorthands at the start of a line.
	mixinToken = regexp.MustCompile(`(?:@include\s+|@mixin\s+|^\s*[+=])([A-Za-z_][\w-]*)`)

	// callToken is an identifier immediately followed by "(".
	callToken = regexp.MustCompile(`([A-Za-z_][\w-]*)\(`)

	// The query patterns accept the same mixin forms as mixinToken, anchored
	// at the start of the query.
	queryVariable = regexp.MustCompile(`^\$[\w-]+`)
	queryMixin    = regexp.MustCompile(`^(?:@include\s+|@mixin\s+|[+=])([A-Za-z_][\w-]*)`)
	queryFunction = regexp.MustCompile(`^([A-Za-z_][\w-]*)\s*\(`)
)

// Classify turns a raw query such as "$color", "@include center(10)" or
// "rem(4px)" into a Reference. Precedence: explicit "$" sigil, then mixin
// include, then function call.
func Classify(query string) (Reference, error) {
	q := strings.TrimSpace(query)
	if m := queryVariable.FindString(q); m != "" {
		return Reference{Text: m, Kind: Variable}, nil
	}
	if m := queryMixin.FindStringSubmatch(q); m != nil {
		return Reference{Text: m[1], Kind: Mixin}, nil
	}
	if m := queryFunction.FindStringSubmatch(q); m != nil {
		return Reference{Text: m[1], Kind: Function}, nil
	}
	return Reference{}, fmt.Errorf("%w: %q", ErrMalformedQuery, query)
}

// ReferenceAt extracts the reference under a 0-based byte column of line,
// with the same precedence as Classify. A column at the end of a token still
// selects it.
func ReferenceAt(line string, col int) (Reference, error) {
	for _, loc := range variableToken.FindAllStringIndex(line, -1) {
		if col >= loc[0] && col <= loc[1] {
			return Reference{Text: line[loc[0]:loc[1]], Kind: Variable}, nil
		}
	}
	for _, loc := range mixinToken.FindAllStringSubmatchIndex(line, -1) {
		if col >= loc[2] && col <= loc[3] {
			return Reference{Text: line[loc[2]:loc[3]], Kind: Mixin}, nil
		}
	}
	for _, loc := range callToken.FindAllStringSubmatchIndex(line, -1) {
		if col >= loc[2] && col <= loc[3] {
			return Reference{Text: line[loc[2]:loc[3]], Kind: Function}, nil
		}
	}
	return Reference{}, fmt.Errorf("%w: nothing to resolve at column %d", ErrMalformedQuery, col)
}

// HoverHint returns HoverText when col rests on a variable.
func HoverHint(line string, col int) (string, bool) {
	ref, err := ReferenceAt(line, col)
	if err != nil || ref.Kind != Variable {
		return "", false
	}
	return HoverText, true
}

func validReference(ref Reference) bool {
	if ref.Text == "" {
		return false
	}
	switch ref.Kind {
	case Variable:
		return strings.HasPrefix(ref.Text, "$") && len(ref.Text) > 1
	case Mixin, Function:
		return !strings.HasPrefix(ref.Text, "$")
	}
	return false
}
