// Package symbol defines the value types shared by the scanner, the content
// cache and the resolution engine.
package symbol

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Kind is the classified kind of a reference. It is assigned once by
// classification and carried unchanged through scanning and reduction.
type Kind int

const (
	Variable Kind = iota + 1
	Mixin
	Function
)

func (k Kind) String() string {
	switch k {
	case Variable:
		return "variable"
	case Mixin:
		return "mixin"
	case Function:
		return "function"
	default:
		return "unknown"
	}
}

// ParseKind converts a kind name ("variable", "mixin", "function") to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "variable", "var":
		return Variable, nil
	case "mixin":
		return Mixin, nil
	case "function", "func":
		return Function, nil
	}
	return 0, fmt.Errorf("unknown symbol kind %q", s)
}

// Reference is a symbol referenced at a cursor or given as a query.
// Variables keep their "$" sigil in Text; mixin and function names do not.
type Reference struct {
	Text string
	Kind Kind
}

func (r Reference) String() string {
	return r.Kind.String() + " " + r.Text
}

// FileHandle identifies a source file. Two handles are equal when their
// cleaned paths are equal; the scheme is informational.
type FileHandle struct {
	Path   string
	Scheme string
}

// NewFile returns a file-scheme handle for path.
func NewFile(path string) FileHandle {
	return FileHandle{Path: filepath.Clean(path), Scheme: "file"}
}

// Key returns the identity used for equality and cache lookups.
func (f FileHandle) Key() string {
	return filepath.Clean(f.Path)
}

// Equal reports whether f and other name the same file.
func (f FileHandle) Equal(other FileHandle) bool {
	return f.Key() == other.Key()
}

// Match is a declaration site. Line and columns are 0-based; ColumnEnd is
// exclusive.
type Match struct {
	File        FileHandle
	Line        uint32
	ColumnStart uint32
	ColumnEnd   uint32
}
