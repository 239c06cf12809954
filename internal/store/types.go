package store

import "time"

// File is one catalogued stylesheet. Path is absolute; TopDir is the first
// path segment relative to the project root and drives the near/far split.
type File struct {
	ID          int64
	Path        string
	TopDir      string
	Partial     bool
	Hash        string
	Size        int64
	LastIndexed time.Time
}
