package main

import "github.com/jward/sassdef"

// CLIResult is the top-level envelope for every command.
type CLIResult struct {
	Command    string `json:"command" yaml:"command"`
	Results    any    `json:"results" yaml:"results"`
	TotalCount *int   `json:"total_count,omitempty" yaml:"total_count,omitempty"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
}

// CLIDeclaration is one declaration site. Line and columns are 0-based;
// Description carries the 1-based line.
type CLIDeclaration struct {
	File        string `json:"file" yaml:"file"`
	Line        uint32 `json:"line" yaml:"line"`
	ColumnStart uint32 `json:"column_start" yaml:"column_start"`
	ColumnEnd   uint32 `json:"column_end" yaml:"column_end"`
	Description string `json:"description" yaml:"description"`
	Reference   string `json:"reference" yaml:"reference"`
	Kind        string `json:"kind" yaml:"kind"`
}

// CLIRankedSet is the near/far partition of the corpus for one origin.
type CLIRankedSet struct {
	Origin string   `json:"origin" yaml:"origin"`
	TopDir string   `json:"top_dir" yaml:"top_dir"`
	Near   []string `json:"near" yaml:"near"`
	Far    []string `json:"far" yaml:"far"`
}

// CLIIndexStats summarises an index run.
type CLIIndexStats struct {
	Root      string `json:"root" yaml:"root"`
	Catalog   string `json:"catalog" yaml:"catalog"`
	Files     int    `json:"files" yaml:"files"`
	Added     int    `json:"added" yaml:"added"`
	Changed   int    `json:"changed" yaml:"changed"`
	Deleted   int    `json:"deleted" yaml:"deleted"`
	Unchanged int    `json:"unchanged" yaml:"unchanged"`
	Skipped   int    `json:"skipped" yaml:"skipped"`
}

// CLIHover is the hover answer for one position. Text is empty when the
// position does not rest on a variable.
type CLIHover struct {
	Reference string `json:"reference,omitempty" yaml:"reference,omitempty"`
	Text      string `json:"text" yaml:"text"`
}

// toCLIDeclarations converts engine declarations for output.
func toCLIDeclarations(ref sassdef.Reference, decls []sassdef.Declaration) []CLIDeclaration {
	out := make([]CLIDeclaration, 0, len(decls))
	for _, d := range decls {
		out = append(out, CLIDeclaration{
			File:        d.File.Path,
			Line:        d.Line,
			ColumnStart: d.ColumnStart,
			ColumnEnd:   d.ColumnEnd,
			Description: d.Description,
			Reference:   ref.Text,
			Kind:        ref.Kind.String(),
		})
	}
	return out
}
