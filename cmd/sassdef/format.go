package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/jward/sassdef"
)

var (
	headerColor   = color.New(color.Bold)
	notFoundColor = color.New(color.FgYellow)
)

// formatDeclarationsText writes one "file:line:col" line per declaration,
// 1-based so editors and terminals can jump to it.
func formatDeclarationsText(w io.Writer, decls []CLIDeclaration) {
	for _, d := range decls {
		fmt.Fprintf(w, "%s:%d:%d\n", d.File, d.Line+1, d.ColumnStart+1)
	}
}

// formatRankedSetText writes the near and far sets as two lists.
func formatRankedSetText(w io.Writer, set CLIRankedSet) {
	headerColor.Fprintf(w, "Origin: %s (top dir %s)\n", set.Origin, set.TopDir)
	fmt.Fprintln(w)
	headerColor.Fprintf(w, "Near (%d):\n", len(set.Near))
	for _, p := range set.Near {
		fmt.Fprintf(w, "  %s\n", p)
	}
	fmt.Fprintln(w)
	headerColor.Fprintf(w, "Far (%d):\n", len(set.Far))
	for _, p := range set.Far {
		fmt.Fprintf(w, "  %s\n", p)
	}
}

// formatIndexStatsText writes index counters as aligned columns.
func formatIndexStatsText(w io.Writer, s CLIIndexStats) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ROOT\t%s\n", s.Root)
	fmt.Fprintf(tw, "CATALOG\t%s\n", s.Catalog)
	fmt.Fprintf(tw, "FILES\t%d\n", s.Files)
	fmt.Fprintf(tw, "ADDED\t%d\n", s.Added)
	fmt.Fprintf(tw, "CHANGED\t%d\n", s.Changed)
	fmt.Fprintf(tw, "DELETED\t%d\n", s.Deleted)
	fmt.Fprintf(tw, "UNCHANGED\t%d\n", s.Unchanged)
	fmt.Fprintf(tw, "SKIPPED\t%d\n", s.Skipped)
	tw.Flush()
}

// writeResultText dispatches to the text formatter for the result type.
func writeResultText(w io.Writer, result CLIResult) error {
	switch v := result.Results.(type) {
	case []CLIDeclaration:
		formatDeclarationsText(w, v)
	case CLIRankedSet:
		formatRankedSetText(w, v)
	case CLIIndexStats:
		formatIndexStatsText(w, v)
	case CLIHover:
		if v.Text != "" {
			fmt.Fprintln(w, v.Text)
		}
	case nil:
		// Nothing to print (no definition, dismissed picker).
	default:
		return fmt.Errorf("unsupported result type for text format: %T", v)
	}

	if result.TotalCount != nil {
		count := *result.TotalCount
		if shown := resultLen(result.Results); shown < count {
			fmt.Fprintf(w, "\nShowing %d of %d declarations\n", shown, count)
		}
	}
	return nil
}

// resultLen returns the length of a result slice, or 1 for a single value.
func resultLen(v any) int {
	switch r := v.(type) {
	case []CLIDeclaration:
		return len(r)
	case nil:
		return 0
	default:
		return 1
	}
}

// writeResult encodes result in the given format.
func writeResult(w io.Writer, format string, result CLIResult) error {
	switch format {
	case "text":
		return writeResultText(w, result)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(result); err != nil {
			return err
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
}

// outputResult writes result to stdout in the --format format.
func outputResult(result CLIResult) error {
	return writeResult(os.Stdout, flagFormat, result)
}

// outputError writes an error in the selected format and returns it so RunE
// can propagate it to Cobra. Structured formats put the envelope on stdout;
// text mode writes to stderr. Engine errors are summarised; the full error
// is logged at debug.
func outputError(command string, err error) error {
	errorHandled = true
	cliLogger.Debug("command failed", "command", command, "error", err)
	msg := userMessage(err)
	if flagFormat == "text" {
		fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
		return err
	}
	_ = writeResult(os.Stdout, flagFormat, CLIResult{Command: command, Error: msg})
	return err
}

// userMessage maps engine errors to short messages. Other errors are already
// written for the user and pass through unchanged.
func userMessage(err error) string {
	var nd *sassdef.NoDefinitionError
	switch {
	case errors.As(err, &nd):
		return fmt.Sprintf("no definition found for %s", nd.Reference.Text)
	case errors.Is(err, sassdef.ErrMalformedQuery):
		return "no variable, mixin or function reference found"
	case errors.Is(err, sassdef.ErrCancelled),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return "request cancelled"
	case errors.Is(err, sassdef.ErrNotReadable):
		return "file could not be read"
	}
	return err.Error()
}

// noteNotFound tells the user on stderr that nothing was declared.
func noteNotFound(text string) {
	notFoundColor.Fprintf(os.Stderr, "No definition found for %s\n", text)
}

// validFormats lists accepted values for --format.
var validFormats = []string{"json", "text", "yaml"}

// validateFormat checks that the --format flag value is recognized.
func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be one of %s", format, strings.Join(validFormats, ", "))
}
