package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/jward/sassdef"
)

var hoverCmd = &cobra.Command{
	Use:   "hover <file> <line> <col>",
	Short: "Print the go-to-definition hint for a position",
	Long:  "Prints the hover hint when the 0-based line and byte column of file rest on a variable, and nothing otherwise.",
	Args:  cobra.ExactArgs(3),
	RunE:  runHover,
}

func runHover(cmd *cobra.Command, args []string) error {
	origin, env, err := setup(args[0])
	if err != nil {
		return outputError("hover", err)
	}
	line, err := parseIntArg("line", args[1])
	if err != nil {
		return outputError("hover", err)
	}
	col, err := parseIntArg("column", args[2])
	if err != nil {
		return outputError("hover", err)
	}

	engine, err := env.newEngine(env.newCache())
	if err != nil {
		return outputError("hover", err)
	}
	text, err := engine.LineAt(commandContext(cmd), origin, line)
	if errors.Is(err, sassdef.ErrMalformedQuery) {
		return outputResult(CLIResult{Command: "hover", Results: CLIHover{}})
	}
	if err != nil {
		return outputError("hover", err)
	}

	var out CLIHover
	if hint, ok := sassdef.HoverHint(text, col); ok {
		out.Text = hint
		if ref, err := sassdef.ReferenceAt(text, col); err == nil {
			out.Reference = ref.Text
		}
	}
	return outputResult(CLIResult{Command: "hover", Results: out})
}
