package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jward/sassdef"
)

var (
	flagQuery  string
	flagPeek   bool
	flagNoPick bool
)

var definitionCmd = &cobra.Command{
	Use:   "definition <file> [<line> <col>]",
	Short: "Find where a variable, mixin or function is declared",
	Long: `Resolves the reference at a 0-based line and byte column of file, or the
raw reference given with --query, and prints its declaration sites.

Files in the same top-level directory as file are searched first. With
several declarations and an interactive terminal, a picker asks which one
to print unless --peek or --no-pick is set.`,
	Args: func(cmd *cobra.Command, args []string) error {
		switch {
		case len(args) == 1 && flagQuery != "":
			return nil
		case len(args) == 3 && flagQuery == "":
			return nil
		case len(args) == 1:
			return errors.New("line and column are required without --query")
		default:
			return fmt.Errorf("expected <file> with --query, or <file> <line> <col>; got %d args", len(args))
		}
	},
	RunE: runDefinition,
}

func init() {
	definitionCmd.Flags().StringVar(&flagQuery, "query", "", `raw reference such as "$primary", "@include center" or "rem(4px)"`)
	definitionCmd.Flags().BoolVar(&flagAll, "all", false, "return every declaration (overrides show_all_references)")
	definitionCmd.Flags().BoolVar(&flagFirst, "first", false, "return only the first declaration (overrides show_all_references)")
	definitionCmd.Flags().BoolVar(&flagPeek, "peek", false, "print every declaration instead of asking for one")
	definitionCmd.Flags().BoolVar(&flagNoPick, "no-pick", false, "never show the interactive picker")
	definitionCmd.MarkFlagsMutuallyExclusive("all", "first")
}

func runDefinition(cmd *cobra.Command, args []string) error {
	origin, env, err := setup(args[0])
	if err != nil {
		return outputError("definition", err)
	}

	ctx := commandContext(cmd)
	engine, err := env.newEngine(env.newCache())
	if err != nil {
		return outputError("definition", err)
	}
	corpus, err := env.loadCorpus(ctx)
	if err != nil {
		return outputError("definition", err)
	}

	var res *sassdef.Result
	if flagQuery != "" {
		res, err = engine.ResolveQuery(ctx, flagQuery, origin, corpus)
	} else {
		line, lerr := parseIntArg("line", args[1])
		if lerr != nil {
			return outputError("definition", lerr)
		}
		col, cerr := parseIntArg("column", args[2])
		if cerr != nil {
			return outputError("definition", cerr)
		}
		res, err = engine.ResolveAt(ctx, origin, line, col, corpus)
	}

	var nd *sassdef.NoDefinitionError
	if errors.As(err, &nd) {
		noteNotFound(nd.Reference.Text)
		return outputResult(CLIResult{Command: "definition", Results: []CLIDeclaration{}})
	}
	if err != nil {
		return outputError("definition", err)
	}

	peek := flagPeek || env.cfg.Peek
	decls, err := sassdef.Select(ctx, presenterFor(flagFormat, flagNoPick), res, peek)
	if err != nil {
		return outputError("definition", err)
	}

	total := len(res.Declarations)
	return outputResult(CLIResult{
		Command:    "definition",
		Results:    toCLIDeclarations(res.Reference, decls),
		TotalCount: &total,
	})
}
