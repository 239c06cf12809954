package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jward/sassdef"
)

var rankCmd = &cobra.Command{
	Use:   "rank <file>",
	Short: "Show the near and far search order for a file",
	Long:  "Prints the files searched for references from file: the near set (same top-level directory) first, then the far set. Paths are relative to the project root.",
	Args:  cobra.ExactArgs(1),
	RunE:  runRank,
}

func runRank(cmd *cobra.Command, args []string) error {
	origin, env, err := setup(args[0])
	if err != nil {
		return outputError("rank", err)
	}
	engine, err := env.newEngine(env.newCache())
	if err != nil {
		return outputError("rank", err)
	}
	corpus, err := env.loadCorpus(commandContext(cmd))
	if err != nil {
		return outputError("rank", err)
	}

	set := engine.Partition(origin, corpus)
	return outputResult(CLIResult{
		Command: "rank",
		Results: CLIRankedSet{
			Origin: relPath(engine.Root(), origin.Path),
			TopDir: sassdef.TopDir(engine.Root(), origin.Path),
			Near:   relPaths(engine.Root(), set.Near),
			Far:    relPaths(engine.Root(), set.Far),
		},
	})
}

func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

func relPaths(root string, files []sassdef.FileHandle) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = relPath(root, f.Path)
	}
	return out
}
