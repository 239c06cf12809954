// Package sassdef resolves SCSS and Sass variable, mixin and function
// references to their declaration sites. It is a lightweight, lexical
// go-to-definition: there is no parser and no import graph, only line-local
// pattern rules applied across a workspace corpus.
//
// # Pipeline
//
// A request flows through four stages:
//
//  1. Classify: a raw query or a cursor position becomes a [Reference] with a
//     [Kind] (variable, mixin or function).
//  2. Rank: [Partition] splits the corpus into a near set (files sharing the
//     origin's top-level directory) and a far set (everything else).
//  3. Scan: file text comes from a [ContentSource], normally the TTL content
//     cache in internal/cache, and is scanned line by line. The near set is
//     read concurrently; the far set in fixed-size chunks.
//  4. Reduce: the [Policy] decides whether the first match or all matches
//     are returned.
//
// # Usage
//
//	c := cache.New(workspace.NewFSReader(root))
//	e, err := sassdef.New(root, c, sassdef.WithPolicy(sassdef.AllMatches))
//	if err != nil { ... }
//
//	files, err := workspace.Discover(ctx, root, workspace.Options{})
//	res, err := e.ResolveQuery(ctx, "$primary", sassdef.NewFile(origin), files)
//	for _, d := range res.Declarations {
//		fmt.Println(d.Description)
//	}
//
// A lookup that finds nothing returns a [*NoDefinitionError], which matches
// [ErrNoDefinition]. Unreadable files are skipped. Context cancellation
// yields [ErrCancelled] and never a partial result.
//
// # Catalog
//
// [Indexer] keeps a SQLite catalog of the workspace's stylesheets keyed by
// content hash. [Indexer.Sync] reports which files were added, changed or
// removed and forwards changes to a [Notifier] such as the content cache.
package sassdef
