// Package librimatch resolves free-text book descriptions into ranked
// OpenLibrary matches.
//
// The pipeline runs in six steps: a language model extracts search
// hypotheses from the query, candidate works are retrieved from OpenLibrary
// for each hypothesis in parallel, the language model selects and ranks the
// best candidates against the original query, candidate documents are
// indexed by work key, first edition keys are resolved in parallel, and the
// ranked matches are joined with their catalog data into presentable
// results.
//
// Basic usage:
//
//	matcher := librimatch.NewClient(language, catalog, nil, logger)
//	matches, err := matcher.FindMatches(ctx, "that hobbit book by tolkien", nil)
package librimatch
