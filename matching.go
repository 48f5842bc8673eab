package librimatch

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/librimatch/librimatch/pkg/types"
)

var (
	specialCharRe = regexp.MustCompile(`[^a-z0-9\s]`)
	multiSpaceRe  = regexp.MustCompile(`\s+`)
)

// normalizeForSearch lowercases the input, replaces everything outside
// [a-z0-9\s] with a space, collapses runs of whitespace and trims.
// Idempotent: normalizing a normalized string is a no-op.
func normalizeForSearch(input string) string {
	if strings.TrimSpace(input) == "" {
		return ""
	}
	normalized := specialCharRe.ReplaceAllString(strings.ToLower(input), " ")
	return strings.TrimSpace(multiSpaceRe.ReplaceAllString(normalized, " "))
}

// findCandidatesForHypothesis runs the multi-stage catalog search for one
// hypothesis. The search endpoint returns works sorted by relevance.
func (c *Client) findCandidatesForHypothesis(ctx context.Context, hypothesis types.Hypothesis) ([]types.WorkDocument, error) {
	limit := c.config.SearchLimit
	var candidates []types.WorkDocument

	title := normalizeForSearch(hypothesis.Title)
	author := normalizeForSearch(hypothesis.Author)

	var keywords []string
	for _, kw := range hypothesis.Keywords {
		if normalized := normalizeForSearch(kw); normalized != "" {
			keywords = append(keywords, normalized)
		}
	}
	joinedKeywords := strings.Join(keywords, " ")

	// Stage 1: precise search with all fields. Tends to return either
	// close matches or nothing.
	docs, err := c.catalog.Search(ctx, joinedKeywords, title, author, limit)
	if err != nil {
		return nil, err
	}
	candidates = append(candidates, docs...)

	// Stage 2: broader title/author search, only when stage 1 came back
	// empty. Weaker matches.
	if len(candidates) == 0 && (title != "" || author != "") {
		docs, err = c.catalog.Search(ctx, "", title, author, limit)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, docs...)
	}

	// Stage 3: keywords-only top-up when still short of the limit.
	// Weakest matches.
	if len(candidates) < limit && joinedKeywords != "" {
		docs, err = c.catalog.Search(ctx, joinedKeywords, "", "", limit-len(candidates))
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, docs...)
	}

	// De-duplicate by work key, first occurrence wins.
	seen := make(map[string]struct{}, len(candidates))
	deduped := candidates[:0]
	for _, doc := range candidates {
		if doc.Key == "" {
			continue
		}
		if _, ok := seen[doc.Key]; ok {
			continue
		}
		seen[doc.Key] = struct{}{}
		deduped = append(deduped, doc)
	}

	return deduped, nil
}

// collectCandidateGroups fans out candidate retrieval across hypotheses and
// pairs each hypothesis with its candidates, preserving hypothesis order.
// Hypotheses with no candidates are dropped.
func (c *Client) collectCandidateGroups(ctx context.Context, hypotheses []types.Hypothesis) ([]types.HypothesisCandidates, error) {
	// Limit concurrency
	semaphore := make(chan struct{}, c.config.MaxConcurrentLookups)
	var wg sync.WaitGroup
	var mu sync.Mutex

	results := make([][]types.WorkDocument, len(hypotheses))
	var lookupErrors []error

	for i, hypothesis := range hypotheses {
		wg.Add(1)
		go func(idx int, hypothesis types.Hypothesis) {
			defer wg.Done()

			// Acquire semaphore
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			candidates, err := c.findCandidatesForHypothesis(ctx, hypothesis)
			if err != nil {
				mu.Lock()
				lookupErrors = append(lookupErrors, err)
				mu.Unlock()
				return
			}

			results[idx] = candidates
		}(i, hypothesis)
	}

	wg.Wait()

	if len(lookupErrors) > 0 {
		return nil, fmt.Errorf("candidate retrieval failed: %w", lookupErrors[0])
	}

	groups := make([]types.HypothesisCandidates, 0, len(hypotheses))
	for i, hypothesis := range hypotheses {
		if len(results[i]) == 0 {
			continue
		}
		groups = append(groups, types.HypothesisCandidates{
			Hypothesis:     hypothesis,
			CandidateWorks: results[i],
		})
	}

	return groups, nil
}

// resolveEditionKeys fans out first edition lookups across the ranked
// matches. A work without editions resolves to no entry and the match still
// assembles without an edition key; lookup failures propagate.
func (c *Client) resolveEditionKeys(ctx context.Context, matches []types.RankedMatch) (map[string]string, error) {
	// Limit concurrency
	semaphore := make(chan struct{}, c.config.MaxConcurrentLookups)
	var wg sync.WaitGroup
	var mu sync.Mutex

	editionKeys := make(map[string]string, len(matches))
	var lookupErrors []error

	for _, match := range matches {
		wg.Add(1)
		go func(workKey string) {
			defer wg.Done()

			// Acquire semaphore
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			editionKey, err := c.catalog.FirstEditionKey(ctx, workKey)
			if err != nil {
				mu.Lock()
				lookupErrors = append(lookupErrors, err)
				mu.Unlock()
				return
			}
			if editionKey == "" {
				return
			}

			mu.Lock()
			editionKeys[workKey] = editionKey
			mu.Unlock()
		}(match.WorkKey)
	}

	wg.Wait()

	if len(lookupErrors) > 0 {
		return nil, fmt.Errorf("edition resolution failed: %w", lookupErrors[0])
	}

	return editionKeys, nil
}

// buildDocumentLookup indexes candidate documents by work key across all
// groups. First occurrence wins.
func buildDocumentLookup(groups []types.HypothesisCandidates) map[string]types.WorkDocument {
	lookup := make(map[string]types.WorkDocument)
	for _, group := range groups {
		for _, doc := range group.CandidateWorks {
			if doc.Key == "" {
				continue
			}
			if _, ok := lookup[doc.Key]; ok {
				continue
			}
			lookup[doc.Key] = doc
		}
	}
	return lookup
}

// coverURL builds the large cover image URL for a cover ID.
func coverURL(coverID *int) string {
	if coverID == nil {
		return ""
	}
	return fmt.Sprintf("https://covers.openlibrary.org/b/id/%d-L.jpg", *coverID)
}

// assembleMatches joins ranked matches with their catalog documents and
// resolved edition keys, preserving rank order. Ranked work keys unknown to
// the candidate pool are skipped.
func (c *Client) assembleMatches(ranked []types.RankedMatch, documents map[string]types.WorkDocument, editionKeys map[string]string) []types.BookMatch {
	matches := make([]types.BookMatch, 0, len(ranked))
	for _, rankedMatch := range ranked {
		workDoc, ok := documents[rankedMatch.WorkKey]
		if !ok {
			c.logger.Warn("ranked work key not in candidate pool", "work_key", rankedMatch.WorkKey)
			continue
		}

		openLibraryURL := "https://openlibrary.org" + rankedMatch.WorkKey
		if editionKey, ok := editionKeys[rankedMatch.WorkKey]; ok {
			openLibraryURL += "?edition=key:" + editionKey
		}

		title := workDoc.Title
		if title == "" {
			title = "Unknown"
		}

		matches = append(matches, types.BookMatch{
			Title:            title,
			PrimaryAuthors:   rankedMatch.PrimaryAuthors,
			Contributors:     rankedMatch.Contributors,
			FirstPublishYear: workDoc.FirstPublishYear,
			WorkKey:          rankedMatch.WorkKey,
			CoverURL:         coverURL(workDoc.CoverID),
			OpenLibraryURL:   openLibraryURL,
			Explanation:      rankedMatch.Explanation,
		})
	}

	if len(matches) > c.config.MaxMatches {
		matches = matches[:c.config.MaxMatches]
	}
	return matches
}

// FindMatches implements Matcher.
func (c *Client) FindMatches(ctx context.Context, query string, opts *RequestOptions) ([]types.BookMatch, error) {
	if strings.TrimSpace(query) == "" {
		return nil, types.ErrEmptyQuery
	}

	// Step 1: extract search hypotheses from the free-text query.
	hypotheses, err := c.language.ExtractHypotheses(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("extracted hypotheses", "count", len(hypotheses))
	if len(hypotheses) == 0 {
		return []types.BookMatch{}, nil
	}

	// Step 2: retrieve candidate works for each hypothesis in parallel.
	groups, err := c.collectCandidateGroups(ctx, hypotheses)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return []types.BookMatch{}, nil
	}

	// Step 3: ask the language model to select and rank the candidates
	// against the original query.
	rankRequest := types.RankRequest{
		OriginalQuery: query,
		Hypotheses:    groups,
	}
	ranked, err := c.language.RankCandidates(ctx, rankRequest, opts)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("ranked candidates", "count", len(ranked))

	// Step 4: index all candidate documents by work key.
	documents := buildDocumentLookup(groups)

	// Step 5: resolve first edition keys in parallel.
	editionKeys, err := c.resolveEditionKeys(ctx, ranked)
	if err != nil {
		return nil, err
	}

	// Step 6: join ranked matches with catalog data.
	return c.assembleMatches(ranked, documents, editionKeys), nil
}
