package librimatch

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librimatch/librimatch/pkg/types"
)

type searchCall struct {
	Query  string
	Title  string
	Author string
	Limit  int
}

// fakeCatalog records search calls and serves scripted results.
type fakeCatalog struct {
	mu       sync.Mutex
	searches []searchCall
	searchFn func(call searchCall) ([]types.WorkDocument, error)

	editionKeys map[string]string
	editionErr  error
}

func (f *fakeCatalog) Search(ctx context.Context, query, title, author string, limit int) ([]types.WorkDocument, error) {
	call := searchCall{Query: query, Title: title, Author: author, Limit: limit}
	f.mu.Lock()
	f.searches = append(f.searches, call)
	f.mu.Unlock()

	if query == "" && title == "" && author == "" {
		return nil, nil
	}
	if f.searchFn == nil {
		return nil, nil
	}
	return f.searchFn(call)
}

func (f *fakeCatalog) FirstEditionKey(ctx context.Context, workKey string) (string, error) {
	if f.editionErr != nil {
		return "", f.editionErr
	}
	return f.editionKeys[workKey], nil
}

func (f *fakeCatalog) searchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.searches)
}

// fakeLanguage serves scripted hypotheses and rankings.
type fakeLanguage struct {
	hypotheses []types.Hypothesis
	hypErr     error

	ranked  []types.RankedMatch
	rankErr error

	rankCalled  bool
	rankRequest types.RankRequest
}

func (f *fakeLanguage) ExtractHypotheses(ctx context.Context, query string, opts *RequestOptions) ([]types.Hypothesis, error) {
	if f.hypErr != nil {
		return nil, f.hypErr
	}
	return f.hypotheses, nil
}

func (f *fakeLanguage) RankCandidates(ctx context.Context, request types.RankRequest, opts *RequestOptions) ([]types.RankedMatch, error) {
	f.rankCalled = true
	f.rankRequest = request
	if f.rankErr != nil {
		return nil, f.rankErr
	}
	return f.ranked, nil
}

func newTestClient(language LanguageService, catalog Catalog) *Client {
	return NewClient(language, catalog, nil, nil)
}

func doc(key, title string) types.WorkDocument {
	return types.WorkDocument{Key: key, Title: title}
}

func TestNormalizeForSearch(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "lowercases and strips punctuation", input: "The Hobbit: There & Back Again!", want: "the hobbit there back again"},
		{name: "collapses whitespace", input: "  the   hobbit \t book ", want: "the hobbit book"},
		{name: "drops non-ascii letters", input: "Café Müller", want: "caf m ller"},
		{name: "digits survive", input: "Fahrenheit 451", want: "fahrenheit 451"},
		{name: "blank", input: "   ", want: ""},
		{name: "only punctuation", input: "?!...", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeForSearch(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, normalizeForSearch(got), "normalization must be idempotent")
		})
	}
}

func TestFindCandidatesStage1Sufficient(t *testing.T) {
	catalog := &fakeCatalog{
		searchFn: func(call searchCall) ([]types.WorkDocument, error) {
			docs := make([]types.WorkDocument, call.Limit)
			for i := range docs {
				docs[i] = doc(fmt.Sprintf("/works/OL%dW", i), "Some Work")
			}
			return docs, nil
		},
	}
	client := newTestClient(nil, catalog)

	candidates, err := client.findCandidatesForHypothesis(context.Background(), types.Hypothesis{
		Title: "The Hobbit", Author: "Tolkien", Keywords: []string{"hobbit", "fantasy"},
	})
	require.NoError(t, err)
	assert.Len(t, candidates, 5)
	require.Equal(t, 1, catalog.searchCount(), "precise stage filled the quota, later stages must not run")

	call := catalog.searches[0]
	assert.Equal(t, "hobbit fantasy", call.Query)
	assert.Equal(t, "the hobbit", call.Title)
	assert.Equal(t, "tolkien", call.Author)
	assert.Equal(t, 5, call.Limit)
}

func TestFindCandidatesStage2RunsOnlyWhenStage1Empty(t *testing.T) {
	catalog := &fakeCatalog{
		searchFn: func(call searchCall) ([]types.WorkDocument, error) {
			// Only the title/author-only stage finds anything.
			if call.Query == "" {
				return []types.WorkDocument{doc("/works/OL1W", "The Hobbit")}, nil
			}
			return nil, nil
		},
	}
	client := newTestClient(nil, catalog)

	candidates, err := client.findCandidatesForHypothesis(context.Background(), types.Hypothesis{
		Title: "the hobbit", Author: "tolkien", Keywords: []string{"hobbit"},
	})
	require.NoError(t, err)
	assert.Len(t, candidates, 1)

	// Stage 1 (precise), stage 2 (title/author), stage 3 (keywords top-up).
	require.Equal(t, 3, catalog.searchCount())
	assert.Equal(t, searchCall{Query: "", Title: "the hobbit", Author: "tolkien", Limit: 5}, catalog.searches[1])
	assert.Equal(t, searchCall{Query: "hobbit", Title: "", Author: "", Limit: 4}, catalog.searches[2])
}

func TestFindCandidatesStage2SkippedWithoutTitleOrAuthor(t *testing.T) {
	catalog := &fakeCatalog{}
	client := newTestClient(nil, catalog)

	_, err := client.findCandidatesForHypothesis(context.Background(), types.Hypothesis{
		Keywords: []string{"dystopia", "fireman"},
	})
	require.NoError(t, err)

	// Stage 1 (keywords as q) and stage 3 (keywords only); no title/author stage.
	require.Equal(t, 2, catalog.searchCount())
	for _, call := range catalog.searches {
		assert.Empty(t, call.Title)
		assert.Empty(t, call.Author)
	}
}

func TestFindCandidatesStage3TopsUpToLimit(t *testing.T) {
	catalog := &fakeCatalog{
		searchFn: func(call searchCall) ([]types.WorkDocument, error) {
			if call.Title != "" {
				return []types.WorkDocument{doc("/works/OL1W", "A"), doc("/works/OL2W", "B")}, nil
			}
			return []types.WorkDocument{doc("/works/OL3W", "C")}, nil
		},
	}
	client := newTestClient(nil, catalog)

	candidates, err := client.findCandidatesForHypothesis(context.Background(), types.Hypothesis{
		Title: "something", Keywords: []string{"keyword"},
	})
	require.NoError(t, err)
	assert.Len(t, candidates, 3)

	require.Equal(t, 2, catalog.searchCount())
	assert.Equal(t, 3, catalog.searches[1].Limit, "top-up limit is the remaining quota")
}

func TestFindCandidatesDeduplicatesByKeyFirstSeen(t *testing.T) {
	catalog := &fakeCatalog{
		searchFn: func(call searchCall) ([]types.WorkDocument, error) {
			if call.Title != "" {
				return []types.WorkDocument{
					doc("/works/OL1W", "First Occurrence"),
					{Key: "", Title: "Keyless"},
				}, nil
			}
			return []types.WorkDocument{
				doc("/works/OL1W", "Duplicate"),
				doc("/works/OL2W", "Other"),
			}, nil
		},
	}
	client := newTestClient(nil, catalog)

	candidates, err := client.findCandidatesForHypothesis(context.Background(), types.Hypothesis{
		Title: "something", Keywords: []string{"keyword"},
	})
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "First Occurrence", candidates[0].Title, "first occurrence wins")
	assert.Equal(t, "/works/OL2W", candidates[1].Key)
}

func TestCollectCandidateGroupsPreservesOrderAndDropsEmpty(t *testing.T) {
	catalog := &fakeCatalog{
		searchFn: func(call searchCall) ([]types.WorkDocument, error) {
			switch call.Title {
			case "first":
				return []types.WorkDocument{doc("/works/OL1W", "First")}, nil
			case "third":
				return []types.WorkDocument{doc("/works/OL3W", "Third")}, nil
			default:
				return nil, nil
			}
		},
	}
	client := newTestClient(nil, catalog)

	groups, err := client.collectCandidateGroups(context.Background(), []types.Hypothesis{
		{Title: "first"},
		{Title: "second"},
		{Title: "third"},
	})
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "first", groups[0].Hypothesis.Title)
	assert.Equal(t, "third", groups[1].Hypothesis.Title)
}

func TestAssembleMatches(t *testing.T) {
	year := 1937
	coverID := 12345
	client := newTestClient(nil, nil)

	documents := map[string]types.WorkDocument{
		"/works/OL262758W": {Key: "/works/OL262758W", Title: "The Hobbit", FirstPublishYear: &year, CoverID: &coverID},
		"/works/OL2W":      {Key: "/works/OL2W"},
	}
	editionKeys := map[string]string{
		"/works/OL262758W": "/books/OL123456M",
	}
	ranked := []types.RankedMatch{
		{WorkKey: "/works/OL262758W", PrimaryAuthors: []string{"J.R.R. Tolkien"}, Contributors: []string{"Charles Dixon"}, Explanation: "Exact title and author match."},
		{WorkKey: "/works/OLUnknownW", Explanation: "hallucinated"},
		{WorkKey: "/works/OL2W", PrimaryAuthors: []string{"Somebody"}, Explanation: "weak match"},
	}

	matches := client.assembleMatches(ranked, documents, editionKeys)
	require.Len(t, matches, 2, "ranked keys outside the candidate pool are skipped")

	first := matches[0]
	assert.Equal(t, "The Hobbit", first.Title)
	assert.Equal(t, []string{"J.R.R. Tolkien"}, first.PrimaryAuthors)
	assert.Equal(t, []string{"Charles Dixon"}, first.Contributors)
	assert.Equal(t, &year, first.FirstPublishYear)
	assert.Equal(t, "https://covers.openlibrary.org/b/id/12345-L.jpg", first.CoverURL)
	assert.Equal(t, "https://openlibrary.org/works/OL262758W?edition=key:/books/OL123456M", first.OpenLibraryURL)
	assert.Equal(t, "Exact title and author match.", first.Explanation)

	second := matches[1]
	assert.Equal(t, "Unknown", second.Title, "missing catalog title defaults")
	assert.Empty(t, second.CoverURL)
	assert.Equal(t, "https://openlibrary.org/works/OL2W", second.OpenLibraryURL, "no edition suffix without a resolved edition")
}

func TestAssembleMatchesTruncates(t *testing.T) {
	client := newTestClient(nil, nil)

	documents := make(map[string]types.WorkDocument)
	var ranked []types.RankedMatch
	for i := 0; i < 8; i++ {
		key := fmt.Sprintf("/works/OL%dW", i)
		documents[key] = doc(key, "Work")
		ranked = append(ranked, types.RankedMatch{WorkKey: key})
	}

	matches := client.assembleMatches(ranked, documents, nil)
	require.Len(t, matches, 5)
	assert.Equal(t, "/works/OL0W", matches[0].WorkKey, "rank order preserved under truncation")
}
