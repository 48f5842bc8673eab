package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librimatch/librimatch"
	"github.com/librimatch/librimatch/pkg/nlp"
	"github.com/librimatch/librimatch/pkg/types"
)

// fakeMatcher serves a scripted pipeline result.
type fakeMatcher struct {
	matches []types.BookMatch
	err     error

	gotQuery string
	gotOpts  *librimatch.RequestOptions
}

func (f *fakeMatcher) FindMatches(ctx context.Context, query string, opts *librimatch.RequestOptions) ([]types.BookMatch, error) {
	f.gotQuery = query
	f.gotOpts = opts
	if f.err != nil {
		return nil, f.err
	}
	return f.matches, nil
}

func performMatch(matcher librimatch.Matcher, target string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/api/v1/match", NewMatchHandler(matcher).Match)

	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestMatchSuccess(t *testing.T) {
	year := 1937
	matcher := &fakeMatcher{
		matches: []types.BookMatch{
			{
				Title:            "The Hobbit",
				PrimaryAuthors:   []string{"J.R.R. Tolkien"},
				FirstPublishYear: &year,
				WorkKey:          "/works/OL262758W",
				CoverURL:         "https://covers.openlibrary.org/b/id/12345-L.jpg",
				OpenLibraryURL:   "https://openlibrary.org/works/OL262758W?edition=key:/books/OL123456M",
				Explanation:      "Exact title and author match.",
			},
		},
	}

	w := performMatch(matcher, "/api/v1/match?query=that+hobbit+book")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "that hobbit book", matcher.gotQuery)

	var response struct {
		Matches []map[string]any `json:"matches"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Matches, 1)
	assert.Equal(t, "The Hobbit", response.Matches[0]["title"])
	assert.Equal(t, "/works/OL262758W", response.Matches[0]["work_key"])
	assert.Equal(t, float64(1937), response.Matches[0]["first_publish_year"])
}

func TestMatchMissingQuery(t *testing.T) {
	w := performMatch(&fakeMatcher{}, "/api/v1/match")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performMatch(&fakeMatcher{}, "/api/v1/match?query=%20%20")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMatchInvalidModel(t *testing.T) {
	w := performMatch(&fakeMatcher{}, "/api/v1/match?query=book&model=gpt-5")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMatchInvalidTemperature(t *testing.T) {
	tests := []string{"abc", "-0.1", "1.5"}
	for _, temp := range tests {
		w := performMatch(&fakeMatcher{}, "/api/v1/match?query=book&temperature="+temp)
		assert.Equal(t, http.StatusBadRequest, w.Code, "temperature %q must be rejected", temp)
	}
}

func TestMatchForwardsOptions(t *testing.T) {
	matcher := &fakeMatcher{matches: []types.BookMatch{{Title: "Something", WorkKey: "/works/OL1W"}}}

	w := performMatch(matcher, "/api/v1/match?query=book&model=gpt-nano&temperature=0.7")
	require.Equal(t, http.StatusOK, w.Code)

	require.NotNil(t, matcher.gotOpts)
	require.NotNil(t, matcher.gotOpts.Model)
	assert.Equal(t, nlp.ModelGPTNano, *matcher.gotOpts.Model)
	require.NotNil(t, matcher.gotOpts.Temperature)
	assert.InDelta(t, 0.7, float64(*matcher.gotOpts.Temperature), 0.001)
}

func TestMatchNoResults(t *testing.T) {
	w := performMatch(&fakeMatcher{}, "/api/v1/match?query=nothing+matches+this")
	require.Equal(t, http.StatusNotFound, w.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "No book matches found for the given query", response["message"])
}

func TestMatchServiceUnavailable(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		message string
	}{
		{name: "llm outage", err: librimatch.ErrLLMUnavailable, message: "LLM service unavailable"},
		{name: "catalog outage", err: librimatch.ErrCatalogUnavailable, message: "OpenLibrary service unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performMatch(&fakeMatcher{err: tt.err}, "/api/v1/match?query=book")
			require.Equal(t, http.StatusServiceUnavailable, w.Code)

			var response map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, tt.message, response["message"])
		})
	}
}

func TestMatchUnexpectedError(t *testing.T) {
	w := performMatch(&fakeMatcher{err: assert.AnError}, "/api/v1/match?query=book")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
