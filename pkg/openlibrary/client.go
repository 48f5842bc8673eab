package openlibrary

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/librimatch/librimatch/pkg/types"
)

const (
	// DefaultBaseURL is the public OpenLibrary endpoint.
	DefaultBaseURL = "https://openlibrary.org"

	// DefaultTimeout bounds a single search request.
	DefaultTimeout = 30 * time.Second

	searchFields = "key,title,author_name,first_publish_year,cover_i,edition_count"
)

// Client talks to the OpenLibrary search API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new OpenLibrary client. An empty baseURL uses the
// public endpoint; a zero timeout uses DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Search queries the work search endpoint. Each of query, title and author
// is optional and only sent when non-blank. When all three are blank the
// call is a no-op and returns no documents without touching the network.
func (c *Client) Search(ctx context.Context, query, title, author string, limit int) ([]types.WorkDocument, error) {
	query = strings.TrimSpace(query)
	title = strings.TrimSpace(title)
	author = strings.TrimSpace(author)
	if query == "" && title == "" && author == "" {
		return nil, nil
	}

	params := url.Values{}
	if query != "" {
		params.Set("q", query)
	}
	if title != "" {
		params.Set("title", title)
	}
	if author != "" {
		params.Set("author", author)
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	params.Set("fields", searchFields)

	resp, err := c.search(ctx, params)
	if err != nil {
		return nil, err
	}
	return resp.Docs, nil
}

// FirstEditionKey resolves the first edition key listed for a work.
// Returns an empty string when the work has no editions or is unknown.
func (c *Client) FirstEditionKey(ctx context.Context, workKey string) (string, error) {
	workKey = strings.TrimSpace(workKey)
	if workKey == "" {
		return "", nil
	}

	params := url.Values{}
	params.Set("q", "key:"+workKey)
	params.Set("fields", "key,editions")
	params.Set("limit", "1")

	resp, err := c.search(ctx, params)
	if err != nil {
		return "", err
	}

	if len(resp.Docs) == 0 {
		return "", nil
	}
	doc := resp.Docs[0]
	if doc.Editions == nil || len(doc.Editions.Docs) == 0 {
		return "", nil
	}
	return doc.Editions.Docs[0].Key, nil
}

func (c *Client) search(ctx context.Context, params url.Values) (*WorkSearchResponse, error) {
	searchURL := c.baseURL + "/search.json?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: search request failed: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: search returned status %d: %s", ErrUnavailable, resp.StatusCode, string(body))
	}

	var searchResp WorkSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("%w: failed to decode search response: %v", ErrUnavailable, err)
	}

	return &searchResp, nil
}
