package librimatch

import (
	"context"
	"log/slog"

	"github.com/librimatch/librimatch/pkg/nlp"
	"github.com/librimatch/librimatch/pkg/openlibrary"
	"github.com/librimatch/librimatch/pkg/types"
)

// Sentinel aliases for classifying pipeline failures with errors.Is.
var (
	// ErrLLMUnavailable indicates the language model service failed.
	ErrLLMUnavailable = nlp.ErrUnavailable

	// ErrCatalogUnavailable indicates the OpenLibrary service failed.
	ErrCatalogUnavailable = openlibrary.ErrUnavailable
)

// Matcher resolves free-text book descriptions into ranked OpenLibrary matches.
type Matcher interface {
	// FindMatches runs the full pipeline: hypothesis extraction, candidate
	// retrieval, ranking, edition resolution and assembly. Returns an
	// empty slice when nothing plausible was found.
	FindMatches(ctx context.Context, query string, opts *RequestOptions) ([]types.BookMatch, error)
}

// Config holds configuration for the matching client.
type Config struct {
	// MaxMatches caps the number of assembled matches returned.
	MaxMatches int

	// SearchLimit is the per-hypothesis candidate target.
	SearchLimit int

	// MaxConcurrentLookups bounds parallel catalog requests.
	MaxConcurrentLookups int
}

// DefaultConfig returns the default matching configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxMatches:           5,
		SearchLimit:          5,
		MaxConcurrentLookups: 5,
	}
}

// Client is the main implementation of the Matcher interface.
type Client struct {
	language LanguageService
	catalog  Catalog
	config   *Config
	logger   *slog.Logger
}

// NewClient creates a matching client. A nil config uses DefaultConfig and a
// nil logger discards nothing but uses the slog default.
func NewClient(language LanguageService, catalog Catalog, config *Config, logger *slog.Logger) *Client {
	// Normalize a private copy so the caller's struct stays untouched.
	cfg := DefaultConfig()
	if config != nil {
		*cfg = *config
	}
	if cfg.MaxMatches <= 0 {
		cfg.MaxMatches = 5
	}
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = 5
	}
	if cfg.MaxConcurrentLookups <= 0 {
		cfg.MaxConcurrentLookups = 5
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		language: language,
		catalog:  catalog,
		config:   cfg,
		logger:   logger,
	}
}

var _ Matcher = (*Client)(nil)
