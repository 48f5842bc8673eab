package librimatch

import (
	"context"

	"github.com/librimatch/librimatch/pkg/nlp"
	"github.com/librimatch/librimatch/pkg/types"
)

// LanguageService performs the language model operations of the matching
// pipeline. Implementations live on top of nlp.Client backends.
type LanguageService interface {
	// ExtractHypotheses turns a free-text book description into zero or
	// more search hypotheses.
	ExtractHypotheses(ctx context.Context, query string, opts *RequestOptions) ([]types.Hypothesis, error)

	// RankCandidates selects and orders the best matching works for the
	// hypotheses and their candidate works.
	RankCandidates(ctx context.Context, request types.RankRequest, opts *RequestOptions) ([]types.RankedMatch, error)
}

// Catalog looks up works and editions in a bibliographic catalog.
// *openlibrary.Client satisfies this interface.
type Catalog interface {
	// Search queries the catalog. Blank fields are omitted; when all of
	// query, title and author are blank it returns no documents.
	Search(ctx context.Context, query, title, author string, limit int) ([]types.WorkDocument, error)

	// FirstEditionKey resolves the first edition key for a work, or an
	// empty string when none is listed.
	FirstEditionKey(ctx context.Context, workKey string) (string, error)
}

// RequestOptions carries per-request language model overrides.
// Nil fields fall back to configured defaults.
type RequestOptions struct {
	// Model selects the backend for this request.
	Model *nlp.Model

	// Temperature overrides the sampling temperature. Backends with a
	// pinned temperature ignore it.
	Temperature *float32
}
