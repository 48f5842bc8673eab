package types

import "errors"

// Validation errors
var (
	ErrEmptyQuery   = errors.New("query cannot be empty")
	ErrEmptyWorkKey = errors.New("work key cannot be empty")
)

// Hypothesis is a single LLM-proposed guess at the identity of the book the
// user is describing. At least one of Title, Author, or Keywords is expected
// to be populated by the extraction step.
type Hypothesis struct {
	Title      string   `json:"title,omitempty"`
	Author     string   `json:"author,omitempty"`
	Keywords   []string `json:"keywords,omitempty"`
	Confidence int      `json:"confidence"`
	Reasoning  string   `json:"reasoning"`
}

// WorkDocument is a single work record from the OpenLibrary /search.json
// endpoint. The upstream schema is not guaranteed to be stable; only the
// fields the matcher consumes are decoded.
type WorkDocument struct {
	Key              string   `json:"key"`
	Title            string   `json:"title,omitempty"`
	AuthorNames      []string `json:"author_name,omitempty"`
	FirstPublishYear *int     `json:"first_publish_year,omitempty"`
	CoverID          *int     `json:"cover_i,omitempty"`
	EditionCount     int      `json:"edition_count,omitempty"`

	// Editions is populated only when the search requests the nested
	// editions field (fields=key,editions).
	Editions *EditionSearchPage `json:"editions,omitempty"`
}

// EditionSearchPage is the nested editions result returned when a work search
// includes fields=editions.
type EditionSearchPage struct {
	NumFound int               `json:"numFound"`
	Docs     []EditionDocument `json:"docs"`
}

// EditionDocument is one edition record within a nested editions result.
type EditionDocument struct {
	Key   string `json:"key"`
	Title string `json:"title,omitempty"`
}

// HypothesisCandidates pairs a hypothesis with its deduplicated candidate
// works from OpenLibrary search. A group is only materialized when the
// candidate list is non-empty.
type HypothesisCandidates struct {
	Hypothesis     Hypothesis     `json:"hypothesis"`
	CandidateWorks []WorkDocument `json:"candidate_works"`
}

// RankRequest packages the original user query with the per-hypothesis
// candidate groups for the ranking step. The JSON shape is part of the
// ranking prompt contract.
type RankRequest struct {
	OriginalQuery string                 `json:"original_query"`
	Hypotheses    []HypothesisCandidates `json:"hypotheses_with_candidate_works"`
}

// Validate checks if the RankRequest has all required fields set.
func (r *RankRequest) Validate() error {
	if r.OriginalQuery == "" {
		return ErrEmptyQuery
	}
	return nil
}

// RankedMatch is the ranking step's decision for one selected work, ordered
// strongest to weakest match within the ranking response.
type RankedMatch struct {
	WorkKey        string   `json:"work_key"`
	PrimaryAuthors []string `json:"primary_authors"`
	Contributors   []string `json:"contributors,omitempty"`
	Explanation    string   `json:"explanation"`
}

// Validate checks if the RankedMatch has all required fields set.
func (m *RankedMatch) Validate() error {
	if m.WorkKey == "" {
		return ErrEmptyWorkKey
	}
	return nil
}

// BookMatch is a final presented result. It is immutable once assembled: the
// assembler constructs it from the ranked match and its source work document
// and never mutates it afterwards.
type BookMatch struct {
	Title            string   `json:"title"`
	PrimaryAuthors   []string `json:"primary_authors"`
	Contributors     []string `json:"contributors,omitempty"`
	FirstPublishYear *int     `json:"first_publish_year,omitempty"`
	WorkKey          string   `json:"work_key"`
	CoverURL         string   `json:"cover_url,omitempty"`
	OpenLibraryURL   string   `json:"open_library_url"`
	Explanation      string   `json:"explanation"`
}
