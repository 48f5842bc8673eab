package dto

import "github.com/librimatch/librimatch/pkg/types"

// BookMatch is the wire representation of one assembled match.
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

// MatchResponse is the envelope for a successful match request.
type MatchResponse struct {
	Matches []BookMatch `json:"matches"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// FromBookMatch converts a pipeline result into its wire representation.
func FromBookMatch(m types.BookMatch) BookMatch {
	return BookMatch{
		Title:            m.Title,
		PrimaryAuthors:   m.PrimaryAuthors,
		Contributors:     m.Contributors,
		FirstPublishYear: m.FirstPublishYear,
		WorkKey:          m.WorkKey,
		CoverURL:         m.CoverURL,
		OpenLibraryURL:   m.OpenLibraryURL,
		Explanation:      m.Explanation,
	}
}

// FromBookMatches converts a slice of pipeline results.
func FromBookMatches(matches []types.BookMatch) []BookMatch {
	out := make([]BookMatch, len(matches))
	for i, m := range matches {
		out[i] = FromBookMatch(m)
	}
	return out
}
