package openlibrary

import "github.com/librimatch/librimatch/pkg/types"

// WorkSearchResponse is the envelope returned by the work search endpoint.
type WorkSearchResponse struct {
	Start    int                  `json:"start"`
	NumFound int                  `json:"numFound"`
	Docs     []types.WorkDocument `json:"docs"`
}
