package prompts

import "github.com/librimatch/librimatch/pkg/types"

// HypothesisResponse is the structured output shape for hypothesis extraction.
type HypothesisResponse struct {
	Hypotheses []types.Hypothesis `json:"hypotheses"`
}

// RankedMatchResponse is the structured output shape for candidate ranking.
type RankedMatchResponse struct {
	Matches []types.RankedMatch `json:"matches"`
}
