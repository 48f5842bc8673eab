// Package prompts builds the chat messages and response models for the
// language model operations of the matching pipeline.
package prompts

import (
	"encoding/json"
	"fmt"

	"github.com/librimatch/librimatch/pkg/nlp"
	"github.com/librimatch/librimatch/pkg/types"
)

const extractHypothesesSystem = "You are a book search expert. Extract 0-5 book hypotheses from the user's messy query. " +
	"Normalize all title and author fields for API search: remove subtitle separators (colons, dashes), strip punctuation and diacritics, use standard spellings, use lowercase only, avoid special characters, and put spaces between an author's initials. " +
	"Use the following hierarchy of match criteria to justify your hypotheses (in order of strongest to weakest match criteria): " +
	"[1. Exact/normalized title + primary author match (strongest match), 2. Exact/normalized title + contributor-only author (lower rank), 3. Near-match title + author match (candidate), 4. Author-only-match (fallback criteria), 5. Other (vaguely matching genre or unlikely keywords)] " +
	"For each hypothesis, provide at least one of: title, author, or keywords (1-5 relevant search terms). " +
	"Additionally provide: confidence (1-5 integer, based on which criteria number was matched), and reasoning (1-2 sentences explaining why this book matches). " +
	"If the best hypothesis for the match relies on the author fallback criteria (exact or near author-only-match), default to up to 5 distinct hypotheses for top works by that author. " +
	"If the best hypothesis for the match relies only on the weakest criteria (other vague connections), default to up to 5 distinct hypotheses with keywords only (no title or author fields). " +
	"If there is more than one author, mention which author(s) is primary and which author(s) is not in the reasoning. " +
	"List the hypotheses in order of ascending confidence integer. " +
	"Limit your hypotheses to canonical works by their authors. " +
	"Do not provide duplicate hypotheses for the same book. " +
	"Example response format: {\"hypotheses\": [{\"title\": \"The Hobbit\", \"author\": \"J R R Tolkien\", \"keywords\": [\"hobbit\", \"fantasy\"], \"confidence\": 1, \"reasoning\": \"Exact title and author match from user query.\"}]}"

const rankCandidatesSystem = "You are a book matching expert. " +
	"Given a user's original query and a list of LLM-generated hypotheses grouped with candidate works from OpenLibrary's API, select the single best matching work_key for each hypothesis. " +
	"Then, rank the selected works in descending order of strongest match to the original user query. " +
	"For each selected work, identify primary authors (typically the main writers) and contributors (illustrators, editors, adaptors, etc.) from the author list. " +
	"Provide a 1-2 sentence explanation citing: specific matching criteria (exact title, author match, etc.), author roles, and reasoning for the ranking. " +
	"De-duplicate by work_key - if the same work appears multiple times, include it only once. " +
	"Example response format: {\"matches\": [{\"work_key\": \"/works/OL45883W\", \"primary_authors\": [\"J.R.R. Tolkien\"], \"contributors\": [\"Charles Dixon\"], \"explanation\": \"Exact title and author match for 'The Hobbit'; Tolkien is primary author, Dixon is adaptor. Ranked first due to perfect match.\"}]}"

// ExtractHypothesesMessages builds the chat messages for extracting book
// hypotheses from a free-text query.
func ExtractHypothesesMessages(query string) []types.Message {
	return []types.Message{
		nlp.NewSystemMessage(extractHypothesesSystem),
		nlp.NewUserMessage(query),
	}
}

// RankCandidatesMessages builds the chat messages for ranking candidate
// works. The request is serialized to JSON as the user message.
func RankCandidatesMessages(request types.RankRequest) ([]types.Message, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}

	requestJSON, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal rank request: %w", err)
	}

	return []types.Message{
		nlp.NewSystemMessage(rankCandidatesSystem),
		nlp.NewUserMessage(string(requestJSON)),
	}, nil
}
