// Package types defines the core data types for the librimatch pipeline.
//
// This package contains the fundamental types used throughout librimatch:
//   - Hypothesis: One LLM-proposed guess at the book a user is describing
//   - WorkDocument: One raw work record from the OpenLibrary search index
//   - HypothesisCandidates: A hypothesis paired with its candidate works
//   - RankedMatch: The ranking step's decision for one selected work
//   - BookMatch: A final presented result
//
// It also carries the LLM interchange types (Message, Response, Role) shared
// by the language model clients in pkg/nlp.
//
// # JSON Serialization
//
// All types are designed to be JSON-serializable with appropriate struct tags.
// The tags on WorkDocument follow the OpenLibrary /search.json field names;
// the tags on Hypothesis and RankedMatch follow the schema the LLM output is
// constrained to.
package types
