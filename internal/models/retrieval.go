package models

// Intent is a sub-question derived from the user's query.
type Intent string

// KeywordSet holds the search terms generated for one intent.
type KeywordSet struct {
	Intent   Intent   `json:"intent"`
	Keywords []string `json:"keywords"`
}

// ScoredMatch is a metadata match with its accumulated similarity score.
type ScoredMatch struct {
	Score    float64        `json:"score"`
	Document DocumentRecord `json:"document"`
}

// AggregatedRetrieval is the retrieval outcome for a single intent.
type AggregatedRetrieval struct {
	Intent          Intent        `json:"intent"`
	Matches         []ScoredMatch `json:"matches"`
	SemanticContext string        `json:"semantic_context"`
}

// Documents returns every matched document across intents, in order.
func Documents(results []AggregatedRetrieval) []DocumentRecord {
	var docs []DocumentRecord
	for _, r := range results {
		for _, m := range r.Matches {
			docs = append(docs, m.Document)
		}
	}
	return docs
}
