package domain

// QueryResult is one ranked hit against the semantic index.
// ContextScore carries the quality tier string, "UNKNOWN" when the item
// was never scored. ShortContext is a one-line domain summary, empty
// when the item has no primary tag.
type QueryResult struct {
	EntityName     string   `json:"entity_name"`
	FilePath       string   `json:"file_path"`
	RelevanceScore float64  `json:"relevance_score"`
	DomainTags     []string `json:"domain_tags"`
	ContextScore   string   `json:"context_score"`
	ShortContext   string   `json:"short_context"`
	Reasoning      []string `json:"reasoning"`
}
