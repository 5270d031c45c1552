package port

import "semdex/internal/domain"

// Retriever finds the chunks most relevant to a query.
type Retriever interface {
	Retrieve(query string, k int) ([]domain.ScoredChunk, error)
}
