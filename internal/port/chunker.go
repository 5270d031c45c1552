package port

import "semdex/internal/domain"

// Chunker turns a file analysis into retrievable text snippets.
type Chunker interface {
	Chunk(fa *domain.FileAnalysis) []domain.Chunk
}
