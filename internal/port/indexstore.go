package port

import (
	"errors"

	"semdex/internal/domain"
)

// ErrNoIndex is returned by LoadIndex when nothing has been saved yet.
var ErrNoIndex = errors.New("no index")

// IndexStore persists a semantic index and the chunks derived for
// retrieval.
type IndexStore interface {
	SaveIndex(idx *domain.SemanticIndex) error
	LoadIndex() (*domain.SemanticIndex, error)

	PutChunks(chunks []domain.Chunk) error
	ListChunks() ([]domain.Chunk, error)

	Clear() error
	Close() error
}
