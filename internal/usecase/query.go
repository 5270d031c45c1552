package usecase

import (
	"fmt"

	"semdex/internal/adapter/search"
	"semdex/internal/domain"
	"semdex/internal/port"
)

// QueryUseCase answers ranked entity searches over a stored index.
type QueryUseCase struct {
	store  port.IndexStore
	engine *search.Engine
}

// NewQueryUseCase creates a new query use case.
func NewQueryUseCase(store port.IndexStore, engine *search.Engine) *QueryUseCase {
	return &QueryUseCase{store: store, engine: engine}
}

// Query loads the stored index and returns ranked matches. The wrapped
// error keeps port.ErrNoIndex visible to errors.Is.
func (u *QueryUseCase) Query(query string, maxResults int) ([]domain.QueryResult, error) {
	idx, err := u.store.LoadIndex()
	if err != nil {
		return nil, fmt.Errorf("failed to load index: %w", err)
	}
	return u.engine.QueryIndex(idx, query, maxResults), nil
}
