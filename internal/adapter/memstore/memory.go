package memstore

import (
	"sort"
	"sync"

	"semdex/internal/domain"
	"semdex/internal/port"
)

// MemoryStore is an in-memory IndexStore for tests and ephemeral runs.
type MemoryStore struct {
	mu     sync.RWMutex
	idx    *domain.SemanticIndex
	chunks map[string]domain.Chunk
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{chunks: make(map[string]domain.Chunk)}
}

func (s *MemoryStore) SaveIndex(idx *domain.SemanticIndex) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idx = cloneIndex(idx)
	return nil
}

func (s *MemoryStore) LoadIndex() (*domain.SemanticIndex, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.idx == nil {
		return nil, port.ErrNoIndex
	}
	return cloneIndex(s.idx), nil
}

func (s *MemoryStore) PutChunks(chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, chunk := range chunks {
		s.chunks[chunk.ID] = chunk
	}
	return nil
}

// ListChunks returns chunks sorted by ID, matching the bolt store's
// iteration order.
func (s *MemoryStore) ListChunks() ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chunks := make([]domain.Chunk, 0, len(s.chunks))
	for _, chunk := range s.chunks {
		chunks = append(chunks, chunk)
	}
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].ID < chunks[j].ID })
	if len(chunks) == 0 {
		return nil, nil
	}
	return chunks, nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idx = nil
	s.chunks = make(map[string]domain.Chunk)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// cloneIndex copies the index one level deep so callers and the store
// never alias the same maps.
func cloneIndex(idx *domain.SemanticIndex) *domain.SemanticIndex {
	out := domain.NewSemanticIndex(idx.ProjectName)
	for k, v := range idx.Files {
		out.Files[k] = v
	}
	for k, v := range idx.Entities {
		out.Entities[k] = v
	}
	out.Workflows = append(out.Workflows, idx.Workflows...)
	out.Metadata = idx.Metadata
	return out
}
