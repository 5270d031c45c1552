package retriever

import (
	"fmt"

	"semdex/internal/domain"
	"semdex/internal/port"
)

// VectorRetriever embeds the query, searches the vector store and
// resolves the hits back to their chunks.
type VectorRetriever struct {
	vectorStore port.VectorStore
	embedder    port.Embedder
	store       port.IndexStore
}

func NewVectorRetriever(vectorStore port.VectorStore, embedder port.Embedder, store port.IndexStore) *VectorRetriever {
	return &VectorRetriever{
		vectorStore: vectorStore,
		embedder:    embedder,
		store:       store,
	}
}

func (r *VectorRetriever) Retrieve(query string, k int) ([]domain.ScoredChunk, error) {
	if r.vectorStore == nil || r.embedder == nil {
		return nil, fmt.Errorf("semantic search not available: embeddings not configured")
	}

	embeddings, err := r.embedder.Embed([]string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("embedding returned empty result")
	}

	hits, err := r.vectorStore.Search(embeddings[0], k)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	if len(hits) == 0 {
		return nil, nil
	}

	chunks, err := r.store.ListChunks()
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.Chunk, len(chunks))
	for _, chunk := range chunks {
		byID[chunk.ID] = chunk
	}

	results := make([]domain.ScoredChunk, 0, len(hits))
	for _, hit := range hits {
		chunk, ok := byID[hit.ID]
		if !ok {
			continue
		}
		results = append(results, domain.ScoredChunk{Chunk: chunk, Score: hit.Score})
	}
	return results, nil
}
