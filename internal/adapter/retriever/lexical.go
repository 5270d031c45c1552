package retriever

import (
	"sort"

	"semdex/internal/adapter/analyzer"
	"semdex/internal/domain"
	"semdex/internal/port"
)

// LexicalRetriever ranks stored chunks by term overlap with the query.
// It is the fallback when no embeddings were generated and shares its
// scoring shape with the query engine.
type LexicalRetriever struct {
	store     port.IndexStore
	tokenizer *analyzer.Tokenizer
}

func NewLexicalRetriever(store port.IndexStore) *LexicalRetriever {
	return &LexicalRetriever{store: store, tokenizer: analyzer.NewTokenizer()}
}

func (r *LexicalRetriever) Retrieve(query string, k int) ([]domain.ScoredChunk, error) {
	queryTokens := r.tokenizer.Tokenize(query)
	if len(queryTokens) == 0 {
		return nil, nil
	}
	querySet := make(map[string]struct{}, len(queryTokens))
	for _, token := range queryTokens {
		querySet[token] = struct{}{}
	}

	chunks, err := r.store.ListChunks()
	if err != nil {
		return nil, err
	}

	var results []domain.ScoredChunk
	for _, chunk := range chunks {
		score := overlapScore(querySet, chunk.Tokens)
		if score == 0 {
			continue
		}
		results = append(results, domain.ScoredChunk{Chunk: chunk, Score: score})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Chunk.ID < results[j].Chunk.ID
	})

	if k > 0 && len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// overlapScore is the fraction of query terms present in the chunk.
func overlapScore(querySet map[string]struct{}, tokens []string) float64 {
	if len(querySet) == 0 {
		return 0
	}
	seen := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		seen[token] = struct{}{}
	}
	matches := 0
	for term := range querySet {
		if _, ok := seen[term]; ok {
			matches++
		}
	}
	return float64(matches) / float64(len(querySet))
}
