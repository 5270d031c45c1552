package chunker

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"semdex/internal/adapter/analyzer"
	"semdex/internal/domain"
)

// Chunker renders a FileAnalysis into retrievable text snippets: one
// line for imports, one per top-level function or class. Snippets feed
// the ask pipeline, so each carries tokens from the shared tokenizer.
type Chunker struct {
	tokenizer *analyzer.Tokenizer
}

func NewChunker(tokenizer *analyzer.Tokenizer) *Chunker {
	return &Chunker{tokenizer: tokenizer}
}

// Chunk builds the snippet list for one analyzed file. A file with no
// entities yields a single fallback chunk so every file stays
// retrievable.
func (c *Chunker) Chunk(fa *domain.FileAnalysis) []domain.Chunk {
	var texts []string

	if imports := fa.Imports(); len(imports) > 0 {
		names := make([]string, len(imports))
		for i, imp := range imports {
			names[i] = imp.Name
		}
		texts = append(texts, "Imports: "+strings.Join(names, ", "))
	}

	callees := calleesBySource(fa.Relationships)

	for _, fn := range fa.Functions() {
		text := fmt.Sprintf("Function: %s at line %d", fn.Name, fn.Location.LineStart)
		if calls := callees[fn.Name]; len(calls) > 0 {
			text += ". Calls: " + strings.Join(calls, ", ")
		}
		if fn.Docstring != "" {
			text += "\n" + fn.Docstring
		}
		texts = append(texts, text)
	}

	for _, cls := range fa.Classes() {
		text := fmt.Sprintf("Class: %s at line %d", cls.Name, cls.Location.LineStart)
		if len(cls.Methods) > 0 {
			names := make([]string, len(cls.Methods))
			for i, m := range cls.Methods {
				names[i] = m.Name
			}
			text += ". Methods: " + strings.Join(names, ", ")
		}
		if cls.Docstring != "" {
			text += "\n" + cls.Docstring
		}
		texts = append(texts, text)
	}

	if len(texts) == 0 {
		texts = []string{"No code entities found in analysis"}
	}

	chunks := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = domain.Chunk{
			ID:       chunkID(fa.FilePath, i),
			FilePath: fa.FilePath,
			Text:     text,
			Tokens:   c.tokenizer.Tokenize(text),
		}
	}
	return chunks
}

// calleesBySource groups call targets by caller, deduplicated in
// first-seen order.
func calleesBySource(rels []domain.Relationship) map[string][]string {
	seen := map[string]map[string]bool{}
	out := map[string][]string{}
	for _, rel := range rels {
		if rel.Kind != domain.RelCalls {
			continue
		}
		set, ok := seen[rel.Source]
		if !ok {
			set = map[string]bool{}
			seen[rel.Source] = set
		}
		if set[rel.Target] {
			continue
		}
		set[rel.Target] = true
		out[rel.Source] = append(out[rel.Source], rel.Target)
	}
	return out
}

func chunkID(filePath string, ordinal int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%d", filePath, ordinal)))
	return hex.EncodeToString(sum[:8])
}
