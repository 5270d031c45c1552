package usecase

import (
	"fmt"
	"log/slog"
	"strings"

	"semdex/internal/domain"
	"semdex/internal/logging"
	"semdex/internal/port"
)

const askSystemPrompt = "You are a code assistant answering questions about an analyzed codebase. " +
	"Use only the provided context. Cite file paths when referring to code."

// noAnswerText is returned when retrieval finds nothing; the language
// model is not called in that case.
const noAnswerText = "No relevant code found for the query."

// AskUseCase answers natural-language questions about the indexed
// codebase by retrieving relevant chunks and prompting a language
// model with them.
type AskUseCase struct {
	store        port.IndexStore
	retriever    port.Retriever
	llm          port.LLM
	contextChars int
	logger       *slog.Logger
}

// NewAskUseCase creates a new ask use case. contextChars caps the
// assembled context block; zero or negative means no cap.
func NewAskUseCase(store port.IndexStore, retriever port.Retriever, llm port.LLM, contextChars int, logger *slog.Logger) *AskUseCase {
	return &AskUseCase{
		store:        store,
		retriever:    retriever,
		llm:          llm,
		contextChars: contextChars,
		logger:       logging.Or(logger),
	}
}

// Ask retrieves the top k chunks for the question and generates an
// answer. The index must exist; the wrapped error keeps
// port.ErrNoIndex visible to errors.Is.
func (u *AskUseCase) Ask(question string, k int) (*domain.Answer, error) {
	if _, err := u.store.LoadIndex(); err != nil {
		return nil, fmt.Errorf("failed to load index: %w", err)
	}

	scored, err := u.retriever.Retrieve(question, k)
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}
	if len(scored) == 0 {
		return &domain.Answer{
			Query:  question,
			Answer: noAnswerText,
			Model:  u.llm.ModelName(),
			Chunks: []domain.Chunk{},
		}, nil
	}

	contextBlock, used := buildContext(scored, u.contextChars)
	u.logger.Debug("assembled context", "chunks", len(used), "chars", len(contextBlock))

	prompt := fmt.Sprintf("Context:\n\n%s\n\nQuestion: %s", contextBlock, question)
	answer, err := u.llm.GenerateWithSystem(askSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("LLM request failed: %w", err)
	}

	return &domain.Answer{
		Query:  question,
		Answer: answer,
		Model:  u.llm.ModelName(),
		Chunks: used,
	}, nil
}

// buildContext assembles the prompt context from ranked chunks,
// greedily taking the highest-scored ones that still fit the character
// budget. Each chunk is cited with its file path. When not even the
// top chunk fits, it is truncated so the model always sees something.
func buildContext(scored []domain.ScoredChunk, budget int) (string, []domain.Chunk) {
	var b strings.Builder
	var used []domain.Chunk

	for _, sc := range scored {
		block := "[" + sc.Chunk.FilePath + "]\n" + sc.Chunk.Text + "\n\n"
		if budget > 0 && b.Len()+len(block) > budget {
			continue
		}
		b.WriteString(block)
		used = append(used, sc.Chunk)
	}

	if len(used) == 0 {
		first := scored[0].Chunk
		text := "[" + first.FilePath + "]\n" + first.Text
		if budget > 0 && len(text) > budget {
			text = text[:budget]
		}
		return text, []domain.Chunk{first}
	}

	return strings.TrimRight(b.String(), "\n"), used
}
