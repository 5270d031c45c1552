package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"semdex/config"
	"semdex/internal/adapter/embedding"
	"semdex/internal/adapter/llm"
	"semdex/internal/adapter/retriever"
	"semdex/internal/adapter/store"
	"semdex/internal/domain"
	"semdex/internal/port"
	"semdex/internal/usecase"
)

var (
	askQuestion string
	askTopK     int
)

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Ask a question about the indexed codebase",
	Long: `Retrieve the code chunks most relevant to the question and have a
language model answer from them. Uses vector search when the index was
built with embeddings, lexical matching otherwise. With the default
dummy provider the assembled prompt is shown instead of an answer.

Examples:
  semdex ask -q "how are journal entries posted?"
  semdex ask -q "where is tax calculated?" -k 10`,
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&askQuestion, "question", "q", "", "question to answer (required)")
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "chunks to retrieve (default from config)")
	askCmd.MarkFlagRequired("question")
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	dbPath := config.IndexDBPath(GetRootDir())
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return fmt.Errorf("no index found. Run 'semdex index' first")
	}

	st, err := store.NewBoltStore(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	defer st.Close()

	llmClient, err := llm.New(cfg.Ask)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}

	topK := cfg.Ask.TopK
	if askTopK > 0 {
		topK = askTopK
	}

	uc := usecase.NewAskUseCase(st, buildRetriever(st, cfg), llmClient, cfg.Ask.ContextChars, GetLogger())
	answer, err := uc.Ask(askQuestion, topK)
	if err != nil {
		if errors.Is(err, port.ErrNoIndex) {
			return fmt.Errorf("no index found. Run 'semdex index' first")
		}
		return fmt.Errorf("ask failed: %w", err)
	}

	fmt.Printf("Q: %s\n\n", answer.Query)
	fmt.Println(answer.Answer)

	if files := citedFiles(answer.Chunks); len(files) > 0 {
		fmt.Printf("\nSources (model: %s):\n", answer.Model)
		for _, f := range files {
			fmt.Printf("  - %s\n", f)
		}
	}
	return nil
}

// buildRetriever picks vector search when the index holds embeddings
// and the configured provider is available, lexical matching otherwise.
func buildRetriever(st *store.BoltStore, cfg *config.Config) port.Retriever {
	embedder, err := embedding.New(cfg.Embedding)
	if err != nil {
		GetLogger().Warn("embedding provider unavailable, using lexical retrieval", "error", err)
		return retriever.NewLexicalRetriever(st)
	}

	vectors, err := store.NewBoltVectorStore(st.DB(), embedder.Dimension())
	if err != nil {
		return retriever.NewLexicalRetriever(st)
	}
	if count, _ := vectors.Count(); count == 0 {
		return retriever.NewLexicalRetriever(st)
	}
	return retriever.NewVectorRetriever(vectors, embedder, st)
}

// citedFiles lists the distinct files behind the answer, in the order
// the chunks were used.
func citedFiles(chunks []domain.Chunk) []string {
	seen := map[string]bool{}
	var files []string
	for _, c := range chunks {
		if seen[c.FilePath] {
			continue
		}
		seen[c.FilePath] = true
		files = append(files, c.FilePath)
	}
	return files
}
