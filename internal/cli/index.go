package cli

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"semdex/config"
	"semdex/internal/adapter/analyzer"
	"semdex/internal/adapter/chunker"
	"semdex/internal/adapter/embedding"
	"semdex/internal/adapter/fs"
	"semdex/internal/adapter/parser"
	"semdex/internal/adapter/scorer"
	"semdex/internal/adapter/store"
	"semdex/internal/adapter/tagger"
	"semdex/internal/adapter/workflow"
	"semdex/internal/port"
	"semdex/internal/usecase"
)

var (
	indexOutput     string
	indexName       string
	indexEmbeddings bool
)

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Build the semantic index for a project",
	Long: `Run the full pipeline over the specified directory: parse, tag,
score, detect workflows and store everything in .semdex/index.db
within the target directory.

Examples:
  semdex index .                  # Index current directory
  semdex index /path/to/project   # Index specific directory
  semdex index . -o index.json    # Also write the index as JSON
  semdex index . --embeddings     # Generate vectors for semantic ask`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().StringVarP(&indexOutput, "output", "o", "", "also write the index to a JSON file")
	indexCmd.Flags().StringVar(&indexName, "name", "", "project name (default: directory name)")
	indexCmd.Flags().BoolVar(&indexEmbeddings, "embeddings", false, "generate chunk embeddings for semantic retrieval")
}

func runIndex(cmd *cobra.Command, args []string) error {
	path := GetRootDir()
	if len(args) > 0 {
		var err error
		path, err = filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}
	}

	cfg := GetConfig()

	if err := config.EnsureDataDir(path); err != nil {
		return fmt.Errorf("failed to create .semdex directory: %w", err)
	}

	dbPath := config.IndexDBPath(path)
	st, err := store.NewBoltStore(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open index store: %w", err)
	}
	defer st.Close()

	migration, err := st.CheckMigration(cfg)
	if err != nil {
		return fmt.Errorf("failed to check migration: %w", err)
	}
	if migration.NeedsRebuild {
		fmt.Printf("Index rebuild required: %s\n", migration.Reason)
		if err := st.Clear(); err != nil {
			return fmt.Errorf("failed to clear index: %w", err)
		}
	} else if migration.NeedsMigration {
		if err := st.Migrate(cfg); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	var embedder port.Embedder
	var vectors port.VectorStore
	if indexEmbeddings || cfg.Embedding.Enabled {
		embedder, err = embedding.New(cfg.Embedding)
		if err != nil {
			return fmt.Errorf("failed to create embedder: %w", err)
		}
		vectors, err = store.NewBoltVectorStore(st.DB(), embedder.Dimension())
		if err != nil {
			return fmt.Errorf("failed to create vector store: %w", err)
		}
	}

	tokenizer := analyzer.NewTokenizer()
	analyzeUC := usecase.NewAnalyzeUseCase(
		fs.NewWalker(cfg.Analyze.Includes, cfg.Analyze.Excludes, cfg.Analyze.RespectGitignore),
		parser.NewPythonParser(cfg.MaxFileSizeBytes()),
		GetLogger(),
	)
	indexUC := usecase.NewIndexUseCase(
		analyzeUC,
		tagger.NewTagger(),
		scorer.NewContextScorer(),
		workflow.NewDetector(),
		chunker.NewChunker(tokenizer),
		st,
		embedder,
		vectors,
		GetLogger(),
	)

	fmt.Printf("Scanning %s...\n", path)

	var bar *progressbar.ProgressBar
	var barMu sync.Mutex
	var startTime time.Time
	var initialized bool

	progressCallback := func(processed, total int, currentFile string) {
		barMu.Lock()
		defer barMu.Unlock()

		if !initialized {
			startTime = time.Now()
			bar = progressbar.NewOptions(total,
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowBytes(false),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]Analyzing[reset]"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
			initialized = true
		}

		bar.Set(processed)

		if processed > 0 {
			elapsed := time.Since(startTime)
			rate := float64(processed) / elapsed.Seconds()
			remaining := total - processed
			if rate > 0 {
				eta := time.Duration(float64(remaining)/rate) * time.Second
				bar.Describe(fmt.Sprintf("[cyan]Analyzing[reset] ETA: %s", formatDuration(eta)))
			}
		}
	}

	name := indexName
	if name == "" {
		name = cfg.Project.Name
	}

	result, err := indexUC.Index(path, usecase.IndexOptions{
		ProjectName: name,
		Workers:     cfg.Analyze.Workers,
		Progress:    progressCallback,
	})
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	// Record schema version and config hash for the data just written.
	if err := st.Migrate(cfg); err != nil {
		return fmt.Errorf("failed to update schema info: %w", err)
	}

	if indexOutput != "" {
		if err := store.SaveIndexJSON(result.Index, indexOutput); err != nil {
			return fmt.Errorf("failed to write index JSON: %w", err)
		}
	}

	fmt.Printf("\nIndexing complete:\n")
	fmt.Printf("  Files indexed:      %d\n", result.FilesIndexed)
	fmt.Printf("  Entities indexed:   %d\n", result.EntitiesIndexed)
	fmt.Printf("  Workflows detected: %d\n", result.WorkflowsDetected)
	fmt.Printf("  Chunks created:     %d\n", result.ChunksCreated)
	if result.VectorsCreated > 0 {
		fmt.Printf("  Vectors created:    %d\n", result.VectorsCreated)
	}

	if len(result.Errors) > 0 {
		fmt.Printf("\nWarnings:\n")
		for _, e := range result.Errors {
			fmt.Printf("  - %s\n", e)
		}
	}

	if indexOutput != "" {
		fmt.Printf("\nIndex JSON written to: %s\n", indexOutput)
	}
	fmt.Printf("\nIndex stored at: %s\n", dbPath)
	return nil
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "<1s"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", h, m)
}
