package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"semdex/config"
	"semdex/internal/adapter/store"
	"semdex/internal/port"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index statistics",
	Long:  `Print the stored index metadata along with store-level counts.`,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
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

	idx, err := st.LoadIndex()
	if err != nil {
		if errors.Is(err, port.ErrNoIndex) {
			return fmt.Errorf("no index found. Run 'semdex index' first")
		}
		return fmt.Errorf("failed to load index: %w", err)
	}

	chunks, err := st.ListChunks()
	if err != nil {
		return fmt.Errorf("failed to list chunks: %w", err)
	}

	// Dimension only matters for search, not for counting.
	vectorCount := 0
	if vectors, err := store.NewBoltVectorStore(st.DB(), cfg.Embedding.Dimension); err == nil {
		vectorCount, _ = vectors.Count()
	}

	fmt.Printf("Project: %s\n\n", idx.ProjectName)
	fmt.Printf("  Files analyzed:        %d\n", idx.Metadata.TotalFiles)
	fmt.Printf("  Entities indexed:      %d\n", idx.Metadata.TotalEntities)
	fmt.Printf("  Workflows detected:    %d\n", idx.Metadata.TotalWorkflows)
	fmt.Printf("  Accounting files:      %d\n", idx.Metadata.AccountingFiles)
	fmt.Printf("  High quality entities: %d\n", idx.Metadata.HighQualityEntities)
	fmt.Printf("\nStore:\n")
	fmt.Printf("  Chunks:  %d\n", len(chunks))
	fmt.Printf("  Vectors: %d\n", vectorCount)
	fmt.Printf("  Path:    %s\n", dbPath)
	return nil
}
