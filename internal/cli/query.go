package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"semdex/config"
	"semdex/internal/adapter/search"
	"semdex/internal/adapter/store"
	"semdex/internal/port"
	"semdex/internal/usecase"
)

var (
	queryText string
	queryMax  int
	queryJSON bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Search indexed entities and files",
	Long: `Search the semantic index for entities and files relevant to the
query terms, ranked by term overlap, domain match and code quality.

Examples:
  semdex query -q "tax calculation"
  semdex query -q "journal entry" -n 20 --json`,
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "search query (required)")
	queryCmd.Flags().IntVarP(&queryMax, "max-results", "n", 0, "maximum results (default from config)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output as JSON")
	queryCmd.MarkFlagRequired("query")
}

func runQuery(cmd *cobra.Command, args []string) error {
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

	maxResults := cfg.Query.MaxResults
	if queryMax > 0 {
		maxResults = queryMax
	}

	results, err := usecase.NewQueryUseCase(st, search.NewEngine()).Query(queryText, maxResults)
	if err != nil {
		if errors.Is(err, port.ErrNoIndex) {
			return fmt.Errorf("no index found. Run 'semdex index' first")
		}
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		output, _ := json.MarshalIndent(results, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Printf("Found %d results for: %s\n\n", len(results), queryText)
	for i, r := range results {
		fmt.Printf("--- [%d] %s (%s) score: %.2f ---\n", i+1, r.EntityName, r.FilePath, r.RelevanceScore)
		line := "    Quality: " + r.ContextScore
		if len(r.DomainTags) > 0 {
			line += "  Domains: " + strings.Join(r.DomainTags, ", ")
		}
		fmt.Println(line)
		if r.ShortContext != "" {
			fmt.Printf("    %s\n", r.ShortContext)
		}
		for _, reason := range r.Reasoning {
			fmt.Printf("    - %s\n", reason)
		}
		fmt.Println()
	}
	return nil
}
