package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"semdex/config"
	"semdex/internal/adapter/store"
	"semdex/internal/port"
)

var workflowsJSON bool

var workflowsCmd = &cobra.Command{
	Use:   "workflows",
	Short: "Show detected business workflows",
	Long: `List the multi-step business processes detected in the indexed
codebase, reconstructed from call paths between domain-tagged entities.

Examples:
  semdex workflows
  semdex workflows --json`,
	RunE: runWorkflows,
}

func init() {
	rootCmd.AddCommand(workflowsCmd)
	workflowsCmd.Flags().BoolVar(&workflowsJSON, "json", false, "output as JSON")
}

func runWorkflows(cmd *cobra.Command, args []string) error {
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

	if workflowsJSON {
		output, _ := json.MarshalIndent(idx.Workflows, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(idx.Workflows) == 0 {
		fmt.Println("No workflows detected.")
		return nil
	}

	fmt.Printf("Detected %d workflows in %s:\n\n", len(idx.Workflows), idx.ProjectName)
	for i, wf := range idx.Workflows {
		fmt.Printf("--- [%d] %s (confidence: %.2f) ---\n", i+1, wf.Name, wf.Confidence)
		fmt.Printf("    Business process: %s\n", wf.BusinessProcess)
		for _, step := range wf.Steps {
			fmt.Printf("    %-9s  %s (%s)\n", step.Role, step.EntityName, step.FilePath)
		}
		for _, reason := range wf.Reasoning {
			fmt.Printf("    - %s\n", reason)
		}
		fmt.Println()
	}
	return nil
}
