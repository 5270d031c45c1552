package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"semdex/internal/adapter/fs"
	"semdex/internal/adapter/parser"
	"semdex/internal/adapter/store"
	"semdex/internal/usecase"
)

var (
	analyzeOutput string
	analyzeName   string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [path]",
	Short: "Parse a project and print its structural analysis",
	Long: `Parse every Python file under the given directory and print the
aggregated analysis as JSON: entities, relationships, cross-file calls
and per-file errors. No index is written; use 'semdex index' for that.

Examples:
  semdex analyze .                      # Analyze current directory
  semdex analyze /path/to/project -o analysis.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "write JSON to file (default: stdout)")
	analyzeCmd.Flags().StringVar(&analyzeName, "name", "", "project name (default: directory name)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	path := GetRootDir()
	if len(args) > 0 {
		var err error
		path, err = filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}
	}

	cfg := GetConfig()
	uc := usecase.NewAnalyzeUseCase(
		fs.NewWalker(cfg.Analyze.Includes, cfg.Analyze.Excludes, cfg.Analyze.RespectGitignore),
		parser.NewPythonParser(cfg.MaxFileSizeBytes()),
		GetLogger(),
	)

	name := analyzeName
	if name == "" {
		name = cfg.Project.Name
	}

	pa, err := uc.Analyze(path, usecase.AnalyzeOptions{
		ProjectName: name,
		Workers:     cfg.Analyze.Workers,
	})
	if err != nil {
		return err
	}

	if analyzeOutput != "" {
		if err := store.SaveAnalysisJSON(pa, analyzeOutput); err != nil {
			return fmt.Errorf("failed to write analysis: %w", err)
		}
		fmt.Printf("Analysis written to %s\n", analyzeOutput)
		return nil
	}

	data, err := json.MarshalIndent(pa, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode analysis: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
