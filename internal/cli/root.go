package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"semdex/config"
	"semdex/internal/logging"
)

var (
	cfgFile string
	cfg     *config.Config
	rootDir string
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "semdex",
	Short: "Semantic code analyzer - understand accounting codebases by domain",
	Long: `Semdex parses Python codebases into entities and relationships, tags
them with accounting domain concepts, scores code quality, detects
multi-step business workflows, and answers ranked queries over the
resulting index.

Example usage:
  semdex index .                  # Build the semantic index
  semdex query -q "tax invoice"   # Search indexed entities
  semdex workflows                # Show detected business processes
  semdex ask -q "how are journal entries posted?"`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger = logging.New(os.Stderr, logging.LevelFromString(cfg.Logging.Level), cfg.Logging.Format)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./semdex.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "root directory (default is current directory)")
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}

func GetLogger() *slog.Logger {
	return logger
}
