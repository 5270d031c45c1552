package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"semdex/internal/domain"
)

// SaveIndexJSON writes the index as an indented JSON artifact.
func SaveIndexJSON(idx *domain.SemanticIndex, path string) error {
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal index: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadIndexJSON reads an index artifact written by SaveIndexJSON.
func LoadIndexJSON(path string) (*domain.SemanticIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	idx := domain.NewSemanticIndex("")
	if err := json.Unmarshal(data, idx); err != nil {
		return nil, fmt.Errorf("failed to parse index file: %w", err)
	}
	return idx, nil
}

// SaveAnalysisJSON writes a project analysis as an indented JSON
// artifact.
func SaveAnalysisJSON(pa *domain.ProjectAnalysis, path string) error {
	data, err := json.MarshalIndent(pa, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
