package embedding

import (
	"fmt"

	"semdex/config"
	"semdex/internal/port"
)

// New builds the embedder named by the config provider.
func New(cfg config.EmbeddingConfig) (port.Embedder, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIEmbedder(cfg)
	case "ollama":
		return NewOllamaEmbedder(cfg), nil
	case "mock", "":
		return NewMockEmbedder(cfg.Dimension), nil
	}
	return nil, fmt.Errorf("unknown embedding provider: %q", cfg.Provider)
}
