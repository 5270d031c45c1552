package llm

import (
	"fmt"

	"semdex/config"
	"semdex/internal/port"
)

// New builds the answer generator named by the config provider.
func New(cfg config.AskConfig) (port.LLM, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIClient(cfg)
	case "ollama":
		return NewOllamaClient(cfg), nil
	case "dummy", "":
		return NewDummyLLM(), nil
	}
	return nil, fmt.Errorf("unknown ask provider: %q", cfg.Provider)
}
