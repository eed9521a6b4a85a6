package extractor

import (
	"fmt"

	"github.com/runoshun/taskboard/internal/domain"
)

// New builds the extractor selected by cfg.
// getenv resolves the API key variable named in cfg.
func New(cfg domain.ExtractorConfig, getenv func(string) string) (domain.Extractor, error) {
	switch cfg.Backend {
	case domain.ExtractorOpenAI, "":
		keyEnv := cfg.APIKeyEnv
		if keyEnv == "" {
			keyEnv = domain.DefaultAPIKeyEnv
		}
		return NewOpenAI(getenv(keyEnv), cfg.BaseURL, cfg.Model), nil
	case domain.ExtractorCommand:
		if cfg.Command == "" {
			return nil, fmt.Errorf("%w: [extractor] command is required for the command backend", domain.ErrValidation)
		}
		return NewCommand(cfg.Command, cfg.Args), nil
	default:
		return nil, fmt.Errorf("%w: unknown extractor backend %q", domain.ErrValidation, cfg.Backend)
	}
}
