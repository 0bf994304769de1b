package advisor

import (
	"context"
	"fmt"
	"os"
)

// Provider completes a single system plus user prompt exchange
type Provider interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// NewProvider creates a provider by name. An empty apiKey is read from the
// provider's environment variables.
func NewProvider(name, model, apiKey string) (Provider, error) {
	switch name {
	case "claude", "anthropic":
		return NewClaudeProvider(model, apiKey)
	case "openai", "gpt":
		return NewOpenAIProvider(model, apiKey)
	default:
		return nil, fmt.Errorf("unknown provider: %s (supported: claude, openai)", name)
	}
}

func keyFromEnv(names ...string) string {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			return v
		}
	}
	return ""
}
