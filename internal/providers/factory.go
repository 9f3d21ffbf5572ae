// internal/providers/factory.go
package providers

import (
	"fmt"
	"strings"

	"github.com/AI-Template-SDK/brand-tracker/internal/config"
	"github.com/sirupsen/logrus"
)

// New creates the platform adapter for the given platform name. Names are
// matched case-insensitively and accept the vendor name as an alias.
func New(platform string, cfg *config.Config, log *logrus.Logger) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(platform)) {
	case "chatgpt", "openai":
		return NewOpenAIProvider(cfg, log), nil
	case "claude", "anthropic":
		return NewAnthropicProvider(cfg, log), nil
	case "perplexity":
		return NewPerplexityProvider(cfg, log), nil
	case "gemini", "google":
		return NewGeminiProvider(cfg, log), nil
	default:
		return nil, fmt.Errorf("unknown platform: %s", platform)
	}
}

// ForPlatforms builds adapters for every requested platform, keyed by the
// adapter's canonical name. Unknown platforms fail the whole call.
func ForPlatforms(platforms []string, cfg *config.Config, log *logrus.Logger) (map[string]Provider, error) {
	out := make(map[string]Provider, len(platforms))
	for _, name := range platforms {
		p, err := New(name, cfg, log)
		if err != nil {
			return nil, err
		}
		out[p.Name()] = p
	}
	return out, nil
}
