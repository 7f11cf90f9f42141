package llm

import (
	"fmt"
	"strings"

	"bn9-backend/internal/config"
)

// Factory creates LLM clients with consistent logic
type Factory struct {
	OpenAIAPIKey     string
	OpenAIBaseURL    string
	YandexOAuthToken string
	YandexFolderID   string
}

func NewFactory(cfg *config.Config) *Factory {
	return &Factory{
		OpenAIAPIKey:     cfg.OpenAIAPIKey,
		OpenAIBaseURL:    cfg.OpenAIBaseURL,
		YandexOAuthToken: cfg.YandexOAuthToken,
		YandexFolderID:   cfg.YandexFolderID,
	}
}

// Configured reports whether the given provider has a credential present.
// Without one the classifier runs in deterministic mock mode.
func (f *Factory) Configured(provider string) bool {
	switch strings.ToLower(provider) {
	case string(config.ProviderOpenAI):
		return f.OpenAIAPIKey != ""
	case string(config.ProviderYandex):
		return f.YandexOAuthToken != "" && f.YandexFolderID != ""
	default:
		return false
	}
}

func (f *Factory) CreateClient(provider, model string) (Client, error) {
	switch strings.ToLower(provider) {
	case string(config.ProviderOpenAI):
		return NewOpenAI(f.OpenAIAPIKey, f.OpenAIBaseURL, model), nil
	case string(config.ProviderYandex):
		return NewYandex(f.YandexOAuthToken, f.YandexFolderID)
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", provider)
	}
}
