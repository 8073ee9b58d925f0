package reply

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoModel is returned by generators that never call a model.
var ErrNoModel = errors.New("reply: no text generation model configured")

type GenerateRequest struct {
	System      string
	User        string
	Temperature float32
	MaxTokens   int
}

type Completion struct {
	Text             string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Generator is a text-generation backend.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (Completion, error)
	Model() string
}

type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderTemplate  Provider = "template"
)

type GeneratorConfig struct {
	Provider        Provider
	Model           string
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	AnthropicAPIKey string
}

// NewGenerator picks the backend for cfg.Provider.
func NewGenerator(cfg GeneratorConfig) (Generator, error) {
	switch cfg.Provider {
	case ProviderOpenAI, "":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for the openai provider")
		}
		return NewOpenAIGenerator(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.Model), nil

	case ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is required for the anthropic provider")
		}
		return NewAnthropicGenerator(cfg.AnthropicAPIKey, "", cfg.Model), nil

	case ProviderTemplate:
		return TemplateGenerator{}, nil

	default:
		return nil, fmt.Errorf("unknown reply provider %q", cfg.Provider)
	}
}

// TemplateGenerator always defers to the fallback templates.
type TemplateGenerator struct{}

func (TemplateGenerator) Generate(ctx context.Context, req GenerateRequest) (Completion, error) {
	return Completion{}, ErrNoModel
}

func (TemplateGenerator) Model() string { return "template" }
