package reply

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicModel = "claude-3-5-haiku-latest"

type AnthropicGenerator struct {
	client anthropic.Client
	model  string
}

// NewAnthropicGenerator builds a Messages API backend. OpenAI model names
// are replaced by the default Claude model.
func NewAnthropicGenerator(apiKey, baseURL, model string) *AnthropicGenerator {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(1),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if model == "" || strings.HasPrefix(model, "gpt-") {
		model = defaultAnthropicModel
	}
	return &AnthropicGenerator{client: anthropic.NewClient(opts...), model: model}
}

func (g *AnthropicGenerator) Model() string { return g.model }

func (g *AnthropicGenerator) Generate(ctx context.Context, req GenerateRequest) (Completion, error) {
	msg, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(g.model),
		MaxTokens:   int64(req.MaxTokens),
		System:      []anthropic.TextBlockParam{{Text: req.System}},
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(req.User))},
		Temperature: anthropic.Float(float64(req.Temperature)),
	})
	if err != nil {
		return Completion{}, err
	}

	var parts []string
	for _, block := range msg.Content {
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	text := strings.TrimSpace(strings.Join(parts, ""))
	if text == "" {
		return Completion{}, errors.New("anthropic: empty completion")
	}

	in, out := int(msg.Usage.InputTokens), int(msg.Usage.OutputTokens)
	return Completion{
		Text:             text,
		Model:            g.model,
		PromptTokens:     in,
		CompletionTokens: out,
		TotalTokens:      in + out,
	}, nil
}
