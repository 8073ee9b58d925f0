package reply

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/HanTheDev/review-reply-gateway/internal/logger"
	"github.com/HanTheDev/review-reply-gateway/internal/models"
	"github.com/HanTheDev/review-reply-gateway/internal/sentiment"
)

const maxTokens = 250

type Result struct {
	Reply            string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	// Fallback is set when the reply came from a template. Err holds the
	// reason when the model call failed.
	Fallback bool
	Err      error
}

type Synthesizer struct {
	gen      Generator
	timeout  time.Duration
	maxChars int
	pick     func(n int) int
}

func NewSynthesizer(gen Generator, timeout time.Duration, maxChars int) *Synthesizer {
	return &Synthesizer{gen: gen, timeout: timeout, maxChars: maxChars}
}

// Synthesize always returns a reply. Model failures of any kind, including
// timeouts and unusable output, fall back to a template with zero tokens.
func (s *Synthesizer) Synthesize(ctx context.Context, review string, analysis sentiment.Result, profile models.UserProfile) Result {
	md := sentiment.ExtractMetadata(review)
	req := GenerateRequest{
		System: SystemPrompt(analysis.Sentiment),
		User: BuildUserPrompt(PromptInput{
			Review:    review,
			Sentiment: analysis.Sentiment,
			Strength:  analysis.Strength,
			Profile:   profile,
			Metadata:  md,
		}),
		Temperature: Temperature(analysis.Sentiment, analysis.Strength, md),
		MaxTokens:   maxTokens,
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	completion, err := s.gen.Generate(ctx, req)
	if err != nil {
		if !errors.Is(err, ErrNoModel) {
			logger.Log.WithFields(logrus.Fields{
				"model": s.gen.Model(),
				"error": err,
			}).Warn("reply generation failed, using template")
		}
		return s.fallback(analysis.Sentiment, err)
	}

	text, ok := Polish(completion.Text, s.maxChars)
	if !ok {
		logger.Log.WithField("model", completion.Model).Warn("generated reply too short, using template")
		return s.fallback(analysis.Sentiment, errors.New("generated reply too short"))
	}

	return Result{
		Reply:            text,
		Model:            completion.Model,
		PromptTokens:     completion.PromptTokens,
		CompletionTokens: completion.CompletionTokens,
		TotalTokens:      completion.TotalTokens,
	}
}

func (s *Synthesizer) fallback(sent models.Sentiment, err error) Result {
	return Result{
		Reply:    FallbackReply(sent, s.pick),
		Model:    s.gen.Model(),
		Fallback: true,
		Err:      err,
	}
}
