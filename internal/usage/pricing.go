package usage

import "github.com/HanTheDev/review-reply-gateway/internal/logger"

// DefaultModel prices any model missing from the table.
const DefaultModel = "gpt-4o-mini"

type price struct {
	input  float64 // USD per token
	output float64
}

var pricing = map[string]price{
	"gpt-4o-mini":             {input: 0.15 / 1_000_000, output: 0.60 / 1_000_000},
	"gpt-4o":                  {input: 2.50 / 1_000_000, output: 10.00 / 1_000_000},
	"claude-3-5-haiku-latest": {input: 0.80 / 1_000_000, output: 4.00 / 1_000_000},
}

// EstimateCost returns the estimated USD cost of one call. It is an estimate
// for dashboards, not billing.
func EstimateCost(model string, promptTokens, completionTokens int) float64 {
	p, ok := pricing[model]
	if !ok {
		logger.Log.WithField("model", model).Warnf("unknown model, using %s pricing", DefaultModel)
		p = pricing[DefaultModel]
	}
	return p.input*float64(promptTokens) + p.output*float64(completionTokens)
}
