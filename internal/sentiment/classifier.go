// Package sentiment holds the keyword rules used when no cached analysis
// exists for a review.
package sentiment

import (
	"strings"

	"github.com/HanTheDev/review-reply-gateway/internal/models"
)

var (
	positiveKeywords = []string{"맛있", "좋아", "친절", "깨끗", "추천", "만족", "최고", "완벽", "훌륭"}
	negativeKeywords = []string{"별로", "실망", "불만", "최악", "끔찍", "불친절", "맛없", "더럽"}
)

const (
	baseStrength    = 0.7
	perMatch        = 0.05
	neutralStrength = 0.5
)

type Result struct {
	Sentiment models.Sentiment
	Strength  float64
}

// Classify scores text against the keyword lists. Each keyword counts at most
// once no matter how often it appears. Keywords that contain one another
// (불친절 and 친절) both count.
func Classify(text string) Result {
	p := countPresent(text, positiveKeywords)
	n := countPresent(text, negativeKeywords)

	switch {
	case p > n:
		return Result{Sentiment: models.SentimentPositive, Strength: strength(p)}
	case n > p:
		return Result{Sentiment: models.SentimentNegative, Strength: strength(n)}
	default:
		return Result{Sentiment: models.SentimentNeutral, Strength: neutralStrength}
	}
}

func strength(matches int) float64 {
	s := baseStrength + perMatch*float64(matches)
	if s > 1 {
		return 1
	}
	return s
}

func countPresent(text string, keywords []string) int {
	count := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			count++
		}
	}
	return count
}
