package reply

import (
	"math/rand/v2"

	"github.com/HanTheDev/review-reply-gateway/internal/models"
)

var fallbackTemplates = map[models.Sentiment][]string{
	models.SentimentPositive: {
		"좋게 봐주셔서 감사합니다 😊 앞으로도 더 좋은 모습으로 찾아뵙겠습니다!",
		"만족스러우셨다니 기쁩니다! 항상 최선을 다하는 매장이 되겠습니다 😊",
	},
	models.SentimentNegative: {
		"불편을 드려 정말 죄송합니다. 즉시 개선하겠습니다. 더 나은 모습으로 다시 찾아뵙고 싶습니다.",
		"소중한 의견 감사합니다. 말씀하신 부분은 빠르게 개선하도록 하겠습니다.",
	},
	models.SentimentNeutral: {
		"방문해 주셔서 감사합니다 😊 소중한 의견 잘 참고하여 더 나은 서비스로 보답하겠습니다!",
		"피드백 감사드립니다. 지속적으로 개선해 나가겠습니다!",
	},
}

// Templates returns the fallback replies for s. Unknown sentiments use the
// neutral set.
func Templates(s models.Sentiment) []string {
	if list, ok := fallbackTemplates[s]; ok {
		return list
	}
	return fallbackTemplates[models.SentimentNeutral]
}

// FallbackReply picks one template for s using pick, which returns an index
// in [0, n). A nil pick uses math/rand.
func FallbackReply(s models.Sentiment, pick func(n int) int) string {
	list := Templates(s)
	if pick == nil {
		pick = rand.IntN
	}
	return list[pick(len(list))]
}
