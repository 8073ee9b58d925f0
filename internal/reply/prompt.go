package reply

import (
	"fmt"
	"strings"

	"github.com/HanTheDev/review-reply-gateway/internal/models"
	"github.com/HanTheDev/review-reply-gateway/internal/sentiment"
)

// lengthRule is the reply length asked of the model in both prompts.
const lengthRule = "50-150자 내외로 간결하게"

const systemPreamble = "당신은 한국 프랜차이즈 매장의 전문적이고 진심어린 고객 서비스 담당자입니다.\n\n"

var systemPrompts = map[models.Sentiment]string{
	models.SentimentPositive: systemPreamble + `고객의 긍정적인 리뷰에 감사하며, 진정성 있고 따뜻한 답글을 작성합니다.
형식적이지 않고 고객이 언급한 구체적인 내용을 인용하여 답변합니다.

답글 작성 원칙:
- 고객이 언급한 구체적인 내용(맛, 서비스, 분위기 등)을 인용
- ` + lengthRule + `
- 따뜻하고 진정성 있는 톤
- 자연스러운 이모지 1-2개 사용
- 형식적인 문구 지양`,

	models.SentimentNegative: systemPreamble + `고객의 불만에 진심으로 공감하고 사과하며, 구체적인 개선 방안을 제시합니다.
변명하거나 책임을 회피하지 않고, 문제를 정확히 이해했음을 보여줍니다.

답글 작성 원칙:
- 진심 어린 사과로 시작
- 고객이 지적한 구체적인 문제점 언급
- 명확한 개선 약속
- ` + lengthRule + `
- 진지하고 책임감 있는 톤
- 변명이나 책임 회피 금지`,

	models.SentimentNeutral: systemPreamble + `고객의 방문과 피드백에 감사하며, 더 나은 경험을 제공하겠다는 의지를 전달합니다.

답글 작성 원칙:
- 방문 감사 표현
- 고객의 피드백을 진지하게 받아들임을 표현
- 개선 의지 전달
- ` + lengthRule + `
- 정중하고 따뜻한 톤`,
}

// SystemPrompt returns the instruction for s, neutral when s is unknown.
func SystemPrompt(s models.Sentiment) string {
	if p, ok := systemPrompts[s]; ok {
		return p
	}
	return systemPrompts[models.SentimentNeutral]
}

const (
	shortReviewRunes = 20
	longReviewRunes  = 150
)

// StyleDirectives turns review metadata into extra writing instructions.
func StyleDirectives(md sentiment.Metadata, s models.Sentiment) []string {
	var out []string

	switch {
	case md.Length > 0 && md.Length < shortReviewRunes:
		out = append(out, "짧은 리뷰이므로 답글도 1-2문장으로 간결하게 작성하세요.")
	case md.Length > longReviewRunes:
		out = append(out, "상세한 리뷰이므로 고객이 언급한 내용을 2가지 이상 짚어 주세요.")
	}

	if md.Mentions(sentiment.TopicStaff) || md.Mentions(sentiment.TopicService) {
		if s == models.SentimentNegative {
			out = append(out, "직원 응대에 대한 지적을 인정하고 직원 교육 등 구체적인 개선을 약속하세요.")
		} else {
			out = append(out, "직원과 서비스에 대한 칭찬을 직원들에게 전하겠다고 언급하세요.")
		}
	}
	if md.Mentions(sentiment.TopicFood) {
		out = append(out, "고객이 언급한 메뉴나 맛을 구체적으로 언급하세요.")
	}
	if md.Mentions(sentiment.TopicAtmosphere) {
		out = append(out, "매장 분위기와 공간에 대한 언급에 공감을 표현하세요.")
	}
	if md.Mentions(sentiment.TopicPrice) {
		out = append(out, "가격과 가성비에 대한 의견을 존중하는 표현을 포함하세요.")
	}
	if md.HasQuestion {
		out = append(out, "리뷰에 포함된 질문에 먼저 간단히 답변하세요.")
	}
	if md.Intensity >= 0.6 {
		if s == models.SentimentNegative {
			out = append(out, "고객의 감정이 격하므로 더욱 진중하게 사과하세요.")
		} else {
			out = append(out, "고객의 감정 표현에 맞춰 감사의 마음을 풍부하게 표현하세요.")
		}
	}

	return out
}

// Temperature is lower for negative reviews to keep the tone steady and
// higher for strongly positive ones to add variety.
func Temperature(s models.Sentiment, strength float64, md sentiment.Metadata) float32 {
	switch {
	case s == models.SentimentNegative:
		return 0.5
	case s == models.SentimentPositive && (strength >= 0.85 || md.Intensity >= 0.6):
		return 0.9
	default:
		return 0.7
	}
}

type PromptInput struct {
	Review    string
	Sentiment models.Sentiment
	Strength  float64
	Profile   models.UserProfile
	Metadata  sentiment.Metadata
}

// BuildUserPrompt composes the per-request instruction.
func BuildUserPrompt(in PromptInput) string {
	profile := in.Profile.WithDefaults()
	var b strings.Builder

	b.WriteString("[고객 리뷰 분석 결과]\n")
	fmt.Fprintf(&b, "감정: %s (강도: %d%%)\n", in.Sentiment, int(in.Strength*100+0.5))
	if len(in.Metadata.Topics) > 0 {
		labels := make([]string, len(in.Metadata.Topics))
		for i, t := range in.Metadata.Topics {
			labels[i] = sentiment.TopicLabel(t)
		}
		fmt.Fprintf(&b, "주요 주제: %s\n", strings.Join(labels, ", "))
	}

	fmt.Fprintf(&b, "\n[리뷰 내용]\n\"%s\"\n", in.Review)

	b.WriteString("\n[매장 정보]\n")
	if profile.BusinessName != "" {
		fmt.Fprintf(&b, "- 매장명: %s\n", profile.BusinessName)
	}
	fmt.Fprintf(&b, "- 매장 유형: %s\n", BusinessTypeLabel(profile.BusinessType))

	fmt.Fprintf(&b, "\n[톤앤매너: %s]\n%s\n", BrandToneLabel(profile.BrandTone), ToneGuide(profile.BrandTone))

	if directives := StyleDirectives(in.Metadata, in.Sentiment); len(directives) > 0 {
		b.WriteString("\n[작성 스타일]\n")
		for _, d := range directives {
			fmt.Fprintf(&b, "- %s\n", d)
		}
	}

	b.WriteString("\n위 리뷰에 대한 답글을 작성해주세요. " + lengthRule + " 작성하고, 고객이 언급한 구체적인 내용을 인용하세요.\n")
	b.WriteString("답글만 작성하세요 (부가 설명 없이):")

	return b.String()
}
