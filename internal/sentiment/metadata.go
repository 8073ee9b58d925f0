package sentiment

import (
	"strings"
	"unicode/utf8"
)

type Topic string

const (
	TopicFood        Topic = "food"
	TopicStaff       Topic = "staff"
	TopicService     Topic = "service"
	TopicAtmosphere  Topic = "atmosphere"
	TopicCleanliness Topic = "cleanliness"
	TopicPrice       Topic = "price"
	TopicWaiting     Topic = "waiting"
)

type topicRule struct {
	topic    Topic
	label    string
	keywords []string
}

// Ordered so prompts list topics deterministically.
var topicRules = []topicRule{
	{TopicFood, "맛/품질", []string{"맛", "음식", "요리", "메뉴", "신선", "재료", "품질", "커피", "빵", "디저트"}},
	{TopicStaff, "직원", []string{"직원", "알바", "사장", "주인", "매니저", "선생님"}},
	{TopicService, "서비스", []string{"서비스", "응대", "태도", "친절", "불친절", "안내"}},
	{TopicAtmosphere, "분위기/시설", []string{"인테리어", "좌석", "공간", "분위기", "시설", "화장실", "테이블", "음악"}},
	{TopicCleanliness, "청결", []string{"위생", "깨끗", "청결", "더러", "더럽", "지저분", "냄새", "벌레"}},
	{TopicPrice, "가격", []string{"가격", "가성비", "비용", "값", "비싸", "저렴", "양이"}},
	{TopicWaiting, "대기시간", []string{"대기", "기다", "웨이팅", "줄이", "오래 걸"}},
}

var (
	amplifiers      = []string{"너무", "정말", "진짜", "완전", "엄청", "매우", "아주"}
	questionMarkers = []string{"?", "？", "나요", "까요", "을까", "습니까", "는지"}
)

// Metadata describes the shape of a review for reply styling.
type Metadata struct {
	Length      int
	Topics      []Topic
	HasQuestion bool
	// Intensity in [0,1] from amplifiers, exclamation marks and sentiment keywords.
	Intensity float64
}

func (m Metadata) Mentions(t Topic) bool {
	for _, topic := range m.Topics {
		if topic == t {
			return true
		}
	}
	return false
}

// TopicLabel returns the Korean label used in prompts.
func TopicLabel(t Topic) string {
	for _, r := range topicRules {
		if r.topic == t {
			return r.label
		}
	}
	return string(t)
}

func ExtractMetadata(text string) Metadata {
	md := Metadata{Length: utf8.RuneCountInString(strings.TrimSpace(text))}

	for _, rule := range topicRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				md.Topics = append(md.Topics, rule.topic)
				break
			}
		}
	}

	for _, marker := range questionMarkers {
		if strings.Contains(text, marker) {
			md.HasQuestion = true
			break
		}
	}

	amps := 0
	for _, a := range amplifiers {
		amps += strings.Count(text, a)
	}
	exclaims := strings.Count(text, "!") + strings.Count(text, "！")
	keywords := countPresent(text, positiveKeywords) + countPresent(text, negativeKeywords)

	intensity := 0.2*float64(amps) + 0.1*float64(exclaims) + 0.1*float64(keywords)
	if intensity > 1 {
		intensity = 1
	}
	md.Intensity = intensity

	return md
}
