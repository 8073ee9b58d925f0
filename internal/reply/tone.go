package reply

type choice struct {
	value string
	label string
}

var businessTypes = []choice{
	{"cafe", "카페"},
	{"restaurant_korean", "한식당"},
	{"restaurant_chinese", "중식당"},
	{"restaurant_japanese", "일식당"},
	{"restaurant_western", "양식당"},
	{"restaurant_buffet", "뷔페"},
	{"bakery", "베이커리"},
	{"dessert", "디저트"},
	{"fastfood", "패스트푸드"},
	{"bar", "술집/바"},
	{"salon", "미용실"},
	{"nail", "네일샵"},
	{"spa", "스파/마사지"},
	{"fitness", "헬스장/PT"},
	{"hospital", "병원"},
	{"dental", "치과"},
	{"hotel", "숙박/호텔"},
	{"retail", "소매점"},
	{"other", "기타"},
}

var brandTones = []choice{
	{"friendly", "친근한"},
	{"professional", "전문적인"},
	{"casual", "캐주얼한"},
	{"warm", "따뜻한"},
	{"energetic", "활기찬"},
	{"luxury", "고급스러운"},
	{"minimalist", "미니멀"},
}

var toneGuides = map[string]string{
	"friendly":     "편안하고 다정한 말투로 작성하세요. 고객과의 친밀감을 느낄 수 있도록 따뜻한 표현을 사용하세요.",
	"professional": "정중하고 격식 있는 말투로 작성하세요. 신뢰감을 주는 전문적인 어조를 유지하세요.",
	"casual":       "가볍고 부담 없는 말투로 작성하세요. 편안하면서도 친근한 분위기를 연출하세요.",
	"warm":         "진심 어린 감사와 배려가 느껴지도록 작성하세요. 고객의 마음을 따뜻하게 감싸는 표현을 사용하세요.",
	"energetic":    "밝고 긍정적인 에너지가 느껴지도록 작성하세요. 활기차고 열정적인 분위기를 전달하세요.",
	"luxury":       "품격 있고 세련된 표현을 사용하세요. 고급스러운 서비스를 제공하는 브랜드의 이미지를 유지하세요.",
	"minimalist":   "간결하고 핵심만 전달하세요. 불필요한 수식어 없이 명확하게 전달하세요.",
}

func lookup(opts []choice, value string) (string, bool) {
	for _, o := range opts {
		if o.value == value {
			return o.label, true
		}
	}
	return value, false
}

// BusinessTypeLabel returns the Korean label, or value itself when unknown.
func BusinessTypeLabel(value string) string {
	label, _ := lookup(businessTypes, value)
	return label
}

func BrandToneLabel(value string) string {
	label, _ := lookup(brandTones, value)
	return label
}

// ToneGuide falls back to the friendly guide.
func ToneGuide(tone string) string {
	if guide, ok := toneGuides[tone]; ok {
		return guide
	}
	return toneGuides["friendly"]
}

func ValidBusinessType(value string) bool {
	_, ok := lookup(businessTypes, value)
	return ok
}

func ValidBrandTone(value string) bool {
	_, ok := lookup(brandTones, value)
	return ok
}
