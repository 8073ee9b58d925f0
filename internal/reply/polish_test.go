package reply

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestPolishStripsQuotes(t *testing.T) {
	got, ok := Polish(`  "방문해 주셔서 감사합니다! 다음에도 맛있는 커피로 보답할게요 😊"  `, 150)
	assert.True(t, ok)
	assert.Equal(t, "방문해 주셔서 감사합니다! 다음에도 맛있는 커피로 보답할게요 😊", got)
}

func TestPolishRejectsTooShort(t *testing.T) {
	_, ok := Polish(`"감사합니다"`, 150)
	assert.False(t, ok)
}

func TestPolishKeepsFirstTwoSentences(t *testing.T) {
	long := "첫 문장입니다. 두 번째 문장입니다! " + strings.Repeat("세 번째는 아주 긴 문장입니다 ", 10) + "."
	got, ok := Polish(long, 60)
	assert.True(t, ok)
	assert.Equal(t, "첫 문장입니다. 두 번째 문장입니다!", got)
}

func TestPolishHardCut(t *testing.T) {
	long := strings.Repeat("가", 200)
	got, ok := Polish(long, 150)
	assert.True(t, ok)
	assert.Equal(t, 150, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestPolishNoLimit(t *testing.T) {
	long := strings.Repeat("나", 300)
	got, ok := Polish(long, 0)
	assert.True(t, ok)
	assert.Equal(t, long, got)
}

func TestSplitSentences(t *testing.T) {
	assert.Equal(t,
		[]string{"좋아요.", "또 올게요!", "감사"},
		splitSentences("좋아요. 또 올게요! 감사"))
}
