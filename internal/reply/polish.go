package reply

import (
	"strings"
	"unicode/utf8"
)

const minReplyRunes = 10

// Polish strips wrapping quotes and enforces maxChars. Replies longer than
// maxChars keep their first two sentences and are then hard cut with "...".
// ok is false when the text is too short to be a usable reply.
func Polish(text string, maxChars int) (string, bool) {
	text = strings.TrimSpace(text)
	text = strings.Trim(text, "\"'“”‘’")
	text = strings.TrimSpace(text)

	if utf8.RuneCountInString(text) < minReplyRunes {
		return "", false
	}
	if maxChars <= 0 || utf8.RuneCountInString(text) <= maxChars {
		return text, true
	}

	sentences := splitSentences(text)
	if len(sentences) > 2 {
		sentences = sentences[:2]
	}
	text = strings.TrimSpace(strings.Join(sentences, " "))

	if runes := []rune(text); len(runes) > maxChars {
		cut := max(maxChars-3, 0)
		text = string(runes[:cut]) + "..."
	}

	return text, true
}

func splitSentences(text string) []string {
	var out []string
	var cur strings.Builder
	for _, r := range text {
		cur.WriteRune(r)
		switch r {
		case '.', '!', '?', '。', '！', '？':
			if s := strings.TrimSpace(cur.String()); s != "" {
				out = append(out, s)
			}
			cur.Reset()
		}
	}
	if s := strings.TrimSpace(cur.String()); s != "" {
		out = append(out, s)
	}
	return out
}
