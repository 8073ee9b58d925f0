package cache

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"unicode"
)

// isSpace counts a byte order mark as whitespace so a pasted BOM does not
// change the hash.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\ufeff'
}

// Normalize trims, lowercases and collapses whitespace runs to one space.
func Normalize(content string) string {
	return strings.Join(strings.FieldsFunc(strings.ToLower(content), isSpace), " ")
}

// ContentHash is the lowercase hex SHA-256 of the normalized content.
func ContentHash(content string) string {
	hash := sha256.Sum256([]byte(Normalize(content)))
	return fmt.Sprintf("%x", hash)
}
