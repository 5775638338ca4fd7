package utils

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	trailingSpaceRe = regexp.MustCompile(`[ \t]+\n`)
	blankRunRe      = regexp.MustCompile(`\n{3,}`)
)

// Sanitize normalizes text and cuts it to at most maxChars characters.
// It removes NUL bytes, converts CRLF/CR line endings to LF, drops horizontal
// whitespace before line breaks, collapses runs of three or more newlines to a
// single blank line and trims the result. The cut is not word-aware.
func Sanitize(value string, maxChars int) string {
	if maxChars <= 0 || value == "" {
		return ""
	}

	text := strings.ReplaceAll(value, "\x00", "")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = trailingSpaceRe.ReplaceAllString(text, "\n")
	text = blankRunRe.ReplaceAllString(text, "\n\n")
	text = strings.TrimSpace(text)

	if utf8.RuneCountInString(text) > maxChars {
		// A cut can expose trailing whitespace; trim again so Sanitize stays idempotent.
		text = strings.TrimSpace(Clip(text, maxChars))
	}
	return text
}

// SanitizeValue is Sanitize for loosely typed input such as decoded JSON.
// Anything that is not a string yields "".
func SanitizeValue(value any, maxChars int) string {
	s, ok := value.(string)
	if !ok {
		return ""
	}
	return Sanitize(s, maxChars)
}

// Clip returns the first maxChars characters of s.
func Clip(s string, maxChars int) string {
	if maxChars <= 0 {
		return ""
	}
	if len(s) <= maxChars {
		return s
	}
	n := 0
	for i := range s {
		if n == maxChars {
			return s[:i]
		}
		n++
	}
	return s
}

// Tail returns the last maxChars characters of s.
func Tail(s string, maxChars int) string {
	if maxChars <= 0 {
		return ""
	}
	count := utf8.RuneCountInString(s)
	if count <= maxChars {
		return s
	}
	skip := count - maxChars
	n := 0
	for i := range s {
		if n == skip {
			return s[i:]
		}
		n++
	}
	return ""
}

// CharCount reports the length of s in characters.
func CharCount(s string) int {
	return utf8.RuneCountInString(s)
}
