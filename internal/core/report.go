package core

import (
	"encoding/base64"
	"log"
	"strings"

	"sportmetrics.nl/chat-service/internal/utils"
)

const (
	DefaultReportMaxChars = 30000

	highlightMaxChars    = 4200
	maxHighlightLines    = 28
	fallbackHighlightLen = 16
)

var highlightKeywords = []string{
	"vo2", "vt1", "vt2", "drempel", "hartslag", "hart", "bpm", "watt", "vermogen",
	"lactaat", "rer", "vet", "koolhydra", "fatmax", "zone", "ventilat", "adem",
	"snelheid", "km/u", "tempo", "max", "rust", "herstel", "energie", "kcal",
}

// ExtractHighlights returns the report lines that mention a physiology
// keyword, at most 28 of them. When none match, the first 16 lines are used.
func ExtractHighlights(reportText string) string {
	if strings.TrimSpace(reportText) == "" {
		return ""
	}

	var lines []string
	for _, line := range strings.Split(reportText, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}

	var matches []string
	for _, line := range lines {
		if len(matches) >= maxHighlightLines {
			break
		}
		if containsKeyword(strings.ToLower(line)) {
			matches = append(matches, line)
		}
	}
	if len(matches) == 0 {
		matches = lines
		if len(matches) > fallbackHighlightLen {
			matches = matches[:fallbackHighlightLen]
		}
	}
	return utils.Sanitize(strings.Join(matches, "\n"), highlightMaxChars)
}

func containsKeyword(lower string) bool {
	for _, kw := range highlightKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// DeriveReportText returns the report text from inline text, or else from a
// base64 PDF payload (an optional data URL prefix is stripped). Decode and
// parse failures yield "" so the request proceeds without a report.
func DeriveReportText(inline, pdfBase64 string, maxChars int) string {
	if text := utils.Sanitize(inline, maxChars); text != "" {
		return text
	}
	payload := strings.TrimSpace(pdfBase64)
	if payload == "" {
		return ""
	}
	if strings.HasPrefix(payload, "data:") {
		if i := strings.Index(payload, ","); i >= 0 {
			payload = payload[i+1:]
		}
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		log.Printf("Report payload is not valid base64: %v", err)
		return ""
	}
	text, err := utils.ExtractPDFText(data, maxChars)
	if err != nil {
		log.Printf("Report PDF could not be read: %v", err)
		return ""
	}
	return text
}
