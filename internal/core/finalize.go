package core

import (
	"regexp"
	"strings"

	"sportmetrics.nl/chat-service/internal/utils"
)

// FinalAnswerMaxChars bounds the text returned to the caller.
const FinalAnswerMaxChars = 18000

const sourceHeading = `(?:gebruikte bronnen|bronnen gebruikt|bronvermelding|bronnen|sources used|sources|referenties)`

var (
	// sourcesTrailerRe matches a "sources used" heading on its own line and
	// everything after it.
	sourcesTrailerRe = regexp.MustCompile(`(?is)\n[ \t]*(?:#{1,6}[ \t]*)?(?:\*\*|__)?[ \t]*` + sourceHeading + `[ \t]*:?[ \t]*(?:\*\*|__)?[ \t]*:?[ \t]*(?:\n.*)?$`)

	// inlineSourcesRe matches a "Bronnen: a.pdf, b.docx" line and everything
	// after it.
	inlineSourcesRe = regexp.MustCompile(`(?is)\n[ \t]*(?:\*\*|__)?[ \t]*` + sourceHeading + `[ \t]*(?:\*\*|__)?[ \t]*:[^\n]*\.(?:pdf|docx)\b.*$`)

	// sourceBulletRe matches bullet lines that only cite a source: a
	// "[Bron: ...]" label, "Bron: file.pdf", or a bare document name.
	sourceBulletRe = regexp.MustCompile(`(?im)^[ \t]*[-*•][ \t]*(?:\[(?:bron|source)[ \t]*:[^\]\n]*\][^\n]*|(?:bron|source)[ \t]*:[^\n]*\.(?:pdf|docx)\b[^\n]*|\[?[^\n\[\]]*\.(?:pdf|docx)\]?[.,;]?)[ \t]*(?:\n|$)`)
)

// Finalize strips source listings from a model answer and makes sure the
// methodology note and the disclaimer close it exactly once.
func Finalize(answer string) string {
	body := "\n" + strings.ReplaceAll(answer, "\r\n", "\n")
	body = sourcesTrailerRe.ReplaceAllString(body, "")
	body = inlineSourcesRe.ReplaceAllString(body, "")
	body = sourceBulletRe.ReplaceAllString(body, "")
	body = strings.ReplaceAll(body, MethodologyNote, "")
	body = strings.ReplaceAll(body, Disclaimer, "")

	closing := MethodologyNote + "\n\n" + Disclaimer
	budget := FinalAnswerMaxChars - utils.CharCount(closing) - 2
	body = utils.Sanitize(body, budget)

	if body == "" {
		return closing
	}
	return utils.Sanitize(body+"\n\n"+closing, FinalAnswerMaxChars)
}
