package core

import (
	"encoding/base64"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractHighlights_KeywordLines(t *testing.T) {
	report := "Naam: Jan\n\nVT1 bij 210 W\nDatum: maandag\nHartslag max 188 bpm\nOpmerking: goed gegeten"
	assert.Equal(t, "VT1 bij 210 W\nHartslag max 188 bpm", ExtractHighlights(report))
}

func TestExtractHighlights_CapsMatches(t *testing.T) {
	var lines []string
	for i := 0; i < 40; i++ {
		lines = append(lines, fmt.Sprintf("vermogen stap %d", i))
	}
	out := ExtractHighlights(strings.Join(lines, "\n"))
	assert.Equal(t, maxHighlightLines, len(strings.Split(out, "\n")))
	assert.True(t, strings.HasSuffix(out, "vermogen stap 27"))
}

func TestExtractHighlights_FallbackToFirstLines(t *testing.T) {
	var lines []string
	for i := 0; i < 20; i++ {
		lines = append(lines, fmt.Sprintf("regel %d", i))
	}
	out := ExtractHighlights(strings.Join(lines, "\n"))
	assert.Equal(t, fallbackHighlightLen, len(strings.Split(out, "\n")))
	assert.True(t, strings.HasPrefix(out, "regel 0\nregel 1"))
}

func TestExtractHighlights_EmptyAndBounded(t *testing.T) {
	assert.Equal(t, "", ExtractHighlights("  \n "))

	long := strings.Repeat("vermogen "+strings.Repeat("w", 400)+"\n", 20)
	assert.LessOrEqual(t, len([]rune(ExtractHighlights(long))), highlightMaxChars)
}

func TestDeriveReportText(t *testing.T) {
	assert.Equal(t, "VT1 bij 210 W", DeriveReportText("  VT1 bij 210 W ", "", 100))
	assert.Equal(t, "VT1", DeriveReportText("VT1 bij 210 W", "", 3))

	assert.Equal(t, "", DeriveReportText("", "", 100))
	assert.Equal(t, "", DeriveReportText("", "%%% geen base64 %%%", 100))

	notPDF := base64.StdEncoding.EncodeToString([]byte("geen pdf"))
	assert.Equal(t, "", DeriveReportText("", notPDF, 100))
	assert.Equal(t, "", DeriveReportText("", "data:application/pdf;base64,"+notPDF, 100))
}
