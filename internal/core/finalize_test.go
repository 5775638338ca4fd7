package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFinalize_AppendsClosingStatements(t *testing.T) {
	out := Finalize("Je VT1 ligt bij 210 W.")
	assert.Equal(t, "Je VT1 ligt bij 210 W.\n\n"+MethodologyNote+"\n\n"+Disclaimer, out)
}

func TestFinalize_DisclaimerExactlyOnce(t *testing.T) {
	inputs := []string{
		"Antwoord.",
		"Antwoord.\n\n" + Disclaimer,
		"Antwoord.\n\n" + MethodologyNote + "\n" + Disclaimer + "\n\n" + Disclaimer,
		Disclaimer + " Antwoord.",
		strings.Repeat("lang antwoord ", 3000),
	}
	for _, in := range inputs {
		out := Finalize(in)
		assert.Equal(t, 1, strings.Count(out, Disclaimer), in)
		assert.Equal(t, 1, strings.Count(out, MethodologyNote), in)
		assert.True(t, strings.HasSuffix(out, Disclaimer))
		assert.LessOrEqual(t, len([]rune(out)), FinalAnswerMaxChars)
	}
}

func TestFinalize_StripsSourceTrailer(t *testing.T) {
	in := "Train rustig in zone 2.\n\n**Gebruikte bronnen:**\n- reader.pdf\n- gids.pdf"
	assert.Equal(t, "Train rustig in zone 2.\n\n"+MethodologyNote+"\n\n"+Disclaimer, Finalize(in))

	in = "Train rustig.\n\n## Bronnen\n1. reader.pdf"
	assert.True(t, strings.HasPrefix(Finalize(in), "Train rustig.\n\n"+MethodologyNote))

	in = "Train rustig.\nSources used: reader.pdf"
	assert.NotContains(t, Finalize(in), "reader.pdf")
}

func TestFinalize_StripsSourceBullets(t *testing.T) {
	in := "Punt een.\n- Bron: reader.pdf\n- [Bron: gids.pdf]\nPunt twee.\n- Bronnen van koolhydraten zijn divers."
	out := Finalize(in)
	assert.NotContains(t, out, "reader.pdf")
	assert.NotContains(t, out, "gids.pdf")
	assert.Contains(t, out, "Punt een.\nPunt twee.")
	assert.Contains(t, out, "Bronnen van koolhydraten")
}

func TestFinalize_KeepsContentMentioningSources(t *testing.T) {
	in := "Je energie komt uit twee bronnen.\n\n" +
		"- Bron van snelle energie: koolhydraten.\n" +
		"- Vet levert energie bij lage intensiteit.\n\n" +
		"Bronnen: vet en koolhydraten wisselen elkaar af, train ook in zone 2."
	assert.Equal(t, in+"\n\n"+MethodologyNote+"\n\n"+Disclaimer, Finalize(in))
}

func TestFinalize_StripsBareDocumentBullets(t *testing.T) {
	out := Finalize("Train rustig.\n- Reader Sportmetrics.pdf\n- [drempels.docx]\n- Eet genoeg koolhydraten.")
	assert.True(t, strings.HasPrefix(out, "Train rustig.\n- Eet genoeg koolhydraten.\n\n"))
}

func TestFinalize_CollapsesBlankLines(t *testing.T) {
	out := Finalize("Een.\n\n\n\n\nTwee.   \n")
	assert.True(t, strings.HasPrefix(out, "Een.\n\nTwee.\n\n"))
}

func TestFinalize_EmptyBody(t *testing.T) {
	assert.Equal(t, MethodologyNote+"\n\n"+Disclaimer, Finalize("Bronnen:\n- a.pdf"))
}
