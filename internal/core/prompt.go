package core

import (
	"fmt"
	"strings"
)

const (
	// MethodologyNote closes every answer.
	MethodologyNote = "Deze toelichting volgt de testmethodiek van Sportmetrics en de bijbehorende vakliteratuur."

	// Disclaimer closes every answer, after MethodologyNote.
	Disclaimer = "Dit is geen medisch advies; raadpleeg bij gezondheidsklachten altijd een arts."
)

// PromptInput selects the variant of the system prompt.
type PromptInput struct {
	HasReport bool
	// ReportName is set when the client named an uploaded report.
	ReportName string
	// HasLiterature is false when no knowledge context could be selected.
	HasLiterature bool
}

// ConversationTurn is one client-supplied history entry. Role is the
// rendered label ("Gebruiker" or "Assistent").
type ConversationTurn struct {
	Role string
	Text string
}

// PromptParts is everything that goes into the first-pass prompt besides
// the system prompt.
type PromptParts struct {
	Question   string
	History    []ConversationTurn
	ReportName string
	ReportText string
	Highlights string
	Literature string
}

// BuildSystemPrompt returns the fixed instruction block for the given input.
func BuildSystemPrompt(in PromptInput) string {
	var sections []string

	sections = append(sections, strings.Join([]string{
		"ROL",
		"Je bent een sportfysioloog van Sportmetrics. Je legt inspanningstesten (ademgasanalyse, VT1/VT2, VO2max, trainingszones) uit aan sporters.",
		"Antwoord altijd in het Nederlands.",
	}, "\n"))

	var truth []string
	truth = append(truth, "WAARHEIDSBRONNEN (in volgorde van prioriteit)")
	switch {
	case in.HasReport:
		truth = append(truth,
			"1. Het rapport van de gebruiker: meetwaarden uit het rapport gaan altijd voor.",
			"2. De literatuurcontext van Sportmetrics: gebruik die om de waarden uit te leggen.",
		)
	default:
		truth = append(truth,
			"1. De literatuurcontext van Sportmetrics is je enige bron.",
			"Er is geen rapport beschikbaar; noem geen persoonlijke meetwaarden alsof je die kent.",
		)
	}
	if in.ReportName != "" && !in.HasReport {
		truth = append(truth, fmt.Sprintf("Er is een rapport geupload (%s), maar de inhoud kon niet worden gelezen. Zeg dat expliciet aan het begin van je antwoord.", in.ReportName))
	}
	if !in.HasLiterature {
		truth = append(truth, "Er is geen literatuurcontext gevonden; blijf algemeen en voorzichtig.")
	}
	sections = append(sections, strings.Join(truth, "\n"))

	sections = append(sections, strings.Join([]string{
		"HARDE REGELS",
		"- Sportmetrics meet niet invasief: beweer nooit dat er bloed, lactaat uit bloed of andere invasieve metingen zijn gedaan.",
		"- Verzin geen getallen. Noem alleen waarden die in het rapport of de literatuurcontext staan.",
		"- Stel geen medische diagnose en geef geen medisch advies.",
		"- Noem geen bestandsnamen en geef geen lijst met gebruikte bronnen.",
		"- Als informatie ontbreekt, zeg dat eerlijk.",
	}, "\n"))

	var format []string
	format = append(format, "OPBOUW VAN HET ANTWOORD")
	if in.HasReport {
		format = append(format,
			"1. Kernantwoord: beantwoord de vraag direct in twee of drie zinnen.",
			"2. Jouw waarden: bespreek de relevante waarden uit het rapport.",
			"3. Betekenis: leg uit wat die waarden betekenen voor training en prestatie.",
			"4. Praktische tips: geef twee tot vier direct toepasbare tips.",
		)
	} else {
		format = append(format,
			"1. Kernantwoord: beantwoord de vraag direct in twee of drie zinnen.",
			"2. Uitleg: leg de achtergrond uit aan de hand van de literatuurcontext.",
			"3. Praktische tips: geef twee tot vier direct toepasbare tips.",
		)
	}
	sections = append(sections, strings.Join(format, "\n"))

	sections = append(sections, strings.Join([]string{
		"TOON",
		"Helder, vriendelijk en concreet. Geen jargon zonder uitleg. Schrijf volledige zinnen.",
	}, "\n"))

	sections = append(sections, strings.Join([]string{
		"AFSLUITING",
		"Sluit af met precies deze twee zinnen, elk op een eigen regel:",
		MethodologyNote,
		Disclaimer,
	}, "\n"))

	return strings.Join(sections, "\n\n")
}

// BuildPrompt combines the system prompt with the request material into the
// single user message of the first pass.
func BuildPrompt(systemPrompt string, parts PromptParts) string {
	sections := []string{systemPrompt}

	if parts.ReportName != "" {
		sections = append(sections, fmt.Sprintf("Er is een rapport geupload met bestandsnaam: %s.", parts.ReportName))
	} else if parts.ReportText == "" {
		sections = append(sections, "Er is nog geen rapport geupload.")
	}
	if parts.Highlights != "" {
		sections = append(sections, "KERNWAARDEN UIT HET RAPPORT\n"+parts.Highlights)
	}
	if parts.ReportText != "" {
		sections = append(sections, "RAPPORTTEKST\n"+parts.ReportText)
	}
	if parts.Literature != "" {
		sections = append(sections, "LITERATUURCONTEXT\n"+parts.Literature)
	}
	if len(parts.History) > 0 {
		lines := make([]string, 0, len(parts.History))
		for _, turn := range parts.History {
			lines = append(lines, turn.Role+": "+turn.Text)
		}
		sections = append(sections, "Context uit dit gesprek:\n"+strings.Join(lines, "\n"))
	}
	sections = append(sections, "Nieuwe vraag: "+parts.Question)

	return strings.Join(sections, "\n\n")
}

// BuildContinuationPrompt asks the model to resume an unfinished answer.
func BuildContinuationPrompt(systemPrompt, answerTail string) string {
	return strings.Join([]string{
		systemPrompt,
		"VERVOLG",
		"Je vorige antwoord is afgebroken. Ga precies verder waar de tekst hieronder stopt. Herhaal geen zinnen die er al staan en begin niet opnieuw.",
		"Laatste deel van het antwoord tot nu toe:\n\"\"\"\n" + answerTail + "\n\"\"\"",
	}, "\n\n")
}
