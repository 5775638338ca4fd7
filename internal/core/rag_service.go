package core

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"sportmetrics.nl/chat-service/internal/store"
	"sportmetrics.nl/chat-service/internal/utils"
)

const (
	DefaultLiteratureMaxChars = 16000

	segmentMinChars         = 80
	segmentClipChars        = 1200
	fingerprintChars        = 120
	maxContextSegments      = 12
	minSegmentsBeforeFilter = 5
	fallbackDocuments       = 3
)

var (
	// gasTopicRe matches breath-gas analysis and threshold vocabulary.
	gasTopicRe = regexp.MustCompile(`(?i)(ademgas|gasanalyse|gaswissel|spiroergo|drempel|threshold|ventilat|omslagpunt|\bvt ?[12]\b|\bvo2|\bvco2|\brer\b|\brcp\b|ve/vo2|ve/vco2|ademequivalent)`)

	paragraphSplitRe = regexp.MustCompile(`\n[ \t]*\n`)

	// Latin letters with diacritics count as token characters; × and ÷ do not.
	nonTokenRe = regexp.MustCompile(`[^a-z0-9\x{00C0}-\x{00D6}\x{00D8}-\x{00F6}\x{00F8}-\x{024F}\s]+`)

	stopWords = map[string]bool{
		"aan": true, "als": true, "bij": true, "dan": true, "dat": true, "deze": true,
		"die": true, "dit": true, "door": true, "een": true, "eens": true, "en": true,
		"geen": true, "heb": true, "hebben": true, "het": true, "hoe": true, "hun": true,
		"ik": true, "ook": true, "jij": true, "je": true, "jou": true, "jouw": true,
		"kan": true, "kun": true, "kunnen": true, "maar": true, "met": true, "mijn": true,
		"moet": true, "naar": true, "niet": true, "nog": true, "nu": true, "of": true,
		"om": true, "omdat": true, "onder": true, "ons": true, "over": true, "te": true,
		"tot": true, "uit": true, "van": true, "veel": true, "voor": true, "waar": true,
		"wat": true, "wel": true, "welke": true, "wie": true, "wij": true, "wordt": true,
		"worden": true, "zijn": true, "zal": true, "zo": true, "zou": true,
		"the": true, "and": true, "for": true, "with": true, "what": true, "how": true,
		"this": true, "that": true, "are": true, "is": true,
	}
)

// ScoredSegment is a paragraph-level slice of a knowledge document with its
// relevance score for one request.
type ScoredSegment struct {
	FileName   string
	Text       string
	Score      int
	IsReader   bool
	IsGasGuide bool
}

// QueryTerms is the analyzed form of question plus report text.
type QueryTerms struct {
	Tokens   []string
	GasTopic bool
}

// AnalyzeQuery tokenizes question and report text and flags the gas topic.
func AnalyzeQuery(question, reportText string) QueryTerms {
	combined := question + "\n" + reportText
	return QueryTerms{
		Tokens:   Tokenize(combined),
		GasTopic: gasTopicRe.MatchString(combined),
	}
}

// Tokenize lowercases text, keeps letters and digits and returns the distinct
// tokens longer than two characters that are not stop words.
func Tokenize(text string) []string {
	cleaned := nonTokenRe.ReplaceAllString(strings.ToLower(text), " ")
	seen := make(map[string]bool)
	var tokens []string
	for _, tok := range strings.Fields(cleaned) {
		if utils.CharCount(tok) <= 2 || stopWords[tok] || seen[tok] {
			continue
		}
		seen[tok] = true
		tokens = append(tokens, tok)
	}
	return tokens
}

// ScoringRule is one independent contribution to a segment's score.
// lower is the lowercased segment text.
type ScoringRule struct {
	Name  string
	Score func(seg ScoredSegment, lower string, q QueryTerms) int
}

// ScoringRules are summed by ScoreSegment, in order:
//
//  1. source-priority: 8 for a reader, 2 otherwise
//  2. gas-guide: 10 for a gas guide on a gas question, 2 for a gas guide otherwise
//  3. token-overlap: 3 per query token found in the segment
//  4. zone-keyword: 2 when the segment mentions "seiler" or "zone"
//  5. gas-segment: 6 when the question is about gas analysis and the segment is too
var ScoringRules = []ScoringRule{
	{Name: "source-priority", Score: sourcePriorityScore},
	{Name: "gas-guide", Score: gasGuideScore},
	{Name: "token-overlap", Score: tokenOverlapScore},
	{Name: "zone-keyword", Score: zoneKeywordScore},
	{Name: "gas-segment", Score: gasSegmentScore},
}

func sourcePriorityScore(seg ScoredSegment, _ string, _ QueryTerms) int {
	if seg.IsReader {
		return 8
	}
	return 2
}

func gasGuideScore(seg ScoredSegment, _ string, q QueryTerms) int {
	switch {
	case seg.IsGasGuide && q.GasTopic:
		return 10
	case seg.IsGasGuide:
		return 2
	default:
		return 0
	}
}

func tokenOverlapScore(_ ScoredSegment, lower string, q QueryTerms) int {
	score := 0
	for _, tok := range q.Tokens {
		if strings.Contains(lower, tok) {
			score += 3
		}
	}
	return score
}

func zoneKeywordScore(_ ScoredSegment, lower string, _ QueryTerms) int {
	if strings.Contains(lower, "seiler") || strings.Contains(lower, "zone") {
		return 2
	}
	return 0
}

func gasSegmentScore(seg ScoredSegment, _ string, q QueryTerms) int {
	if q.GasTopic && gasTopicRe.MatchString(seg.Text) {
		return 6
	}
	return 0
}

// ScoreSegment sums all ScoringRules for seg.
func ScoreSegment(seg ScoredSegment, q QueryTerms) int {
	lower := strings.ToLower(seg.Text)
	total := 0
	for _, rule := range ScoringRules {
		total += rule.Score(seg, lower, q)
	}
	return total
}

// SplitSegments returns the blank-line paragraphs of text longer than 80
// characters, or the single lines longer than 80 characters when no
// paragraph qualifies.
func SplitSegments(text string) []string {
	var segments []string
	for _, p := range paragraphSplitRe.Split(text, -1) {
		p = strings.TrimSpace(p)
		if utils.CharCount(p) > segmentMinChars {
			segments = append(segments, p)
		}
	}
	if len(segments) > 0 {
		return segments
	}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if utils.CharCount(line) > segmentMinChars {
			segments = append(segments, line)
		}
	}
	return segments
}

// RankSegments splits and scores every document and orders the segments by
// score, then reader first, then gas guide first on gas questions, then
// file name.
func RankSegments(docs []store.KnowledgeDocument, q QueryTerms) []ScoredSegment {
	var ranked []ScoredSegment
	for _, doc := range docs {
		for _, text := range SplitSegments(doc.Text) {
			seg := ScoredSegment{
				FileName:   doc.FileName,
				Text:       text,
				IsReader:   doc.IsReader,
				IsGasGuide: doc.IsGasGuide,
			}
			seg.Score = ScoreSegment(seg, q)
			ranked = append(ranked, seg)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.IsReader != b.IsReader {
			return a.IsReader
		}
		if q.GasTopic && a.IsGasGuide != b.IsGasGuide {
			return a.IsGasGuide
		}
		return a.FileName < b.FileName
	})
	return ranked
}

// SelectContext assembles the literature context for a question: the best
// ranked, de-duplicated segments, each labeled with its source file, bounded
// to maxChars.
func SelectContext(docs []store.KnowledgeDocument, question, reportText string, maxChars int) string {
	if len(docs) == 0 || maxChars <= 0 {
		return ""
	}

	q := AnalyzeQuery(question, reportText)
	seen := make(map[string]bool)
	var entries []string
	total := 0

	for _, seg := range RankSegments(docs, q) {
		if len(entries) >= maxContextSegments || total >= maxChars {
			break
		}
		if seg.Score <= 0 && len(entries) >= minSegmentsBeforeFilter {
			continue
		}
		clipped := utils.Clip(seg.Text, segmentClipChars)
		fingerprint := seg.FileName + "::" + utils.Clip(clipped, fingerprintChars)
		if seen[fingerprint] {
			continue
		}
		seen[fingerprint] = true

		entry := sourceEntry(seg.FileName, clipped)
		entries = append(entries, entry)
		total += utils.CharCount(entry) + 2
	}

	if len(entries) == 0 {
		for i, doc := range docs {
			if i >= fallbackDocuments {
				break
			}
			entries = append(entries, sourceEntry(doc.FileName, utils.Clip(doc.Text, segmentClipChars)))
		}
	}

	return utils.Sanitize(strings.Join(entries, "\n\n"), maxChars)
}

func sourceEntry(fileName, text string) string {
	return fmt.Sprintf("[Bron: %s]\n%s", fileName, text)
}
