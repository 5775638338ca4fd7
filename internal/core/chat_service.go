package core

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"sportmetrics.nl/chat-service/internal/store"
	"sportmetrics.nl/chat-service/internal/utils"
)

const (
	maxHistoryTurns     = 6
	maxHistoryTurnChars = 1200
	maxReportNameChars  = 200
)

// MaxQuestionChars bounds the question text taken from a request.
const MaxQuestionChars = 4000

// DocumentProvider yields the current knowledge document set.
type DocumentProvider interface {
	GetDocuments(ctx context.Context) ([]store.KnowledgeDocument, error)
}

// AnswerRequest is a validated chat request.
type AnswerRequest struct {
	Question        string
	ReportName      string
	ReportText      string
	ReportPDFBase64 string
	History         []ConversationTurn
}

// Limits bounds the request material put into the prompt.
type Limits struct {
	ReportMaxChars     int
	LiteratureMaxChars int
}

// ChatService answers one question: it gathers knowledge and report
// context, runs the completion engine and finalizes the answer.
type ChatService struct {
	knowledge DocumentProvider
	engine    *CompletionEngine
	limits    Limits
}

func NewChatService(knowledge DocumentProvider, engine *CompletionEngine, limits Limits) *ChatService {
	if limits.ReportMaxChars <= 0 {
		limits.ReportMaxChars = DefaultReportMaxChars
	}
	if limits.LiteratureMaxChars <= 0 {
		limits.LiteratureMaxChars = DefaultLiteratureMaxChars
	}
	return &ChatService{knowledge: knowledge, engine: engine, limits: limits}
}

// Answer returns the finalized answer. Knowledge and report problems are
// logged and treated as missing context; generation errors are returned.
func (s *ChatService) Answer(ctx context.Context, req AnswerRequest) (string, error) {
	runID := uuid.NewString()

	docs, err := s.knowledge.GetDocuments(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		log.Printf("[%s] Knowledge documents unavailable, proceeding without literature: %v", runID, err)
		docs = nil
	}

	question := utils.Sanitize(req.Question, MaxQuestionChars)
	reportName := utils.Sanitize(req.ReportName, maxReportNameChars)
	reportText := DeriveReportText(req.ReportText, req.ReportPDFBase64, s.limits.ReportMaxChars)
	highlights := ExtractHighlights(reportText)
	literature := SelectContext(docs, question, reportText, s.limits.LiteratureMaxChars)

	systemPrompt := BuildSystemPrompt(PromptInput{
		HasReport:     reportText != "",
		ReportName:    reportName,
		HasLiterature: literature != "",
	})
	prompt := BuildPrompt(systemPrompt, PromptParts{
		Question:   question,
		History:    req.History,
		ReportName: reportName,
		ReportText: reportText,
		Highlights: highlights,
		Literature: literature,
	})

	log.Printf("[%s] Generating answer: %d documents, literature %d chars, report %d chars, %d history turns",
		runID, len(docs), utils.CharCount(literature), utils.CharCount(reportText), len(req.History))

	draft, err := s.engine.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate answer: %w", err)
	}
	if draft.Continuations > 0 {
		log.Printf("[%s] Answer completed after %d continuation passes (finish reason %s)", runID, draft.Continuations, draft.FinishReason)
	}

	return Finalize(draft.Text), nil
}

// SanitizeHistory keeps the last six turns that carry text, caps each turn
// and normalizes the role to "Assistent" or "Gebruiker".
func SanitizeHistory(raw any) []ConversationTurn {
	items, ok := raw.([]any)
	if !ok {
		return nil
	}

	var turns []ConversationTurn
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		text, ok := entry["text"].(string)
		if !ok {
			continue
		}
		role := "Gebruiker"
		if r, _ := entry["role"].(string); r == "assistant" {
			role = "Assistent"
		}
		turns = append(turns, ConversationTurn{Role: role, Text: text})
	}

	if len(turns) > maxHistoryTurns {
		turns = turns[len(turns)-maxHistoryTurns:]
	}
	for i := range turns {
		turns[i].Text = utils.Sanitize(turns[i].Text, maxHistoryTurnChars)
	}
	return turns
}
