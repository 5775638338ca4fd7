package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"

	"sportmetrics.nl/chat-service/internal/metrics"
	"sportmetrics.nl/chat-service/internal/utils"
)

// FinishReasonMaxTokens is the finish reason the model reports when it hit
// its output token limit.
const FinishReasonMaxTokens = "MAX_TOKENS"

const (
	DefaultPrimaryMaxTokens      = 2048
	DefaultContinuationMaxTokens = 900
	DefaultMaxContinuationPasses = 3
	DefaultMinIncompleteChars    = 120
	DefaultContinuationTailChars = 2200
)

// ErrEmptyAnswer means the model answered but produced no usable text.
var ErrEmptyAnswer = errors.New("model returned an empty answer")

// UpstreamError is a non-success response from the generation API.
type UpstreamError struct {
	Status int
	Detail string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("generation request failed with status %d: %s", e.Status, e.Detail)
}

// GenerationResult is the text of one generation call plus the model's
// finish reason.
type GenerationResult struct {
	Text         string
	FinishReason string
}

// Generator issues a single generation call.
type Generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int32) (GenerationResult, error)
}

// CompletenessCheck reports whether an answer looks finished.
type CompletenessCheck func(answer string) bool

var sentenceEndRe = regexp.MustCompile(`[.!?…]["'”’»)\]]*$`)

// EndsWithSentence treats an answer as complete when it ends in sentence
// punctuation, optionally followed by a closing quote or bracket. Answers
// that legitimately end in a list item or a bare number are reported as
// incomplete.
func EndsWithSentence(answer string) bool {
	return sentenceEndRe.MatchString(strings.TrimSpace(answer))
}

type CompletionConfig struct {
	PrimaryMaxTokens      int32
	ContinuationMaxTokens int32
	MaxContinuationPasses int
	MinIncompleteChars    int
	TailChars             int
}

// DefaultCompletionConfig returns the default token budgets and pass limit.
func DefaultCompletionConfig() CompletionConfig {
	return CompletionConfig{
		PrimaryMaxTokens:      DefaultPrimaryMaxTokens,
		ContinuationMaxTokens: DefaultContinuationMaxTokens,
		MaxContinuationPasses: DefaultMaxContinuationPasses,
		MinIncompleteChars:    DefaultMinIncompleteChars,
		TailChars:             DefaultContinuationTailChars,
	}
}

// AnswerDraft is the accumulated answer of one completion run.
type AnswerDraft struct {
	Text          string
	FinishReason  string
	Continuations int
}

// CompletionEngine runs a first generation pass and then up to
// MaxContinuationPasses continuation passes while the answer is truncated
// or looks incomplete.
type CompletionEngine struct {
	generator  Generator
	cfg        CompletionConfig
	isComplete CompletenessCheck
}

// NewCompletionEngine uses EndsWithSentence when check is nil.
func NewCompletionEngine(generator Generator, cfg CompletionConfig, check CompletenessCheck) *CompletionEngine {
	if check == nil {
		check = EndsWithSentence
	}
	if cfg.TailChars <= 0 {
		cfg.TailChars = DefaultContinuationTailChars
	}
	if cfg.MaxContinuationPasses < 0 {
		cfg.MaxContinuationPasses = 0
	}
	return &CompletionEngine{generator: generator, cfg: cfg, isComplete: check}
}

// Complete generates an answer for prompt. systemPrompt is restated in every
// continuation request. Transport failures abort the run; only incomplete
// answers are retried.
func (e *CompletionEngine) Complete(ctx context.Context, systemPrompt, prompt string) (AnswerDraft, error) {
	first, err := e.generator.Generate(ctx, prompt, e.cfg.PrimaryMaxTokens)
	if err != nil {
		return AnswerDraft{}, err
	}
	draft := AnswerDraft{Text: first.Text, FinishReason: first.FinishReason}

	for draft.Continuations < e.cfg.MaxContinuationPasses && e.needsContinuation(draft) {
		contPrompt := BuildContinuationPrompt(systemPrompt, utils.Tail(draft.Text, e.cfg.TailChars))
		next, err := e.generator.Generate(ctx, contPrompt, e.cfg.ContinuationMaxTokens)
		if err != nil {
			return AnswerDraft{}, fmt.Errorf("continuation pass %d: %w", draft.Continuations+1, err)
		}
		draft.Continuations++
		metrics.ContinuationPasses.Inc()

		if strings.TrimSpace(next.Text) == "" {
			log.Printf("Continuation pass %d returned no text, stopping", draft.Continuations)
			break
		}
		draft.Text += next.Text
		draft.FinishReason = next.FinishReason
	}

	if strings.TrimSpace(draft.Text) == "" {
		return draft, ErrEmptyAnswer
	}
	return draft, nil
}

func (e *CompletionEngine) needsContinuation(draft AnswerDraft) bool {
	answer := strings.TrimSpace(draft.Text)
	if answer == "" {
		return false
	}
	if draft.FinishReason == FinishReasonMaxTokens {
		return true
	}
	return utils.CharCount(answer) > e.cfg.MinIncompleteChars && !e.isComplete(answer)
}
