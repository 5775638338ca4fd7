package core

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedGenerator returns its results in order and repeats the last one.
type scriptedGenerator struct {
	results []GenerationResult
	err     error
	prompts []string
	budgets []int32
}

func (g *scriptedGenerator) Generate(_ context.Context, prompt string, maxTokens int32) (GenerationResult, error) {
	g.prompts = append(g.prompts, prompt)
	g.budgets = append(g.budgets, maxTokens)
	if g.err != nil {
		return GenerationResult{}, g.err
	}
	i := len(g.prompts) - 1
	if i >= len(g.results) {
		i = len(g.results) - 1
	}
	return g.results[i], nil
}

func (g *scriptedGenerator) calls() int { return len(g.prompts) }

func TestEndsWithSentence(t *testing.T) {
	complete := []string{"Klaar.", "Echt?", "Wauw!", "Hij zei \"ja.\"", "(Zie zone 2.)", "Einde.  \n", "En dan…"}
	for _, s := range complete {
		assert.True(t, EndsWithSentence(s), s)
	}
	incomplete := []string{"Halverwege de", "- punt een", "VT1 ligt bij 210", ""}
	for _, s := range incomplete {
		assert.False(t, EndsWithSentence(s), s)
	}
}

func TestComplete_SinglePassWhenComplete(t *testing.T) {
	gen := &scriptedGenerator{results: []GenerationResult{{Text: "Je VT1 ligt bij 210 W.", FinishReason: "STOP"}}}
	engine := NewCompletionEngine(gen, DefaultCompletionConfig(), nil)

	draft, err := engine.Complete(context.Background(), "SYS", "PROMPT")
	require.NoError(t, err)
	assert.Equal(t, 1, gen.calls())
	assert.Equal(t, "Je VT1 ligt bij 210 W.", draft.Text)
	assert.Equal(t, 0, draft.Continuations)
	assert.Equal(t, []int32{DefaultPrimaryMaxTokens}, gen.budgets)
}

func TestComplete_TruncatedThenCompleted(t *testing.T) {
	gen := &scriptedGenerator{results: []GenerationResult{
		{Text: "Je VT1 ligt bij 210 W en", FinishReason: FinishReasonMaxTokens},
		{Text: " dat is een mooi aeroob niveau.", FinishReason: "STOP"},
	}}
	engine := NewCompletionEngine(gen, DefaultCompletionConfig(), nil)

	draft, err := engine.Complete(context.Background(), "SYS", "PROMPT")
	require.NoError(t, err)
	assert.Equal(t, 2, gen.calls())
	assert.Equal(t, "Je VT1 ligt bij 210 W en dat is een mooi aeroob niveau.", draft.Text)
	assert.Equal(t, 1, draft.Continuations)
	assert.Equal(t, "STOP", draft.FinishReason)

	assert.Equal(t, int32(DefaultContinuationMaxTokens), gen.budgets[1])
	assert.True(t, strings.HasPrefix(gen.prompts[1], "SYS"))
	assert.Contains(t, gen.prompts[1], "Je VT1 ligt bij 210 W en")
}

func TestComplete_PassLimitBoundsCalls(t *testing.T) {
	gen := &scriptedGenerator{results: []GenerationResult{{Text: "steeds maar door", FinishReason: FinishReasonMaxTokens}}}
	cfg := DefaultCompletionConfig()
	engine := NewCompletionEngine(gen, cfg, nil)

	draft, err := engine.Complete(context.Background(), "SYS", "PROMPT")
	require.NoError(t, err)
	assert.Equal(t, cfg.MaxContinuationPasses+1, gen.calls())
	assert.Equal(t, cfg.MaxContinuationPasses, draft.Continuations)
}

func TestComplete_IncompleteLongAnswerContinues(t *testing.T) {
	long := strings.Repeat("woord ", 40) + "en dan"
	gen := &scriptedGenerator{results: []GenerationResult{
		{Text: long, FinishReason: "STOP"},
		{Text: " klaar.", FinishReason: "STOP"},
	}}
	engine := NewCompletionEngine(gen, DefaultCompletionConfig(), nil)

	draft, err := engine.Complete(context.Background(), "SYS", "PROMPT")
	require.NoError(t, err)
	assert.Equal(t, 2, gen.calls())
	assert.True(t, strings.HasSuffix(draft.Text, "en dan klaar."))
}

func TestComplete_ShortIncompleteAnswerStops(t *testing.T) {
	gen := &scriptedGenerator{results: []GenerationResult{{Text: "Kort antwoord zonder punt", FinishReason: "STOP"}}}
	engine := NewCompletionEngine(gen, DefaultCompletionConfig(), nil)

	_, err := engine.Complete(context.Background(), "SYS", "PROMPT")
	require.NoError(t, err)
	assert.Equal(t, 1, gen.calls())
}

func TestComplete_EmptyContinuationStopsLoop(t *testing.T) {
	gen := &scriptedGenerator{results: []GenerationResult{
		{Text: "Begin van het antwoord", FinishReason: FinishReasonMaxTokens},
		{Text: "  ", FinishReason: FinishReasonMaxTokens},
	}}
	engine := NewCompletionEngine(gen, DefaultCompletionConfig(), nil)

	draft, err := engine.Complete(context.Background(), "SYS", "PROMPT")
	require.NoError(t, err)
	assert.Equal(t, 2, gen.calls())
	assert.Equal(t, "Begin van het antwoord", draft.Text)
}

func TestComplete_EmptyAnswer(t *testing.T) {
	gen := &scriptedGenerator{results: []GenerationResult{{Text: "", FinishReason: "SAFETY"}}}
	engine := NewCompletionEngine(gen, DefaultCompletionConfig(), nil)

	_, err := engine.Complete(context.Background(), "SYS", "PROMPT")
	assert.ErrorIs(t, err, ErrEmptyAnswer)
	assert.Equal(t, 1, gen.calls())
}

func TestComplete_GeneratorError(t *testing.T) {
	upstream := &UpstreamError{Status: 429, Detail: "quota"}
	gen := &scriptedGenerator{err: upstream}
	engine := NewCompletionEngine(gen, DefaultCompletionConfig(), nil)

	_, err := engine.Complete(context.Background(), "SYS", "PROMPT")
	var target *UpstreamError
	require.True(t, errors.As(err, &target))
	assert.Equal(t, 429, target.Status)
}

func TestComplete_CustomCompletenessCheck(t *testing.T) {
	long := strings.Repeat("x", 200) + "."
	gen := &scriptedGenerator{results: []GenerationResult{
		{Text: long, FinishReason: "STOP"},
		{Text: " extra.", FinishReason: "STOP"},
	}}
	calls := 0
	never := func(string) bool {
		calls++
		return calls > 1
	}
	engine := NewCompletionEngine(gen, DefaultCompletionConfig(), never)

	draft, err := engine.Complete(context.Background(), "SYS", "PROMPT")
	require.NoError(t, err)
	assert.Equal(t, 2, gen.calls())
	assert.Equal(t, long+" extra.", draft.Text)
}
