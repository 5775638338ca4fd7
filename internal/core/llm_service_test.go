package core

import (
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
)

func TestFinishReasonName(t *testing.T) {
	assert.Equal(t, "STOP", finishReasonName(genai.FinishReasonStop))
	assert.Equal(t, FinishReasonMaxTokens, finishReasonName(genai.FinishReasonMaxTokens))
	assert.Equal(t, "SAFETY", finishReasonName(genai.FinishReasonSafety))
	assert.Equal(t, "FINISH_REASON_UNSPECIFIED", finishReasonName(genai.FinishReasonUnspecified))
}

func TestClassifyGeminiError_Transport(t *testing.T) {
	err := classifyGeminiError(errors.New("dial tcp: timeout"))
	var upstream *UpstreamError
	assert.False(t, errors.As(err, &upstream))
	assert.Contains(t, err.Error(), "dial tcp")
}
