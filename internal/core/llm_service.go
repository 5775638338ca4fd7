package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/api/option"
	"sportmetrics.nl/chat-service/internal/utils"
)

const (
	DefaultModelName = "gemini-2.0-flash"

	generationTemperature = 0.3
	generationTopP        = 0.9

	upstreamDetailChars = 400
)

// GeminiService implements Generator on the Gemini API.
type GeminiService struct {
	client    *genai.Client
	modelName string
}

func NewGeminiService(ctx context.Context, apiKey, modelName string) (*GeminiService, error) {
	if modelName == "" {
		modelName = DefaultModelName
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiService{client: client, modelName: modelName}, nil
}

func (s *GeminiService) Close() {
	if s.client != nil {
		if err := s.client.Close(); err != nil {
			log.Printf("Error closing GenAI client: %v", err)
		} else {
			log.Println("GenAI client closed.")
		}
	}
}

// Generate sends prompt as a single user message.
func (s *GeminiService) Generate(ctx context.Context, prompt string, maxTokens int32) (GenerationResult, error) {
	model := s.client.GenerativeModel(s.modelName)
	model.SetTemperature(generationTemperature)
	model.SetTopP(generationTopP)
	model.SetMaxOutputTokens(maxTokens)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		var blocked *genai.BlockedError
		if errors.As(err, &blocked) {
			// Blocked output counts as an empty answer, not a transport failure.
			log.Printf("Gemini response blocked: %v", err)
			return GenerationResult{FinishReason: "SAFETY"}, nil
		}
		return GenerationResult{}, classifyGeminiError(err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return GenerationResult{}, nil
	}

	candidate := resp.Candidates[0]
	var texts []string
	for _, part := range candidate.Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			texts = append(texts, string(txt))
		} else {
			log.Printf("Gemini response part was not text: %T", part)
		}
	}

	return GenerationResult{
		Text:         strings.Join(texts, "\n"),
		FinishReason: finishReasonName(candidate.FinishReason),
	}, nil
}

func classifyGeminiError(err error) error {
	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		return &UpstreamError{
			Status: apiErr.HTTPCode(),
			Detail: utils.Clip(apiErr.Error(), upstreamDetailChars),
		}
	}
	return fmt.Errorf("gemini request failed: %w", err)
}

func finishReasonName(reason genai.FinishReason) string {
	switch reason {
	case genai.FinishReasonStop:
		return "STOP"
	case genai.FinishReasonMaxTokens:
		return FinishReasonMaxTokens
	case genai.FinishReasonSafety:
		return "SAFETY"
	case genai.FinishReasonRecitation:
		return "RECITATION"
	case genai.FinishReasonOther:
		return "OTHER"
	default:
		return "FINISH_REASON_UNSPECIFIED"
	}
}
