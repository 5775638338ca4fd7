package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"sportmetrics.nl/chat-service/internal/config"
	"sportmetrics.nl/chat-service/internal/core"
	"sportmetrics.nl/chat-service/internal/metrics"
	"sportmetrics.nl/chat-service/internal/utils"
)

const errorDetailChars = 400

// Answerer produces the final answer for a validated request.
type Answerer interface {
	Answer(ctx context.Context, req core.AnswerRequest) (string, error)
}

type APIHandler struct {
	answerer Answerer
	cfg      config.Config
}

func NewAPIHandler(answerer Answerer, cfg config.Config) *APIHandler {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = config.Defaults().MaxBodyBytes
	}
	return &APIHandler{answerer: answerer, cfg: cfg}
}

type ChatResponse struct {
	Answer string `json:"answer"`
}

type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// ChatHandler answers one question. Request body:
//
//	{"question": "...", "reportName": "...", "reportText": "...",
//	 "reportPdfBase64": "...", "history": [{"role": "user", "text": "..."}]}
func (h *APIHandler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed", "")
		return
	}

	if h.cfg.GeminiAPIKey == "" {
		writeError(w, http.StatusInternalServerError, "Missing GEMINI_API_KEY", "")
		return
	}

	body, err := decodeBody(http.MaxBytesReader(w, r.Body, h.cfg.MaxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", "")
		return
	}

	question := strings.TrimSpace(utils.SanitizeValue(body["question"], core.MaxQuestionChars))
	if question == "" {
		writeError(w, http.StatusBadRequest, "Question is required", "")
		return
	}

	req := core.AnswerRequest{
		Question:        question,
		ReportName:      stringField(body, "reportName"),
		ReportText:      stringField(body, "reportText"),
		ReportPDFBase64: stringField(body, "reportPdfBase64"),
		History:         core.SanitizeHistory(body["history"]),
	}

	answer, err := h.answerer.Answer(r.Context(), req)
	if err != nil {
		var upstream *core.UpstreamError
		switch {
		case errors.As(err, &upstream):
			log.Printf("Gemini request failed: %v", err)
			writeError(w, http.StatusBadGateway, "Gemini request failed", upstream.Detail)
		case errors.Is(err, core.ErrEmptyAnswer):
			log.Printf("Gemini returned no usable answer")
			writeError(w, http.StatusBadGateway, "No answer from Gemini", "")
		default:
			log.Printf("Error answering question: %v", err)
			writeError(w, http.StatusInternalServerError, "Internal server error", err.Error())
		}
		return
	}

	metrics.ChatRequests.WithLabelValues(strconv.Itoa(http.StatusOK)).Inc()
	writeJSON(w, http.StatusOK, ChatResponse{Answer: answer})
}

func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeBody accepts a JSON object, or a JSON string that itself holds the
// object. An empty body is an empty object; other JSON values carry no fields.
func decodeBody(r io.Reader) (map[string]any, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return map[string]any{}, nil
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	if s, ok := v.(string); ok {
		if strings.TrimSpace(s) == "" {
			return map[string]any{}, nil
		}
		if err := json.Unmarshal([]byte(s), &v); err != nil {
			return nil, err
		}
	}

	if obj, ok := v.(map[string]any); ok {
		return obj, nil
	}
	return map[string]any{}, nil
}

func stringField(body map[string]any, key string) string {
	s, _ := body[key].(string)
	return s
}

func writeError(w http.ResponseWriter, status int, msg, detail string) {
	metrics.ChatRequests.WithLabelValues(strconv.Itoa(status)).Inc()
	writeJSON(w, status, ErrorResponse{Error: msg, Detail: utils.Clip(detail, errorDetailChars)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error writing response: %v", err)
	}
}
