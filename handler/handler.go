package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"lexora-chat/internal/domain"
	"lexora-chat/internal/guardrail"
	"lexora-chat/internal/usecase"
)

const correlationHeader = "X-Correlation-Id"

// ChatUseCase is the single operation the handler fronts.
type ChatUseCase interface {
	Chat(ctx context.Context, in usecase.ChatInput) (usecase.ChatOutput, error)
}

type historyTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	UserMessage            string        `json:"userMessage"`
	DocumentText           string        `json:"documentText"`
	CaseID                 string        `json:"caseId"`
	DocumentID             string        `json:"documentId"`
	PraticaID              string        `json:"praticaId"`
	ChatHistory            []historyTurn `json:"chatHistory"`
	HistoryIncludesCurrent bool          `json:"historyIncludesCurrent"`
	IsUploadWithoutText    bool          `json:"isUploadWithoutText"`
	UserLanguage           string        `json:"userLanguage"`
	ConversationID         string        `json:"conversationId"`
}

type chatResponse struct {
	Reply                string `json:"reply"`
	ConversationID       string `json:"conversationId"`
	Language             string `json:"language"`
	InScope              bool   `json:"inScope"`
	Confirmed            bool   `json:"confirmed"`
	DocumentReady        bool   `json:"documentReady"`
	AwaitingConfirmation bool   `json:"awaitingConfirmation"`
	ConfirmationPrompt   string `json:"confirmationPrompt,omitempty"`
	Letter               string `json:"letter,omitempty"`
	Fallback             bool   `json:"fallback"`
}

type errorResponse struct {
	OK     bool   `json:"ok"`
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

type documentMissingResponse struct {
	OK                 bool   `json:"ok"`
	Error              string `json:"error"`
	Hint               string `json:"hint"`
	CaseID             string `json:"caseId,omitempty"`
	DocumentID         string `json:"documentId,omitempty"`
	PraticaID          string `json:"praticaId,omitempty"`
	DocumentTextLength int    `json:"documentTextLength"`
}

// Handler adapts API Gateway proxy events to the chat use case.
type Handler struct {
	uc     ChatUseCase
	logger *slog.Logger
}

type Option func(*Handler)

func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

func NewHandler(uc ChatUseCase, opts ...Option) (*Handler, error) {
	if uc == nil {
		return nil, errors.New("handler: use case must not be nil")
	}
	h := &Handler{uc: uc, logger: slog.Default()}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Handle never returns an error: every failure becomes a JSON response.
func (h *Handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	start := time.Now()
	correlationID := correlationIDFrom(event.Headers)
	log := h.logger.With("correlation_id", correlationID)

	resp, code, reason, err := h.handle(ctx, event)
	if err != nil && resp.StatusCode >= http.StatusInternalServerError {
		log.Error("chat request failed", "status", resp.StatusCode, "code", code, "reason", reason, "err", err)
	}
	log.Info("chat request completed",
		"status", resp.StatusCode,
		"code", code,
		"reason", reason,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.Headers == nil {
		resp.Headers = map[string]string{}
	}
	resp.Headers["Content-Type"] = "application/json"
	resp.Headers[correlationHeader] = correlationID
	return resp, nil
}

func (h *Handler) handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, string, string, error) {
	if event.HTTPMethod != "" && event.HTTPMethod != http.MethodPost {
		return jsonResponse(http.StatusMethodNotAllowed, errorResponse{
			Error:  string(usecase.ErrorInvalidInput),
			Reason: "method_not_allowed",
		}), string(usecase.ErrorInvalidInput), "method_not_allowed", nil
	}

	in, err := parseRequest(event)
	if err != nil {
		return jsonResponse(http.StatusBadRequest, errorResponse{
			Error:  string(usecase.ErrorInvalidInput),
			Reason: "invalid_body",
		}), string(usecase.ErrorInvalidInput), "invalid_body", err
	}

	out, err := h.uc.Chat(ctx, in)
	if err != nil {
		return errorToResponse(err)
	}

	return jsonResponse(http.StatusOK, chatResponse{
		Reply:                out.Reply,
		ConversationID:       out.ConversationID,
		Language:             string(out.Language),
		InScope:              out.InScope,
		Confirmed:            out.Confirmed,
		DocumentReady:        out.DocumentReady,
		AwaitingConfirmation: out.AwaitingConfirmation,
		ConfirmationPrompt:   out.ConfirmationPrompt,
		Letter:               out.Letter,
		Fallback:             out.Fallback,
	}), "", "", nil
}

// parseRequest decodes the body strictly: unknown fields, trailing data and
// history roles other than user and assistant are rejected.
func parseRequest(event events.APIGatewayProxyRequest) (usecase.ChatInput, error) {
	body := []byte(event.Body)
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(event.Body)
		if err != nil {
			return usecase.ChatInput{}, fmt.Errorf("handler: decode base64 body: %w", err)
		}
		body = decoded
	}

	var req chatRequest
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return usecase.ChatInput{}, fmt.Errorf("handler: decode body: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return usecase.ChatInput{}, errors.New("handler: decode body: trailing data")
	}

	var history []domain.ChatTurn
	if req.ChatHistory != nil {
		history = make([]domain.ChatTurn, 0, len(req.ChatHistory))
		for i, turn := range req.ChatHistory {
			role := domain.Role(strings.ToLower(strings.TrimSpace(turn.Role)))
			if !domain.IsHistoryRole(role) {
				return usecase.ChatInput{}, fmt.Errorf("handler: chatHistory[%d]: invalid role %q", i, turn.Role)
			}
			history = append(history, domain.ChatTurn{Role: role, Content: turn.Content})
		}
	}

	return usecase.ChatInput{
		UserMessage: req.UserMessage,
		Document: domain.DocumentContext{
			CaseID:       strings.TrimSpace(req.CaseID),
			DocumentID:   strings.TrimSpace(req.DocumentID),
			PraticaID:    strings.TrimSpace(req.PraticaID),
			DocumentText: req.DocumentText,
		},
		History:                history,
		HistoryIncludesCurrent: req.HistoryIncludesCurrent,
		UploadWithoutText:      req.IsUploadWithoutText,
		Language:               req.UserLanguage,
		ConversationID:         req.ConversationID,
		ClientIP:               event.RequestContext.Identity.SourceIP,
	}, nil
}

func errorToResponse(err error) (events.APIGatewayProxyResponse, string, string, error) {
	var missing *guardrail.MissingTextError
	if errors.As(err, &missing) {
		return jsonResponse(http.StatusBadRequest, documentMissingResponse{
			Error:              missing.Code(),
			Hint:               missing.Hint,
			CaseID:             missing.CaseID,
			DocumentID:         missing.DocumentID,
			PraticaID:          missing.PraticaID,
			DocumentTextLength: missing.DocumentTextLength,
		}), missing.Code(), "document_text_missing", err
	}

	var ucErr *usecase.Error
	if !errors.As(err, &ucErr) {
		return jsonResponse(http.StatusInternalServerError, errorResponse{
			Error: string(usecase.ErrorInternal),
		}), string(usecase.ErrorInternal), "", err
	}
	return jsonResponse(statusFor(ucErr.Code), errorResponse{
		Error:  string(ucErr.Code),
		Reason: ucErr.Reason,
	}), string(ucErr.Code), ucErr.Reason, err
}

func statusFor(code usecase.ErrorCode) int {
	switch code {
	case usecase.ErrorInvalidInput, usecase.ErrorInvalidQuestion, usecase.ErrorDocumentMissing:
		return http.StatusBadRequest
	case usecase.ErrorRateLimited:
		return http.StatusTooManyRequests
	case usecase.ErrorUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func jsonResponse(status int, v any) events.APIGatewayProxyResponse {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"ok":false,"error":"INTERNAL_ERROR"}`)
	}
	return events.APIGatewayProxyResponse{StatusCode: status, Body: string(body)}
}

func correlationIDFrom(headers map[string]string) string {
	for k, v := range headers {
		if strings.EqualFold(k, correlationHeader) && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return uuid.NewString()
}
