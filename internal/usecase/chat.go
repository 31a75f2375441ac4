package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"

	"lexora-chat/internal/domain"
	"lexora-chat/internal/gate"
	"lexora-chat/internal/guardrail"
	"lexora-chat/internal/lang"
	"lexora-chat/internal/prompt"
	"lexora-chat/internal/scope"
)

const (
	defaultMaxContext       = 20
	defaultMaxMessageLength = 4000
	defaultMaxTurns         = 30
	endpointChat            = "chat"
)

type ParamGetter interface {
	GetParameter(ctx context.Context, name string) (string, error)
	GetOptionalParameter(ctx context.Context, name string) (string, error)
}

type LLMClient interface {
	Chat(ctx context.Context, model string, messages []domain.ChatMessage) (string, error)
	Moderate(ctx context.Context, input string) (bool, error)
}

type StateReadWriter interface {
	GetConversationTurnCount(ctx context.Context, conversationID string) (int, error)
	GetHistory(ctx context.Context, conversationID string, limit int) ([]domain.ChatTurn, error)
	SaveExchange(ctx context.Context, ex domain.Exchange, turns int) error
}

// DocumentFetcher loads OCR text for a document context. "" means not found.
type DocumentFetcher interface {
	GetDocumentText(ctx context.Context, doc domain.DocumentContext) (string, error)
}

type RateLimiter interface {
	Allow(key string) bool
}

type httpStatusCoder interface {
	HTTPStatusCode() int
}

// Limits bounds a single chat turn. Zero values select the defaults.
type Limits struct {
	MaxContextItems      int
	MaxMessageLength     int
	MaxDocumentChars     int
	MaxTurnChars         int
	MaxConversationTurns int
}

func (l Limits) withDefaults() Limits {
	if l.MaxContextItems <= 0 {
		l.MaxContextItems = defaultMaxContext
	}
	if l.MaxMessageLength <= 0 {
		l.MaxMessageLength = defaultMaxMessageLength
	}
	if l.MaxDocumentChars <= 0 {
		l.MaxDocumentChars = prompt.DefaultMaxDocumentChars
	}
	if l.MaxTurnChars <= 0 {
		l.MaxTurnChars = prompt.DefaultMaxTurnChars
	}
	if l.MaxConversationTurns <= 0 {
		l.MaxConversationTurns = defaultMaxTurns
	}
	return l
}

type Option func(*ChatService)

// WithDocumentFetcher enables OCR text lookup for requests that carry
// identifiers but no text.
func WithDocumentFetcher(f DocumentFetcher) Option {
	return func(s *ChatService) {
		s.documents = f
	}
}

func WithRateLimiter(l RateLimiter) Option {
	return func(s *ChatService) {
		s.limiter = l
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *ChatService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// ChatService runs one document chat turn: scope gate, document guardrail,
// strict message assembly, the model call, output validation and the
// confirmation gate.
type ChatService struct {
	params      ParamGetter
	llm         LLMClient
	state       StateReadWriter
	documents   DocumentFetcher
	limiter     RateLimiter
	validator   *guardrail.OutputValidator
	logger      *slog.Logger
	paramPrefix string
	limits      Limits

	cacheMu      sync.RWMutex
	cacheLoaded  bool
	pinnedPrompt string
	openaiModel  string
}

type ChatInput struct {
	UserMessage string
	Document    domain.DocumentContext
	// History is the client-supplied history. nil means none was sent and
	// history is loaded from conversation state instead.
	History                []domain.ChatTurn
	HistoryIncludesCurrent bool
	UploadWithoutText      bool
	Language               string
	ConversationID         string
	// ClientIP is the caller's source address, used to rate limit requests
	// that carry neither a conversation nor a document id.
	ClientIP string
}

type ChatOutput struct {
	Reply                string
	ConversationID       string
	Language             lang.Code
	InScope              bool
	Confirmed            bool
	DocumentReady        bool
	AwaitingConfirmation bool
	ConfirmationPrompt   string
	Letter               string
	Fallback             bool
}

func NewChatService(p ParamGetter, llm LLMClient, s StateReadWriter, paramPrefix string, limits Limits, opts ...Option) (*ChatService, error) {
	if p == nil {
		return nil, errors.New("usecase: param getter must not be nil")
	}
	if llm == nil {
		return nil, errors.New("usecase: llm client must not be nil")
	}
	if s == nil {
		return nil, errors.New("usecase: state store must not be nil")
	}
	paramPrefix = strings.TrimRight(strings.TrimSpace(paramPrefix), "/")
	if paramPrefix == "" {
		return nil, errors.New("usecase: parameter prefix must not be empty")
	}
	svc := &ChatService{
		params:      p,
		llm:         llm,
		state:       s,
		logger:      slog.Default(),
		paramPrefix: paramPrefix,
		limits:      limits.withDefaults(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	svc.validator = guardrail.NewOutputValidator(svc.logger)
	return svc, nil
}

func (s *ChatService) Chat(ctx context.Context, in ChatInput) (ChatOutput, error) {
	message := strings.TrimSpace(in.UserMessage)
	if message == "" {
		return ChatOutput{}, newError(ErrorInvalidInput, "empty_message", nil)
	}
	if utf8.RuneCountInString(message) > s.limits.MaxMessageLength {
		return ChatOutput{}, newError(ErrorInvalidInput, "message_too_long", nil)
	}

	language := lang.Normalize(in.Language)
	convID := strings.TrimSpace(in.ConversationID)
	existing := convID != ""
	if !existing {
		convID = newUUID()
	}
	out := ChatOutput{ConversationID: convID, Language: language}

	if s.limiter != nil && !s.limiter.Allow(rateKey(in, existing)) {
		return ChatOutput{}, newError(ErrorRateLimited, "chat_rate_limited", nil)
	}

	verdict := scope.Check(message)
	if !verdict.InScope {
		s.logger.Info("message out of scope",
			"conversation_id", convID,
			"reason", verdict.Reason,
			"confidence", string(verdict.Confidence),
		)
		out.Reply = scope.RefusalMessage(language)
		return out, nil
	}
	out.InScope = true

	doc, err := s.resolveDocument(ctx, in)
	if err != nil {
		return ChatOutput{}, newError(ErrorInternal, "document_lookup_error", err)
	}
	if err := guardrail.RequireDocumentText(doc, in.UploadWithoutText); err != nil {
		var missing *guardrail.MissingTextError
		if errors.As(err, &missing) {
			s.logger.Warn("document text missing",
				"code", missing.Code(),
				"case_id", missing.CaseID,
				"document_id", missing.DocumentID,
				"pratica_id", missing.PraticaID,
				"document_text_length", missing.DocumentTextLength,
				"upload_without_text", missing.UploadWithoutText,
				"hint", missing.Hint,
			)
		}
		return ChatOutput{}, newError(ErrorDocumentMissing, "document_text_missing", err)
	}

	if err := s.ensureConfig(ctx); err != nil {
		return ChatOutput{}, newError(ErrorInternal, "ssm_load_error", err)
	}

	existingTurns := 0
	if existing {
		turnCount, err := s.state.GetConversationTurnCount(ctx, convID)
		if err != nil {
			return ChatOutput{}, newError(ErrorInternal, "dynamodb_turn_count_error", err)
		}
		existingTurns = turnCount
		if existingTurns >= s.limits.MaxConversationTurns {
			return ChatOutput{}, newError(ErrorInvalidInput, "conversation_turn_limit", nil)
		}
	}

	flagged, err := s.llm.Moderate(ctx, message)
	if err != nil {
		if status, ok := upstreamStatusCode(err); ok && status == 429 {
			return ChatOutput{}, newError(ErrorRateLimited, "moderation_rate_limited", err)
		}
		return ChatOutput{}, newError(ErrorUpstream, "moderation_error", err)
	}
	if flagged {
		return ChatOutput{}, newError(ErrorInvalidQuestion, "moderation_flagged", nil)
	}

	history, currentInHistory, err := s.loadHistory(ctx, in, message, convID, existing)
	if err != nil {
		return ChatOutput{}, newError(ErrorInternal, "dynamodb_history_error", err)
	}

	out.Confirmed = gate.HasUserConfirmed(message)
	rules := buildSystemRules(ruleContext{
		pinnedPrompt: s.pinnedPrompt,
		language:     language,
		hasDocument:  doc.HasText(),
		confirmed:    out.Confirmed,
	})
	messages := prompt.Build(rules, doc.DocumentText, history, message, prompt.Options{
		MaxDocumentChars: s.limits.MaxDocumentChars,
		MaxTurnChars:     s.limits.MaxTurnChars,
		CurrentInHistory: currentInHistory,
	})

	raw, err := s.llm.Chat(ctx, s.openaiModel, messages)
	if err != nil {
		if status, ok := upstreamStatusCode(err); ok && status == 429 {
			return ChatOutput{}, newError(ErrorRateLimited, "openai_rate_limited", err)
		}
		return ChatOutput{}, newError(ErrorUpstream, "openai_error", err)
	}
	reply := strings.TrimSpace(raw)
	if reply == "" {
		return ChatOutput{}, newError(ErrorUpstream, "openai_empty_response", nil)
	}

	documentTextLength := utf8.RuneCountInString(strings.TrimSpace(doc.DocumentText))
	checked := s.validator.Validate(guardrail.ViolationContext{
		Endpoint:   endpointChat,
		CaseID:     doc.CaseID,
		DocumentID: doc.DocumentID,
	}, documentTextLength, reply)
	out.Reply = checked.Response
	out.Fallback = !checked.OK

	if checked.OK && gate.LooksLikeGeneratedDocument(reply) {
		out.DocumentReady = true
		letter := gate.ExtractLetter(reply)
		if out.Confirmed {
			out.Letter = letter
		} else {
			out.AwaitingConfirmation = true
			out.ConfirmationPrompt = gate.BuildSummaryBlock(gate.ExtractSummary(letter), language)
		}
	}

	status := domain.StatusComplete
	if out.Fallback {
		status = domain.StatusFallback
	}
	if err := s.state.SaveExchange(ctx, domain.Exchange{
		ConversationID: convID,
		CaseID:         strings.TrimSpace(doc.CaseID),
		Language:       string(language),
		UserMessage:    message,
		Reply:          out.Reply,
		Status:         status,
	}, existingTurns+1); err != nil {
		return ChatOutput{}, newError(ErrorInternal, "dynamodb_write_error", err)
	}

	return out, nil
}

// resolveDocument fills in OCR text from the document store when the request
// names a document but carries no text.
func (s *ChatService) resolveDocument(ctx context.Context, in ChatInput) (domain.DocumentContext, error) {
	doc := in.Document
	if s.documents == nil || in.UploadWithoutText || doc.HasText() || !doc.HasIdentifier() {
		return doc, nil
	}
	text, err := s.documents.GetDocumentText(ctx, doc)
	if err != nil {
		return domain.DocumentContext{}, err
	}
	doc.DocumentText = text
	return doc, nil
}

// loadHistory prefers client-supplied history and falls back to stored
// history for known conversations. The bool reports whether the last turn is
// already the current message. The client flag is only honored when that turn
// is a user turn carrying exactly message, so the model sees the text that
// was gated.
func (s *ChatService) loadHistory(ctx context.Context, in ChatInput, message, convID string, existing bool) ([]domain.ChatTurn, bool, error) {
	if in.History != nil {
		history := in.History
		if len(history) > s.limits.MaxContextItems {
			history = history[len(history)-s.limits.MaxContextItems:]
		}
		return history, in.HistoryIncludesCurrent && lastTurnIs(history, message), nil
	}
	if !existing {
		return nil, false, nil
	}
	history, err := s.state.GetHistory(ctx, convID, s.limits.MaxContextItems)
	if err != nil {
		return nil, false, err
	}
	return history, false, nil
}

func lastTurnIs(history []domain.ChatTurn, message string) bool {
	if len(history) == 0 {
		return false
	}
	last := history[len(history)-1]
	return last.Role == domain.RoleUser && strings.TrimSpace(last.Content) == message
}

func (s *ChatService) ensureConfig(ctx context.Context) error {
	s.cacheMu.RLock()
	if s.cacheLoaded {
		s.cacheMu.RUnlock()
		return nil
	}
	s.cacheMu.RUnlock()

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	if s.cacheLoaded {
		return nil
	}

	pinnedPrompt, openaiModel, err := s.loadSSMParams(ctx)
	if err != nil {
		return err
	}

	s.pinnedPrompt = pinnedPrompt
	s.openaiModel = openaiModel
	s.cacheLoaded = true
	return nil
}

func (s *ChatService) loadSSMParams(ctx context.Context) (pinnedPrompt, openaiModel string, err error) {
	pinnedPrompt, err = s.params.GetOptionalParameter(ctx, s.paramPrefix+"/pinned_prompt")
	if err != nil {
		return "", "", fmt.Errorf("usecase: load pinned prompt: %w", err)
	}
	openaiModel, err = s.params.GetParameter(ctx, s.paramPrefix+"/config/openai_model")
	if err != nil {
		return "", "", fmt.Errorf("usecase: load openai model: %w", err)
	}
	openaiModel = strings.TrimSpace(openaiModel)
	if openaiModel == "" {
		return "", "", errors.New("usecase: openai model parameter is empty")
	}
	return pinnedPrompt, openaiModel, nil
}

// rateKey buckets known conversations by id, new ones by the document they
// are about, and anything else by client address. A request with none of
// these is not limited.
func rateKey(in ChatInput, existing bool) string {
	if existing {
		return "conv:" + strings.TrimSpace(in.ConversationID)
	}
	for _, id := range []string{in.Document.CaseID, in.Document.DocumentID, in.Document.PraticaID} {
		if id = strings.TrimSpace(id); id != "" {
			return "doc:" + id
		}
	}
	if ip := strings.TrimSpace(in.ClientIP); ip != "" {
		return "ip:" + ip
	}
	return ""
}

func upstreamStatusCode(err error) (int, bool) {
	var statusErr httpStatusCoder
	if !errors.As(err, &statusErr) {
		return 0, false
	}
	return statusErr.HTTPStatusCode(), true
}

var newUUID = func() string {
	return uuid.NewString()
}
