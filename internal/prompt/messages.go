// Package prompt assembles the ordered message list sent to the LLM.
package prompt

import (
	"strings"

	"lexora-chat/internal/domain"
	"lexora-chat/internal/lang"
)

const (
	// DocumentLabel prefixes the dedicated document system message.
	DocumentLabel = "DOCUMENT_TEXT (authoritative):"
	// TruncationMarker is appended to cut document text.
	TruncationMarker = "...[truncated]"

	DefaultMaxDocumentChars = 12000
	DefaultMaxTurnChars     = 4000
)

// Options tunes Build. Zero values select the defaults.
type Options struct {
	// MaxDocumentChars caps the document text in runes.
	MaxDocumentChars int
	// MaxTurnChars caps each history turn and the current message in runes.
	MaxTurnChars int
	// CurrentInHistory is set when the last history turn already is the
	// current user message.
	CurrentInHistory bool
}

func (o Options) withDefaults() Options {
	if o.MaxDocumentChars <= 0 {
		o.MaxDocumentChars = DefaultMaxDocumentChars
	}
	if o.MaxTurnChars <= 0 {
		o.MaxTurnChars = DefaultMaxTurnChars
	}
	return o
}

// Build returns, in this order: the system rules, the document block when
// documentText is not blank, the history turns, and the current user message
// unless opts.CurrentInHistory is set. The returned slice is freshly allocated.
func Build(systemRules, documentText string, history []domain.ChatTurn, userMessage string, opts Options) []domain.ChatMessage {
	opts = opts.withDefaults()

	messages := make([]domain.ChatMessage, 0, len(history)+3)
	messages = append(messages, domain.ChatMessage{Role: domain.RoleSystem, Content: systemRules})

	if doc := strings.TrimSpace(documentText); doc != "" {
		messages = append(messages, domain.ChatMessage{
			Role:    domain.RoleSystem,
			Content: DocumentLabel + "\n" + DocumentBody(doc, opts.MaxDocumentChars),
		})
	}

	for _, turn := range history {
		if !domain.IsHistoryRole(turn.Role) {
			continue
		}
		content := strings.TrimSpace(turn.Content)
		if content == "" {
			continue
		}
		content, _ = lang.Truncate(content, opts.MaxTurnChars)
		messages = append(messages, domain.ChatMessage{Role: turn.Role, Content: content})
	}

	if !opts.CurrentInHistory {
		if current := strings.TrimSpace(userMessage); current != "" {
			current, _ = lang.Truncate(current, opts.MaxTurnChars)
			messages = append(messages, domain.ChatMessage{Role: domain.RoleUser, Content: current})
		}
	}
	return messages
}

// DocumentBody returns text cut to maxChars runes, with TruncationMarker
// appended when something was cut.
func DocumentBody(text string, maxChars int) string {
	body, cut := lang.Truncate(text, maxChars)
	if cut {
		return body + TruncationMarker
	}
	return body
}
