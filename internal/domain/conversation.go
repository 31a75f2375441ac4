package domain

// Exchange statuses. Only complete exchanges are replayed as history; a
// fallback exchange carries the safe fallback reply.
const (
	StatusComplete = "complete"
	StatusFallback = "fallback"
)

// Exchange is a single persisted conversation turn: the user message and the
// reply that was returned for it.
type Exchange struct {
	PK             string
	SK             string
	ConversationID string
	CaseID         string
	Language       string
	UserMessage    string
	Reply          string
	Status         string
	TTL            int64
}

// ConversationMeta stores aggregate conversation state.
type ConversationMeta struct {
	PK             string
	SK             string
	ConversationID string
	CaseID         string
	LastActivity   string
	Turns          int
	TTL            int64
}
