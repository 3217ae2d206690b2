package model

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

// SimilarityIndex returns up to k directory matches for text, best first.
// An empty result is valid.
type SimilarityIndex interface {
	Query(ctx context.Context, text string, k int) ([]Candidate, error)
}

// Gateway generates a reply for a conversation. It never fails; problems are
// reported through Generation.Failed.
type Gateway interface {
	Generate(ctx context.Context, messages []*schema.Message) Generation
}

// BookingSink receives finalized bookings. No acknowledgement is expected
// and nothing is retried.
type BookingSink interface {
	Handoff(ctx context.Context, booking *BookingRecord) error
}

// Session is what a caller keeps between turns.
type Session struct {
	ID                   string             `json:"id"`
	State                *ConversationState `json:"state"`
	AwaitingConfirmation bool               `json:"awaiting_confirmation"`
	Messages             []*schema.Message  `json:"-"`
}

type SessionRepository interface {
	// Load returns the stored session, or errx.ErrSessionNotFound. History
	// left behind without state is discarded.
	Load(ctx context.Context, sessionID string) (*Session, error)

	// Save persists state and the confirmation flag (not messages).
	Save(ctx context.Context, session *Session) error

	// AppendMessages adds messages to the session history.
	AppendMessages(ctx context.Context, sessionID string, messages ...*schema.Message) error

	// ClearMessages removes the history and keeps the state.
	ClearMessages(ctx context.Context, sessionID string) error

	// Clear removes state and history.
	Clear(ctx context.Context, sessionID string) error
}
