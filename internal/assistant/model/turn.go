package model

import "github.com/cloudwego/eino/schema"

// Outcome says which step of the turn produced the reply.
type Outcome string

const (
	OutcomeResolved  Outcome = "resolved"
	OutcomeConfirm   Outcome = "confirm"
	OutcomeBooked    Outcome = "booked"
	OutcomeGenerated Outcome = "generated"
)

// TurnInput is everything the engine needs for one turn. Messages holds the
// user and assistant turns so far, the newest user utterance last. A nil
// State starts a fresh session.
type TurnInput struct {
	Messages  []*schema.Message
	State     *ConversationState
	Confirmed bool
}

// TurnResult is the engine's answer for one turn. Booking is only set on the
// turn that finalizes an appointment.
type TurnResult struct {
	Reply                string
	State                *ConversationState
	Booking              *BookingRecord
	AwaitingConfirmation bool
	Outcome              Outcome
	Usage                Usage
}

// Usage accumulates language model consumption for a turn.
type Usage struct {
	PromptTokens   int     `json:"prompt_tokens"`
	ResponseTokens int     `json:"response_tokens"`
	CostUSD        float64 `json:"cost_usd"`
}

// Add folds g into u.
func (u *Usage) Add(g Generation) {
	u.PromptTokens += g.PromptTokens
	u.ResponseTokens += g.ResponseTokens
	u.CostUSD += g.CostUSD
}

// Generation is the result of one gateway call. Failed is set when Text is a
// canned apology rather than model output.
type Generation struct {
	Text           string
	PromptTokens   int
	ResponseTokens int
	CostUSD        float64
	Failed         bool
}
