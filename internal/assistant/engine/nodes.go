package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/vira-assistant/server/internal/assistant/extract"
	"github.com/vira-assistant/server/internal/assistant/model"
	"github.com/vira-assistant/server/internal/assistant/prompts"
	"github.com/vira-assistant/server/internal/assistant/slots"
	logx "github.com/vira-assistant/server/pkg/logger"
)

const (
	NodePrepare  = "prepare"
	NodeResolve  = "resolve_employee"
	NodeExtract  = "extract_slots"
	NodeConfirm  = "confirm"
	NodeBook     = "book"
	NodeGenerate = "generate"
	NodeFinish   = "finish"
)

// turn is the value passed between nodes of one invocation.
type turn struct {
	confirmed    bool
	state        *model.ConversationState
	utterance    string
	conversation []*schema.Message
	result       *model.TurnResult
	// generation is the gateway call made by the last node, if any.
	generation *model.Generation
}

// turnState is graph local state. Only state handlers and
// compose.ProcessState touch it.
type turnState struct {
	usage model.Usage
}

func (e *Engine) newPrepareNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, in model.TurnInput) (*turn, error) {
		state := in.State.Clone()
		if state == nil {
			state = model.NewConversationState(e.clock())
		}

		framing, err := prompts.RenderSystem(ctx, e.assistant)
		if err != nil {
			return nil, err
		}

		conversation := make([]*schema.Message, 0, len(in.Messages)+1)
		conversation = append(conversation, schema.SystemMessage(framing))
		utterance := ""
		for _, m := range in.Messages {
			if m == nil || m.Role == schema.System {
				continue
			}
			conversation = append(conversation, m)
			if m.Role == schema.User {
				utterance = m.Content
			}
		}

		return &turn{
			confirmed:    in.Confirmed,
			state:        state,
			utterance:    utterance,
			conversation: conversation,
		}, nil
	})
}

func (e *Engine) newResolveNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, t *turn) (*turn, error) {
		if slots.IsFilled(t.state.EmployeeName) || strings.TrimSpace(t.utterance) == "" {
			return t, nil
		}
		res, ok := e.resolver.Resolve(ctx, t.conversation, t.utterance)
		if !ok {
			return t, nil
		}
		t.generation = &res.Generation
		t.state.SetEmployee(res.EmployeeName, res.Department)
		t.result = &model.TurnResult{
			Reply:   prompts.DynamicPrompt(t.state),
			Outcome: model.OutcomeResolved,
		}
		return t, nil
	})
}

func newResolvedCondition() func(context.Context, *turn) (string, error) {
	return func(_ context.Context, t *turn) (string, error) {
		if t.result != nil {
			return NodeFinish, nil
		}
		return NodeExtract, nil
	}
}

func (e *Engine) newExtractNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, t *turn) (*turn, error) {
		if t.utterance != "" {
			extract.Apply(t.state, e.extractor.Extract(t.utterance))
		}
		return t, nil
	})
}

// newDecisionCondition picks between confirming, booking and free-form
// generation. A confirmed turn books even if the caller confirmed early.
func newDecisionCondition() func(context.Context, *turn) (string, error) {
	return func(_ context.Context, t *turn) (string, error) {
		switch {
		case slots.AllRequiredFilled(t.state) && !t.confirmed:
			return NodeConfirm, nil
		case t.confirmed:
			return NodeBook, nil
		default:
			return NodeGenerate, nil
		}
	}
}

func newConfirmNode() *compose.Lambda {
	return compose.InvokableLambda(func(_ context.Context, t *turn) (*turn, error) {
		t.result = &model.TurnResult{
			Reply:                prompts.ConfirmationPrompt(t.state),
			AwaitingConfirmation: true,
			Outcome:              model.OutcomeConfirm,
		}
		return t, nil
	})
}

func (e *Engine) newBookNode() *compose.Lambda {
	return compose.InvokableLambda(func(_ context.Context, t *turn) (*turn, error) {
		now := e.clock()
		booking := model.NewBookingRecord(e.newID(), t.state, now)
		if !slots.AllRequiredFilled(t.state) {
			logx.Warn().Str("booking_id", booking.ID).Msg("booking confirmed with missing fields")
		}
		t.state = model.NewConversationState(now)
		t.result = &model.TurnResult{
			Reply:   prompts.BookedReply,
			Booking: booking,
			Outcome: model.OutcomeBooked,
		}
		return t, nil
	})
}

func (e *Engine) newGenerateNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, t *turn) (*turn, error) {
		gen := e.gateway.Generate(ctx, t.conversation)
		t.generation = &gen
		t.result = &model.TurnResult{
			Reply:   gen.Text,
			Outcome: model.OutcomeGenerated,
		}
		return t, nil
	})
}

// newUsagePostHandler moves a node's gateway usage into local state.
func newUsagePostHandler() func(context.Context, *turn, *turnState) (*turn, error) {
	return func(_ context.Context, t *turn, s *turnState) (*turn, error) {
		if t != nil && t.generation != nil {
			s.usage.Add(*t.generation)
			t.generation = nil
		}
		return t, nil
	}
}

func (e *Engine) newFinishNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, t *turn) (*model.TurnResult, error) {
		if t.result == nil {
			return nil, fmt.Errorf("turn finished without a reply")
		}
		res := t.result
		res.State = t.state

		err := compose.ProcessState(ctx, func(_ context.Context, s *turnState) error {
			res.Usage = s.usage
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}

		e.metrics.Turn(string(res.Outcome))
		logx.Debug().
			Str("outcome", string(res.Outcome)).
			Bool("awaiting_confirmation", res.AwaitingConfirmation).
			Int("missing", len(slots.Missing(res.State))).
			Int("prompt_tokens", res.Usage.PromptTokens).
			Int("completion_tokens", res.Usage.ResponseTokens).
			Msg("turn complete")
		return res, nil
	})
}
