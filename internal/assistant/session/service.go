// Package session drives the booking engine for a stored conversation.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/vira-assistant/server/internal/assistant/metrics"
	"github.com/vira-assistant/server/internal/assistant/model"
	"github.com/vira-assistant/server/internal/assistant/slots"
	errx "github.com/vira-assistant/server/internal/core/error"
	logx "github.com/vira-assistant/server/pkg/logger"
)

// Runner executes one dialogue turn.
type Runner interface {
	Run(ctx context.Context, in model.TurnInput) (*model.TurnResult, error)
}

type Config struct {
	// TurnTimeout bounds a whole turn including model calls; 0 means no limit.
	TurnTimeout time.Duration
	Metrics     *metrics.Recorder
	Clock       func() time.Time
}

// Reply is what the visitor sees after a turn.
type Reply struct {
	SessionID            string
	Text                 string
	AwaitingConfirmation bool
	Booking              *model.BookingRecord
	// HandoffErr is set when the booking was made but could not be handed off.
	HandoffErr error
	Usage      model.Usage
}

type Service struct {
	engine      Runner
	repo        model.SessionRepository
	sink        model.BookingSink
	metrics     *metrics.Recorder
	turnTimeout time.Duration
	clock       func() time.Time
	locks       keyedMutex
}

func NewService(engine Runner, repo model.SessionRepository, sink model.BookingSink, cfg Config) *Service {
	s := &Service{
		engine:      engine,
		repo:        repo,
		sink:        sink,
		metrics:     cfg.Metrics,
		turnTimeout: cfg.TurnTimeout,
		clock:       cfg.Clock,
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	return s
}

// Chat handles one visitor message. A bare confirmation word only counts as
// a confirmation when the previous reply asked for one.
func (s *Service) Chat(ctx context.Context, sessionID, text string) (*Reply, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	sess, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	confirmed := sess.AwaitingConfirmation && slots.IsConfirmation(text)
	userMsg := schema.UserMessage(text)

	messages := make([]*schema.Message, 0, len(sess.Messages)+1)
	messages = append(messages, sess.Messages...)
	messages = append(messages, userMsg)

	turnCtx := ctx
	if s.turnTimeout > 0 {
		var cancel context.CancelFunc
		turnCtx, cancel = context.WithTimeout(ctx, s.turnTimeout)
		defer cancel()
	}

	res, err := s.engine.Run(turnCtx, model.TurnInput{
		Messages:  messages,
		State:     sess.State,
		Confirmed: confirmed,
	})
	if err != nil {
		return nil, fmt.Errorf("run turn: %w", err)
	}

	reply := &Reply{
		SessionID:            sessionID,
		Text:                 res.Reply,
		AwaitingConfirmation: res.AwaitingConfirmation,
		Booking:              res.Booking,
		Usage:                res.Usage,
	}

	if res.Booking != nil {
		if err := s.finishBooking(ctx, sessionID, res, reply); err != nil {
			return nil, err
		}
	} else {
		if err := s.repo.AppendMessages(ctx, sessionID, userMsg, schema.AssistantMessage(res.Reply, nil)); err != nil {
			return nil, fmt.Errorf("append messages: %w", err)
		}
		if err := s.save(ctx, sessionID, res); err != nil {
			return nil, err
		}
	}

	logx.Info().
		Str("session_id", sessionID).
		Str("outcome", string(res.Outcome)).
		Bool("confirmed", confirmed).
		Float64("cost_usd", res.Usage.CostUSD).
		Msg("turn handled")
	return reply, nil
}

// finishBooking stores the fresh state before the handoff so a failed write
// leaves the confirmation pending and nothing handed off. Once the handoff has
// happened the old history is dropped best effort.
func (s *Service) finishBooking(ctx context.Context, sessionID string, res *model.TurnResult, reply *Reply) error {
	if err := s.save(ctx, sessionID, res); err != nil {
		return err
	}

	reply.HandoffErr = s.sink.Handoff(ctx, res.Booking)
	s.metrics.Handoff(reply.HandoffErr)
	if reply.HandoffErr != nil {
		logx.Error().Err(reply.HandoffErr).Str("session_id", sessionID).Str("booking_id", res.Booking.ID).Msg("booking handoff failed")
	}

	if err := s.repo.ClearMessages(ctx, sessionID); err != nil {
		logx.Warn().Err(err).Str("session_id", sessionID).Str("booking_id", res.Booking.ID).Msg("failed to clear history after booking")
	}
	return nil
}

func (s *Service) save(ctx context.Context, sessionID string, res *model.TurnResult) error {
	err := s.repo.Save(ctx, &model.Session{
		ID:                   sessionID,
		State:                res.State,
		AwaitingConfirmation: res.AwaitingConfirmation,
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Reset forgets a session.
func (s *Service) Reset(ctx context.Context, sessionID string) error {
	unlock := s.locks.Lock(sessionID)
	defer unlock()
	return s.repo.Clear(ctx, sessionID)
}

func (s *Service) load(ctx context.Context, sessionID string) (*model.Session, error) {
	sess, err := s.repo.Load(ctx, sessionID)
	if errors.Is(err, errx.ErrSessionNotFound) {
		return &model.Session{
			ID:    sessionID,
			State: model.NewConversationState(s.clock()),
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if sess.State == nil {
		sess.State = model.NewConversationState(s.clock())
	}
	return sess, nil
}
