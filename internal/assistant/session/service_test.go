package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vira-assistant/server/internal/assistant/engine"
	"github.com/vira-assistant/server/internal/assistant/model"
	"github.com/vira-assistant/server/internal/assistant/repo"
	"github.com/vira-assistant/server/internal/assistant/resolver"
)

var today = time.Date(2025, 7, 16, 10, 0, 0, 0, time.UTC)

type scriptedRunner struct {
	mu      sync.Mutex
	results []*model.TurnResult
	inputs  []model.TurnInput
}

func (r *scriptedRunner) Run(_ context.Context, in model.TurnInput) (*model.TurnResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inputs = append(r.inputs, in)
	if len(r.results) == 0 {
		return nil, errors.New("no scripted result")
	}
	res := r.results[0]
	r.results = r.results[1:]
	return res, nil
}

type failingSink struct{}

func (failingSink) Handoff(context.Context, *model.BookingRecord) error {
	return errors.New("outbox unavailable")
}

func TestChatStartsFreshSession(t *testing.T) {
	runner := &scriptedRunner{results: []*model.TurnResult{{
		Reply:   "Hello! Who would you like to meet?",
		State:   model.NewConversationState(today),
		Outcome: model.OutcomeGenerated,
	}}}
	sessions := repo.NewMemorySessionRepository(0)
	svc := NewService(runner, sessions, &repo.MemoryBookingOutbox{}, Config{Clock: func() time.Time { return today }})

	reply, err := svc.Chat(context.Background(), "s-1", "hi")
	require.NoError(t, err)
	assert.Equal(t, "Hello! Who would you like to meet?", reply.Text)

	in := runner.inputs[0]
	assert.False(t, in.Confirmed)
	assert.Equal(t, "2025-07-16", in.State.AppointmentDate)
	require.Len(t, in.Messages, 1)
	assert.Equal(t, "hi", in.Messages[0].Content)

	stored, err := sessions.Load(context.Background(), "s-1")
	require.NoError(t, err)
	require.Len(t, stored.Messages, 2)
	assert.Equal(t, schema.Assistant, stored.Messages[1].Role)
}

func TestConfirmationOnlyAfterPrompt(t *testing.T) {
	state := &model.ConversationState{EmployeeName: "Sarah Johnson", AppointmentDate: "2025-07-16"}
	runner := &scriptedRunner{results: []*model.TurnResult{
		{Reply: "Please provide: ...", State: state, Outcome: model.OutcomeGenerated},
		{Reply: "summary" + "\nAre all the details correct? (Type yes to confirm)", State: state, AwaitingConfirmation: true, Outcome: model.OutcomeConfirm},
		{Reply: "Appointment booked successfully!", State: model.NewConversationState(today), Outcome: model.OutcomeBooked,
			Booking: &model.BookingRecord{ID: "b-1", EmployeeName: "Sarah Johnson"}},
	}}
	sessions := repo.NewMemorySessionRepository(0)
	outbox := &repo.MemoryBookingOutbox{}
	svc := NewService(runner, sessions, outbox, Config{})
	ctx := context.Background()

	_, err := svc.Chat(ctx, "s-1", "yes")
	require.NoError(t, err)
	assert.False(t, runner.inputs[0].Confirmed, "no pending confirmation")

	reply, err := svc.Chat(ctx, "s-1", "looks good?")
	require.NoError(t, err)
	assert.True(t, reply.AwaitingConfirmation)
	assert.False(t, runner.inputs[1].Confirmed)

	reply, err = svc.Chat(ctx, "s-1", "Yes")
	require.NoError(t, err)
	assert.True(t, runner.inputs[2].Confirmed)
	require.NotNil(t, reply.Booking)
	assert.NoError(t, reply.HandoffErr)
	assert.Len(t, outbox.Bookings(), 1)

	stored, err := sessions.Load(ctx, "s-1")
	require.NoError(t, err)
	assert.Empty(t, stored.Messages, "history cleared after booking")
	assert.False(t, stored.AwaitingConfirmation)
	assert.Empty(t, stored.State.EmployeeName)
}

func TestHandoffFailureIsReported(t *testing.T) {
	runner := &scriptedRunner{results: []*model.TurnResult{{
		Reply:   "Appointment booked successfully!",
		State:   model.NewConversationState(today),
		Outcome: model.OutcomeBooked,
		Booking: &model.BookingRecord{ID: "b-1"},
	}}}
	svc := NewService(runner, repo.NewMemorySessionRepository(0), failingSink{}, Config{})

	reply, err := svc.Chat(context.Background(), "s-1", "yes")
	require.NoError(t, err)
	assert.Equal(t, "Appointment booked successfully!", reply.Text)
	assert.EqualError(t, reply.HandoffErr, "outbox unavailable")
}

func TestRunnerErrorPropagates(t *testing.T) {
	svc := NewService(&scriptedRunner{}, repo.NewMemorySessionRepository(0), &repo.MemoryBookingOutbox{}, Config{})

	_, err := svc.Chat(context.Background(), "s-1", "hi")
	assert.Error(t, err)
}

type stubIndex struct{}

func (stubIndex) Query(context.Context, string, int) ([]model.Candidate, error) {
	return []model.Candidate{{EmployeeName: "Sarah Johnson", Department: "HR", Score: 0.9}}, nil
}

type stubGateway struct{}

func (stubGateway) Generate(_ context.Context, msgs []*schema.Message) model.Generation {
	return model.Generation{Text: "Sarah Johnson | HR"}
}

func newBookingEngine(t *testing.T) *engine.Engine {
	t.Helper()
	eng, err := engine.New(context.Background(), engine.Config{
		Resolver:  resolver.New(stubIndex{}, stubGateway{}, model.ResolverConfig{}),
		Gateway:   stubGateway{},
		Assistant: model.AssistantConfig{CompanyName: "Kanishka Software", OpeningTime: "9:00 AM", ClosingTime: "4:30 PM"},
		Clock:     func() time.Time { return today },
	})
	require.NoError(t, err)
	return eng
}

// chatUntilConfirmation fills every field and stops at the summary.
func chatUntilConfirmation(t *testing.T, svc *Service, sessionID string) {
	t.Helper()
	ctx := context.Background()
	for _, text := range []string{"I want to meet Sarah", "my name is Arhum Khan, interview at 3pm", "arhum@x.com 9876543210"} {
		_, err := svc.Chat(ctx, sessionID, text)
		require.NoError(t, err)
	}
	stored, err := svc.repo.Load(ctx, sessionID)
	require.NoError(t, err)
	require.True(t, stored.AwaitingConfirmation)
}

// flakyRepo fails selected writes of an in-memory repository.
type flakyRepo struct {
	*repo.MemorySessionRepository
	failSave          bool
	failClearMessages int
}

func (f *flakyRepo) Save(ctx context.Context, session *model.Session) error {
	if f.failSave {
		return errors.New("redis blip")
	}
	return f.MemorySessionRepository.Save(ctx, session)
}

func (f *flakyRepo) ClearMessages(ctx context.Context, sessionID string) error {
	if f.failClearMessages > 0 {
		f.failClearMessages--
		return errors.New("redis blip")
	}
	return f.MemorySessionRepository.ClearMessages(ctx, sessionID)
}

func TestFullBookingConversation(t *testing.T) {
	ctx := context.Background()
	clock := func() time.Time { return today }
	eng := newBookingEngine(t)

	outbox := &repo.MemoryBookingOutbox{}
	svc := NewService(eng, repo.NewMemorySessionRepository(40), outbox, Config{Clock: clock, TurnTimeout: time.Second})

	reply, err := svc.Chat(ctx, "s-1", "I want to meet Sarah")
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "Please provide:")

	reply, err = svc.Chat(ctx, "s-1", "my name is Arhum Khan, interview at 3pm")
	require.NoError(t, err)
	assert.False(t, reply.AwaitingConfirmation)

	reply, err = svc.Chat(ctx, "s-1", "arhum@x.com 9876543210")
	require.NoError(t, err)
	require.True(t, reply.AwaitingConfirmation)
	assert.Contains(t, reply.Text, "Employee: Sarah Johnson (HR)")
	assert.Contains(t, reply.Text, "Visitor: Arhum Khan")

	reply, err = svc.Chat(ctx, "s-1", "yes")
	require.NoError(t, err)
	assert.Equal(t, "Appointment booked successfully!", reply.Text)
	require.NotNil(t, reply.Booking)
	assert.Equal(t, "arhum@x.com", reply.Booking.VisitorEmail)
	assert.Equal(t, "9876543210", reply.Booking.VisitorPhone)
	assert.Equal(t, "Interview", reply.Booking.Reason)
	assert.Len(t, outbox.Bookings(), 1)
}

func TestBookingHandedOffOnceWhenHistoryClearFails(t *testing.T) {
	ctx := context.Background()
	sessions := &flakyRepo{MemorySessionRepository: repo.NewMemorySessionRepository(40), failClearMessages: 1}
	outbox := &repo.MemoryBookingOutbox{}
	svc := NewService(newBookingEngine(t), sessions, outbox, Config{Clock: func() time.Time { return today }})
	chatUntilConfirmation(t, svc, "s-1")

	reply, err := svc.Chat(ctx, "s-1", "yes")
	require.NoError(t, err)
	require.NotNil(t, reply.Booking)

	reply, err = svc.Chat(ctx, "s-1", "yes")
	require.NoError(t, err)
	assert.Nil(t, reply.Booking)
	assert.Len(t, outbox.Bookings(), 1)

	stored, err := sessions.Load(ctx, "s-1")
	require.NoError(t, err)
	assert.False(t, stored.AwaitingConfirmation)
	assert.Empty(t, stored.State.VisitorName)
}

func TestBookingNotHandedOffWhenStateSaveFails(t *testing.T) {
	ctx := context.Background()
	sessions := &flakyRepo{MemorySessionRepository: repo.NewMemorySessionRepository(40)}
	outbox := &repo.MemoryBookingOutbox{}
	svc := NewService(newBookingEngine(t), sessions, outbox, Config{Clock: func() time.Time { return today }})
	chatUntilConfirmation(t, svc, "s-1")

	sessions.failSave = true
	_, err := svc.Chat(ctx, "s-1", "yes")
	require.Error(t, err)
	assert.Empty(t, outbox.Bookings())

	sessions.failSave = false
	reply, err := svc.Chat(ctx, "s-1", "yes")
	require.NoError(t, err)
	require.NotNil(t, reply.Booking)
	assert.Equal(t, "Arhum Khan", reply.Booking.VisitorName)

	reply, err = svc.Chat(ctx, "s-1", "yes")
	require.NoError(t, err)
	assert.Nil(t, reply.Booking)
	assert.Len(t, outbox.Bookings(), 1)
}

func TestKeyedMutexReleasesEntries(t *testing.T) {
	var k keyedMutex
	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.Lock("s-1")
			counter++
			unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
	assert.Empty(t, k.locks)
}
