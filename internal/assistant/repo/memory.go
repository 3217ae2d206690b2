package repo

import (
	"context"
	"sync"

	"github.com/cloudwego/eino/schema"

	"github.com/vira-assistant/server/internal/assistant/model"
	errx "github.com/vira-assistant/server/internal/core/error"
)

// MemorySessionRepository keeps sessions in process memory. It does not
// expire entries.
type MemorySessionRepository struct {
	mu          sync.RWMutex
	sessions    map[string]*model.Session
	maxMessages int
}

func NewMemorySessionRepository(maxMessages int) *MemorySessionRepository {
	return &MemorySessionRepository{
		sessions:    make(map[string]*model.Session),
		maxMessages: maxMessages,
	}
}

func (m *MemorySessionRepository) Load(_ context.Context, sessionID string) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok || s.State == nil {
		delete(m.sessions, sessionID)
		return nil, errx.ErrSessionNotFound
	}
	return &model.Session{
		ID:                   sessionID,
		State:                s.State.Clone(),
		AwaitingConfirmation: s.AwaitingConfirmation,
		Messages:             append([]*schema.Message(nil), s.Messages...),
	}, nil
}

func (m *MemorySessionRepository) Save(_ context.Context, session *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.entry(session.ID)
	s.State = session.State.Clone()
	s.AwaitingConfirmation = session.AwaitingConfirmation
	return nil
}

func (m *MemorySessionRepository) AppendMessages(_ context.Context, sessionID string, messages ...*schema.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.entry(sessionID)
	s.Messages = append(s.Messages, messages...)
	if m.maxMessages > 0 && len(s.Messages) > m.maxMessages {
		s.Messages = append([]*schema.Message(nil), s.Messages[len(s.Messages)-m.maxMessages:]...)
	}
	return nil
}

func (m *MemorySessionRepository) ClearMessages(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[sessionID]; ok {
		s.Messages = nil
	}
	return nil
}

func (m *MemorySessionRepository) Clear(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}

func (m *MemorySessionRepository) entry(sessionID string) *model.Session {
	s, ok := m.sessions[sessionID]
	if !ok {
		s = &model.Session{ID: sessionID}
		m.sessions[sessionID] = s
	}
	return s
}

var _ model.SessionRepository = (*MemorySessionRepository)(nil)
