package engine

import (
	"context"
	"sync"

	"github.com/cloudwego/eino/schema"

	"github.com/vira-assistant/server/internal/assistant/model"
)

type fakeIndex struct {
	candidates []model.Candidate
	queries    []string
}

func (f *fakeIndex) Query(_ context.Context, text string, k int) ([]model.Candidate, error) {
	f.queries = append(f.queries, text)
	if len(f.candidates) > k {
		return f.candidates[:k], nil
	}
	return f.candidates, nil
}

// fakeGateway replies with the queued generations in order, then repeats the last.
type fakeGateway struct {
	mu      sync.Mutex
	replies []model.Generation
	calls   [][]*schema.Message
}

func (f *fakeGateway) Generate(_ context.Context, msgs []*schema.Message) model.Generation {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, msgs)
	if len(f.replies) == 0 {
		return model.Generation{Text: "How can I help you book an appointment?"}
	}
	gen := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	return gen
}
