package repo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vira-assistant/server/internal/assistant/model"
	errx "github.com/vira-assistant/server/internal/core/error"
	pkgredis "github.com/vira-assistant/server/pkg/redis"
)

func liveRedis(t *testing.T) *pkgredis.Config {
	t.Helper()
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	return &pkgredis.Config{URL: url, ReadTimeout: 3, WriteTimeout: 3, DialTimeout: 5}
}

func TestRedisSessionRepository(t *testing.T) {
	ctx := context.Background()
	rdb := liveRedis(t).MustNew(ctx)
	t.Cleanup(func() { rdb.Close() })

	r := NewRedisSessionRepository(rdb, time.Minute, 2)
	id := uuid.NewString()
	t.Cleanup(func() { r.Clear(ctx, id) })

	_, err := r.Load(ctx, id)
	require.ErrorIs(t, err, errx.ErrSessionNotFound)

	state := &model.ConversationState{EmployeeName: "Sarah Johnson", Department: "HR", AppointmentDate: "2025-07-16"}
	require.NoError(t, r.Save(ctx, &model.Session{ID: id, State: state, AwaitingConfirmation: true}))
	require.NoError(t, r.AppendMessages(ctx, id,
		schema.UserMessage("Sarah"),
		schema.AssistantMessage("Please provide: ...", nil),
		schema.UserMessage("my name is Arhum Khan"),
	))

	got, err := r.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, state, got.State)
	assert.True(t, got.AwaitingConfirmation)
	require.Len(t, got.Messages, 2, "history trimmed to the newest entries")
	assert.Equal(t, schema.User, got.Messages[1].Role)
	assert.Equal(t, "my name is Arhum Khan", got.Messages[1].Content)

	ttl, err := rdb.TTL(ctx, r.messagesKey(id)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestRedisLoadDropsHistoryWithoutState(t *testing.T) {
	ctx := context.Background()
	rdb := liveRedis(t).MustNew(ctx)
	t.Cleanup(func() { rdb.Close() })

	r := NewRedisSessionRepository(rdb, time.Minute, 0)
	id := uuid.NewString()
	t.Cleanup(func() { r.Clear(ctx, id) })

	require.NoError(t, r.AppendMessages(ctx, id, schema.UserMessage("hi"), schema.AssistantMessage("hello", nil)))
	_, err := r.Load(ctx, id)
	require.ErrorIs(t, err, errx.ErrSessionNotFound)

	n, err := rdb.Exists(ctx, r.messagesKey(id)).Result()
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, r.Save(ctx, &model.Session{ID: id, State: &model.ConversationState{AppointmentDate: "2025-07-16"}}))
	require.NoError(t, r.AppendMessages(ctx, id, schema.UserMessage("again")))
	require.NoError(t, r.ClearMessages(ctx, id))
	got, err := r.Load(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, got.Messages)
	assert.Equal(t, "2025-07-16", got.State.AppointmentDate)
}

func TestRedisBookingOutbox(t *testing.T) {
	ctx := context.Background()
	rdb := liveRedis(t).MustNew(ctx)
	t.Cleanup(func() { rdb.Close() })

	key := "bookings:test:" + uuid.NewString()
	t.Cleanup(func() { rdb.Del(ctx, key) })

	o := NewRedisBookingOutbox(rdb, key)
	require.NoError(t, o.Handoff(ctx, &model.BookingRecord{ID: "b-1", EmployeeName: "Sarah Johnson", Department: "HR"}))

	raw, err := rdb.LPop(ctx, key).Result()
	require.NoError(t, err)
	var got model.BookingRecord
	require.NoError(t, sonic.UnmarshalString(raw, &got))
	assert.Equal(t, "b-1", got.ID)
	assert.Equal(t, "HR", got.Department)
}

func TestNewRedisBookingOutboxDefaultKey(t *testing.T) {
	assert.Equal(t, DefaultOutboxKey, NewRedisBookingOutbox(nil, "").key)
}
