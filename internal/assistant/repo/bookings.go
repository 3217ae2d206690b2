package repo

import (
	"context"
	"fmt"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"github.com/vira-assistant/server/internal/assistant/model"
	errx "github.com/vira-assistant/server/internal/core/error"
	logx "github.com/vira-assistant/server/pkg/logger"
)

// DefaultOutboxKey is the Redis list bookings are pushed onto.
const DefaultOutboxKey = "bookings:outbox"

// RedisBookingOutbox appends bookings to a Redis list for a downstream
// consumer to persist and notify on.
type RedisBookingOutbox struct {
	rdb redis.Cmdable
	key string
}

func NewRedisBookingOutbox(rdb redis.Cmdable, key string) *RedisBookingOutbox {
	if key == "" {
		key = DefaultOutboxKey
	}
	return &RedisBookingOutbox{rdb: rdb, key: key}
}

func (o *RedisBookingOutbox) Handoff(ctx context.Context, booking *model.BookingRecord) error {
	b, err := sonic.Marshal(booking)
	if err != nil {
		return fmt.Errorf("marshal booking: %w", err)
	}
	if err := o.rdb.RPush(ctx, o.key, b).Err(); err != nil {
		logx.Error().Err(err).Str("key", o.key).Str("booking_id", booking.ID).Msg("failed to push booking to outbox")
		return errx.WrapRedis(err)
	}
	logx.Info().Str("booking_id", booking.ID).Str("employee", booking.EmployeeName).Msg("booking handed off")
	return nil
}

// MemoryBookingOutbox collects bookings in memory.
type MemoryBookingOutbox struct {
	mu       sync.Mutex
	bookings []model.BookingRecord
}

func (o *MemoryBookingOutbox) Handoff(_ context.Context, booking *model.BookingRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.bookings = append(o.bookings, *booking)
	return nil
}

// Bookings returns a copy of everything handed off so far.
func (o *MemoryBookingOutbox) Bookings() []model.BookingRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]model.BookingRecord(nil), o.bookings...)
}

var (
	_ model.BookingSink = (*RedisBookingOutbox)(nil)
	_ model.BookingSink = (*MemoryBookingOutbox)(nil)
)
