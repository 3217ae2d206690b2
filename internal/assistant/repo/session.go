package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/schema"
	"github.com/redis/go-redis/v9"

	"github.com/vira-assistant/server/internal/assistant/model"
	errx "github.com/vira-assistant/server/internal/core/error"
	logx "github.com/vira-assistant/server/pkg/logger"
)

type RedisSessionRepository struct {
	rdb         redis.Cmdable
	ttl         time.Duration
	maxMessages int
}

// NewRedisSessionRepository stores sessions for ttl after their last write
// and keeps at most maxMessages history entries (0 keeps everything).
func NewRedisSessionRepository(rdb redis.Cmdable, ttl time.Duration, maxMessages int) *RedisSessionRepository {
	return &RedisSessionRepository{rdb: rdb, ttl: ttl, maxMessages: maxMessages}
}

func (r *RedisSessionRepository) stateKey(sessionID string) string {
	return fmt.Sprintf("session:%s:state", sessionID)
}

func (r *RedisSessionRepository) messagesKey(sessionID string) string {
	return fmt.Sprintf("session:%s:messages", sessionID)
}

func (r *RedisSessionRepository) Load(ctx context.Context, sessionID string) (*model.Session, error) {
	key := r.stateKey(sessionID)

	raw, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// history from a turn whose state never landed
			if err := r.rdb.Del(ctx, r.messagesKey(sessionID)).Err(); err != nil {
				logx.Warn().Err(err).Str("session_id", sessionID).Msg("failed to drop orphaned history")
			}
			return nil, errx.ErrSessionNotFound
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load session state from redis")
		return nil, errx.WrapRedis(err)
	}

	var session model.Session
	if err := sonic.Unmarshal(raw, &session); err != nil {
		logx.Error().Err(err).Str("session_id", sessionID).Msg("failed to unmarshal session state")
		return nil, fmt.Errorf("unmarshal session state: %w", err)
	}
	session.ID = sessionID

	rows, err := r.rdb.LRange(ctx, r.messagesKey(sessionID), 0, -1).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		logx.Error().Err(err).Str("session_id", sessionID).Msg("failed to load session history from redis")
		return nil, errx.WrapRedis(err)
	}

	session.Messages = make([]*schema.Message, 0, len(rows))
	for i, row := range rows {
		var m schema.Message
		if err := sonic.UnmarshalString(row, &m); err != nil {
			logx.Error().Err(err).Str("session_id", sessionID).Int("index", i).Msg("failed to unmarshal message")
			return nil, fmt.Errorf("unmarshal message at index %d: %w", i, err)
		}
		session.Messages = append(session.Messages, &m)
	}
	return &session, nil
}

func (r *RedisSessionRepository) Save(ctx context.Context, session *model.Session) error {
	b, err := sonic.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session state: %w", err)
	}
	key := r.stateKey(session.ID)

	if err := r.rdb.Set(ctx, key, b, r.ttl).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to save session state to redis")
		return errx.WrapRedis(err)
	}
	// keep history alive as long as the state
	if r.ttl > 0 {
		if err := r.rdb.Expire(ctx, r.messagesKey(session.ID), r.ttl).Err(); err != nil {
			logx.Warn().Err(err).Str("session_id", session.ID).Msg("failed to refresh history TTL")
		}
	}
	return nil
}

func (r *RedisSessionRepository) AppendMessages(ctx context.Context, sessionID string, messages ...*schema.Message) error {
	if len(messages) == 0 {
		return nil
	}
	rows := make([]any, 0, len(messages))
	for _, m := range messages {
		b, err := sonic.Marshal(m)
		if err != nil {
			logx.Error().Err(err).Str("session_id", sessionID).Msg("failed to marshal message")
			return fmt.Errorf("marshal message: %w", err)
		}
		rows = append(rows, b)
	}
	key := r.messagesKey(sessionID)

	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, rows...)
		if r.maxMessages > 0 {
			pipe.LTrim(ctx, key, int64(-r.maxMessages), -1)
		}
		if r.ttl > 0 {
			pipe.Expire(ctx, key, r.ttl)
		}
		return nil
	})
	if err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to push messages to redis")
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisSessionRepository) ClearMessages(ctx context.Context, sessionID string) error {
	if err := r.rdb.Del(ctx, r.messagesKey(sessionID)).Err(); err != nil {
		logx.Error().Err(err).Str("session_id", sessionID).Msg("failed to delete session history from redis")
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisSessionRepository) Clear(ctx context.Context, sessionID string) error {
	if err := r.rdb.Del(ctx, r.stateKey(sessionID), r.messagesKey(sessionID)).Err(); err != nil {
		logx.Error().Err(err).Str("session_id", sessionID).Msg("failed to delete session from redis")
		return errx.WrapRedis(err)
	}
	return nil
}

var _ model.SessionRepository = (*RedisSessionRepository)(nil)
