package errx

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapRedis(t *testing.T) {
	assert.NoError(t, WrapRedis(nil))

	err := WrapRedis(redis.Nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, redis.Nil))
	assert.Equal(t, http.StatusNotFound, StatusOf(err))

	err = WrapRedis(errors.New("connection refused"))
	assert.Equal(t, http.StatusBadGateway, StatusOf(err))
	assert.Contains(t, err.Error(), RedisErrorMessage)
}

func TestAppErrorAs(t *testing.T) {
	cause := errors.New("deadline exceeded")
	err := WrapGateway(cause)

	var appErr *AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, GatewayErrorMessage, appErr.Message)
	assert.ErrorIs(t, err, cause)
}

func TestSessionNotFoundSentinel(t *testing.T) {
	err := errors.Join(errors.New("load"), ErrSessionNotFound)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Equal(t, http.StatusNotFound, StatusOf(ErrSessionNotFound))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("plain")))
	assert.Equal(t, http.StatusServiceUnavailable, StatusOf(WrapIndex(errors.New("down"))))
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, SystemErrorMessage, MessageOf(errors.New("boom")))
	assert.Equal(t, RedisErrorMessage, MessageOf(fmt.Errorf("save session: %w", WrapRedis(errors.New("timeout")))))
	assert.Equal(t, "session not found", MessageOf(ErrSessionNotFound))
}
