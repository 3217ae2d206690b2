package gateway

import (
	"context"
	"errors"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vira-assistant/server/internal/assistant/metrics"
	"github.com/vira-assistant/server/internal/assistant/model"
)

type fakeChat struct {
	reply *schema.Message
	err   error
	panic bool
	got   []*schema.Message
}

func (f *fakeChat) Generate(_ context.Context, in []*schema.Message, _ ...einomodel.Option) (*schema.Message, error) {
	f.got = in
	if f.panic {
		panic("boom")
	}
	return f.reply, f.err
}

func (f *fakeChat) Stream(context.Context, []*schema.Message, ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported")
}

var testConfig = model.GatewayConfig{
	Model:      "gemini-2.0-flash",
	Apology:    "I'm sorry, there was an error processing your request. Please try again.",
	EmptyReply: "I'm sorry, I couldn't generate a response. Please try again.",
}

func TestGenerateReturnsReplyAndUsage(t *testing.T) {
	reply := schema.AssistantMessage("Sarah Johnson | HR", nil)
	reply.ResponseMeta = &schema.ResponseMeta{Usage: &schema.TokenUsage{PromptTokens: 1000, CompletionTokens: 10, TotalTokens: 1010}}
	chat := &fakeChat{reply: reply}
	g := New(chat, testConfig, WithMetrics(metrics.New(prometheus.NewRegistry())))

	msgs := []*schema.Message{schema.SystemMessage("framing"), schema.UserMessage("hi")}
	gen := g.Generate(context.Background(), msgs)

	require.False(t, gen.Failed)
	assert.Equal(t, "Sarah Johnson | HR", gen.Text)
	assert.Equal(t, 1000, gen.PromptTokens)
	assert.Equal(t, 10, gen.ResponseTokens)
	assert.Greater(t, gen.CostUSD, 0.0)
	assert.Equal(t, msgs, chat.got, "system framing is forwarded")
}

func TestGenerateMasksErrors(t *testing.T) {
	g := New(&fakeChat{err: errors.New("quota exceeded")}, testConfig)

	gen := g.Generate(context.Background(), []*schema.Message{schema.UserMessage("hi")})

	assert.Equal(t, model.Generation{Text: testConfig.Apology, Failed: true}, gen)
}

func TestGenerateRecoversPanics(t *testing.T) {
	g := New(&fakeChat{panic: true}, testConfig)

	gen := g.Generate(context.Background(), nil)

	assert.True(t, gen.Failed)
	assert.Equal(t, testConfig.Apology, gen.Text)
	assert.Zero(t, gen.PromptTokens)
}

func TestGenerateEmptyReply(t *testing.T) {
	for _, reply := range []*schema.Message{nil, schema.AssistantMessage("  ", nil)} {
		g := New(&fakeChat{reply: reply}, testConfig)
		gen := g.Generate(context.Background(), []*schema.Message{schema.UserMessage("hi")})

		assert.True(t, gen.Failed)
		assert.Equal(t, testConfig.EmptyReply, gen.Text)
	}
}
