// Package gateway wraps a chat model behind the assistant's never-failing
// text generation contract.
package gateway

import (
	"context"
	"fmt"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/vira-assistant/server/internal/assistant/metrics"
	"github.com/vira-assistant/server/internal/assistant/model"
	errx "github.com/vira-assistant/server/internal/core/error"
	logx "github.com/vira-assistant/server/pkg/logger"
)

type Option func(*Gateway)

// WithMetrics records every call on r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(g *Gateway) { g.metrics = r }
}

// Gateway is stateless; every call carries the full conversation.
type Gateway struct {
	chat       einomodel.BaseChatModel
	modelName  string
	pricing    model.Pricing
	apology    string
	emptyReply string
	metrics    *metrics.Recorder
}

func New(chat einomodel.BaseChatModel, cfg model.GatewayConfig, opts ...Option) *Gateway {
	g := &Gateway{
		chat:       chat,
		modelName:  cfg.Model,
		pricing:    model.ResolvePricing(cfg.Model),
		apology:    cfg.Apology,
		emptyReply: cfg.EmptyReply,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns the model's reply to messages. Any failure, including a
// panic inside the model client, yields the apology text with zero tokens.
func (g *Gateway) Generate(ctx context.Context, messages []*schema.Message) (gen model.Generation) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			g.fail(fmt.Errorf("chat model panic: %v", r), len(messages), start)
			gen = model.Generation{Text: g.apology, Failed: true}
		}
	}()

	out, err := g.chat.Generate(ctx, messages)
	if err != nil {
		g.fail(err, len(messages), start)
		return model.Generation{Text: g.apology, Failed: true}
	}

	if out != nil && out.ResponseMeta != nil && out.ResponseMeta.Usage != nil {
		usage := out.ResponseMeta.Usage
		_, _, total := model.ComputeCost(usage, g.pricing)
		gen.PromptTokens = usage.PromptTokens
		gen.ResponseTokens = usage.CompletionTokens
		gen.CostUSD = total
	}

	status := "ok"
	if out == nil || strings.TrimSpace(out.Content) == "" {
		status = "empty"
		gen.Text = g.emptyReply
		gen.Failed = true
	} else {
		gen.Text = out.Content
	}

	g.metrics.GatewayCall(g.modelName, status, start, gen.PromptTokens, gen.ResponseTokens)
	logx.Debug().
		Str("model", g.modelName).
		Str("status", status).
		Int("prompt_tokens", gen.PromptTokens).
		Int("completion_tokens", gen.ResponseTokens).
		Float64("total_cost_usd", gen.CostUSD).
		Dur("latency", time.Since(start)).
		Msg("LLM usage")
	return gen
}

func (g *Gateway) fail(err error, messages int, start time.Time) {
	g.metrics.GatewayCall(g.modelName, "error", start, 0, 0)
	logx.Error().
		Err(errx.WrapGateway(err)).
		Str("model", g.modelName).
		Int("messages", messages).
		Msg("language model call failed")
}

var _ model.Gateway = (*Gateway)(nil)
