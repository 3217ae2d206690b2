// Package engine runs one turn of the appointment booking dialogue.
package engine

import (
	"context"
	"fmt"
	"time"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/compose"
	"github.com/google/uuid"

	"github.com/vira-assistant/server/internal/assistant/extract"
	"github.com/vira-assistant/server/internal/assistant/metrics"
	"github.com/vira-assistant/server/internal/assistant/model"
	"github.com/vira-assistant/server/internal/assistant/resolver"
	logx "github.com/vira-assistant/server/pkg/logger"
)

// Config holds the collaborators of the dialogue graph.
type Config struct {
	Resolver  *resolver.Resolver
	Extractor *extract.Extractor
	Gateway   model.Gateway
	Assistant model.AssistantConfig
	Metrics   *metrics.Recorder
	Callbacks []einocb.Handler

	// Clock and NewID default to time.Now and uuid.NewString.
	Clock func() time.Time
	NewID func() string
}

// Engine holds no per-session data and is safe for concurrent use.
type Engine struct {
	resolver  *resolver.Resolver
	extractor *extract.Extractor
	gateway   model.Gateway
	assistant model.AssistantConfig
	metrics   *metrics.Recorder
	callbacks []einocb.Handler
	clock     func() time.Time
	newID     func() string

	runnable compose.Runnable[model.TurnInput, *model.TurnResult]
}

func New(ctx context.Context, cfg Config) (*Engine, error) {
	if cfg.Resolver == nil {
		return nil, fmt.Errorf("resolver is nil")
	}
	if cfg.Gateway == nil {
		return nil, fmt.Errorf("gateway is nil")
	}

	e := &Engine{
		resolver:  cfg.Resolver,
		extractor: cfg.Extractor,
		gateway:   cfg.Gateway,
		assistant: cfg.Assistant,
		metrics:   cfg.Metrics,
		callbacks: cfg.Callbacks,
		clock:     cfg.Clock,
		newID:     cfg.NewID,
	}
	if e.extractor == nil {
		e.extractor = extract.New()
	}
	if e.clock == nil {
		e.clock = time.Now
	}
	if e.newID == nil {
		e.newID = uuid.NewString
	}

	runnable, err := e.buildGraph(ctx)
	if err != nil {
		return nil, err
	}
	e.runnable = runnable
	return e, nil
}

// Run executes one turn. Collaborator failures are absorbed into the reply;
// an error means the graph itself could not run.
func (e *Engine) Run(ctx context.Context, in model.TurnInput) (*model.TurnResult, error) {
	opts := make([]compose.Option, 0, 1)
	if len(e.callbacks) > 0 {
		opts = append(opts, compose.WithCallbacks(e.callbacks...))
	}

	out, err := e.runnable.Invoke(ctx, in, opts...)
	if err != nil {
		logx.Error().Err(err).Msg("dialogue turn failed")
		return nil, err
	}
	return out, nil
}
