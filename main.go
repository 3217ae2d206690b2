package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"

	"github.com/vira-assistant/server/internal/assistant/engine"
	"github.com/vira-assistant/server/internal/assistant/extract"
	"github.com/vira-assistant/server/internal/assistant/gateway"
	"github.com/vira-assistant/server/internal/assistant/index"
	"github.com/vira-assistant/server/internal/assistant/metrics"
	"github.com/vira-assistant/server/internal/assistant/model"
	"github.com/vira-assistant/server/internal/assistant/observers"
	"github.com/vira-assistant/server/internal/assistant/repo"
	"github.com/vira-assistant/server/internal/assistant/resolver"
	"github.com/vira-assistant/server/internal/assistant/session"
	"github.com/vira-assistant/server/internal/core"
	errx "github.com/vira-assistant/server/internal/core/error"
	logx "github.com/vira-assistant/server/pkg/logger"
	pkgredis "github.com/vira-assistant/server/pkg/redis"
)

// AppConfig defines all configurable parameters of the assistant, sourced
// from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL"`
	MetricsAddr string `envconfig:"METRICS_ADDR"`

	// Infrastructure
	Redis pkgredis.Config

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	Gateway   model.GatewayConfig
	Index     model.IndexConfig
	Resolver  model.ResolverConfig
	Assistant model.AssistantConfig
	Session   model.SessionConfig
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not load .env file: %v\n", err)
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to process environment config: %v\n", err)
		os.Exit(1)
	}

	logx.Init(logx.LoggerOpts{
		Environment: core.ParseEnvironment(cfg.Environment),
		Level:       cfg.LogLevel,
	})

	svc, cleanup, err := buildService(ctx, cfg)
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to start assistant")
	}
	defer cleanup()

	if err := chatLoop(ctx, svc); err != nil && !errors.Is(err, context.Canceled) {
		logx.Fatal().Err(err).Msg("Chat loop stopped")
	}
}

func buildService(ctx context.Context, cfg AppConfig) (*session.Service, func(), error) {
	recorder := metrics.New(prometheus.DefaultRegisterer)
	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr)
	}

	ttl, err := time.ParseDuration(cfg.Session.TTL)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid SESSION_TTL %q: %w", cfg.Session.TTL, err)
	}
	turnTimeout, err := time.ParseDuration(cfg.Session.TurnTimeout)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid TURN_TIMEOUT %q: %w", cfg.Session.TurnTimeout, err)
	}

	rdb, err := cfg.Redis.New(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("initialise Redis client: %w", err)
	}
	logx.Info().Msg("Connected to Redis successfully")

	client, err := gateway.NewClient(ctx, cfg.APIKey, cfg.BaseURL)
	if err != nil {
		rdb.Close()
		return nil, nil, err
	}
	chatModel, err := gateway.NewChatModel(ctx, client, cfg.Gateway)
	if err != nil {
		rdb.Close()
		return nil, nil, err
	}
	gw := gateway.New(chatModel, cfg.Gateway, gateway.WithMetrics(recorder))

	records, err := index.LoadDirectory(cfg.Index.DirectoryFile)
	if err != nil {
		rdb.Close()
		return nil, nil, err
	}
	idx, err := newIndex(ctx, rdb, index.NewGenaiEmbedder(client, cfg.Index.EmbeddingModel), cfg.Index, records)
	if err != nil {
		rdb.Close()
		return nil, nil, err
	}

	eng, err := engine.New(ctx, engine.Config{
		Resolver:  resolver.New(idx, gw, cfg.Resolver, resolver.WithMetrics(recorder)),
		Extractor: extract.New(),
		Gateway:   gw,
		Assistant: cfg.Assistant,
		Metrics:   recorder,
		Callbacks: []einocb.Handler{observers.NewAllCallbacks()},
	})
	if err != nil {
		rdb.Close()
		return nil, nil, err
	}

	svc := session.NewService(
		eng,
		repo.NewRedisSessionRepository(rdb, ttl, cfg.Session.HistoryMaxMessages),
		repo.NewRedisBookingOutbox(rdb, repo.DefaultOutboxKey),
		session.Config{TurnTimeout: turnTimeout, Metrics: recorder},
	)
	return svc, func() { rdb.Close() }, nil
}

func newIndex(ctx context.Context, rdb goredis.Cmdable, embedder *index.GenaiEmbedder, cfg model.IndexConfig, records []model.EmployeeRecord) (model.SimilarityIndex, error) {
	switch cfg.Backend {
	case "redis":
		return index.NewRedisIndex(ctx, rdb, embedder, cfg, records)
	case "memory":
		return index.NewMemoryIndex(ctx, embedder, records)
	default:
		return nil, fmt.Errorf("unknown INDEX_BACKEND %q", cfg.Backend)
	}
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	logx.Info().Str("addr", addr).Msg("Serving metrics")
	if err := http.ListenAndServe(addr, mux); err != nil {
		logx.Error().Err(err).Msg("Metrics server stopped")
	}
}

// chatLoop reads visitor messages from stdin. "/reset" starts a new session
// and "/quit" exits.
func chatLoop(ctx context.Context, svc *session.Service) error {
	sessionID := uuid.NewString()
	fmt.Println("Vira appointment assistant. Type /reset to start over, /quit to exit.")

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		fmt.Print("> ")
		var line string
		select {
		case <-ctx.Done():
			return ctx.Err()
		case l, ok := <-lines:
			if !ok {
				return nil
			}
			line = strings.TrimSpace(l)
		}

		switch line {
		case "":
			continue
		case "/quit":
			return nil
		case "/reset":
			if err := svc.Reset(ctx, sessionID); err != nil {
				logx.Warn().Err(err).Msg("Failed to reset session")
			}
			sessionID = uuid.NewString()
			fmt.Println("Session reset.")
			continue
		}

		reply, err := svc.Chat(ctx, sessionID, line)
		if err != nil {
			logx.Error().Err(err).Str("session_id", sessionID).Int("status", errx.StatusOf(err)).Msg("Turn failed")
			fmt.Printf("Sorry, something went wrong (%s). Please try again.\n", errx.MessageOf(err))
			continue
		}

		fmt.Println(reply.Text)
		if reply.Booking != nil {
			fmt.Printf("Booking %s recorded for %s with %s (%s).\n",
				reply.Booking.ID, reply.Booking.VisitorName, reply.Booking.EmployeeName, reply.Booking.Department)
			if reply.HandoffErr != nil {
				fmt.Println("Note: the booking could not be forwarded; please contact reception.")
			}
		}
	}
}
