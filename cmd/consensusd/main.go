// Command consensusd wires the provider adapters, signal cache, and
// consensus orchestrator from configuration and runs one
// GenerateSignal call against a sample request, logging the result.
//
// Usage:
//
//	consensusd                       # defaults plus environment
//	consensusd --config config.yaml  # explicit config file
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/quantsignal/consensus/cache"
	"github.com/quantsignal/consensus/config"
	"github.com/quantsignal/consensus/consensus"
	"github.com/quantsignal/consensus/prompt"
	"github.com/quantsignal/consensus/providers"
	anthropicprovider "github.com/quantsignal/consensus/providers/anthropic"
	geminiprovider "github.com/quantsignal/consensus/providers/gemini"
	openaiprovider "github.com/quantsignal/consensus/providers/openai"
	"github.com/quantsignal/consensus/types"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "consensusd: configuration error: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg.Log)
	defer logger.Sync()
	logger = logger.With(zap.String("trace_id", uuid.NewString()))

	for _, id := range cfg.AI.CredentialGatedProviders {
		logger.Warn("provider disabled: missing credential", zap.String("provider", id))
	}

	orch, err := buildOrchestrator(cfg, logger)
	if err != nil {
		logger.Fatal("failed to build orchestrator", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	signal := orch.GenerateSignal(ctx, sampleRequest(cfg))

	logger.Info("consensus signal generated",
		zap.String("pair", signal.Pair()),
		zap.String("direction", string(signal.Direction())),
		zap.Float64("confidence", signal.Confidence()),
		zap.Bool("should_trade", signal.ShouldTrade()),
		zap.Strings("active_providers", signal.ActiveProviders()),
		zap.String("reason", signal.Reason()),
	)
}

func buildOrchestrator(cfg *config.Config, logger *zap.Logger) (*consensus.Orchestrator, error) {
	bindings := make(map[string]consensus.ProviderBinding, len(cfg.AI.Providers))

	for _, p := range cfg.AI.Providers {
		adapter, err := buildAdapter(p, cfg)
		if err != nil {
			return nil, fmt.Errorf("provider %s: %w", p.ID, err)
		}
		bindings[p.ID] = consensus.ProviderBinding{
			Adapter: adapter,
			Weight:  p.Weight,
			Timeout: p.Timeout(),
			Enabled: p.Enabled,
			Role:    roleForProvider(p.ID),
		}
	}

	signalCache := buildCache(cfg, logger)

	return consensus.New(consensus.Config{
		Providers:           bindings,
		Cache:               signalCache,
		CacheTTL:            time.Duration(cfg.AI.SignalCacheMinutes) * time.Minute,
		MinConsensusScore:   cfg.AI.MinConsensusScore,
		MinConfidence:       cfg.AI.MinConfidence,
		MinParticipants:     cfg.AI.MinParticipants,
		RequireAllProviders: cfg.AI.RequireAllProviders,
		GraceSeconds:        cfg.AI.GraceSeconds,
		MaxConcurrentCalls:  cfg.AI.MaxConcurrentCalls,
		MaxRationaleChars:   cfg.AI.MaxRationaleChars,
		LookbackCandles:     cfg.AI.LookbackCandles,
		LookbackMin:         cfg.AI.LookbackMin,
		LookbackMax:         cfg.AI.LookbackMax,
		Logger:              logger,
	}), nil
}

// roleForProvider assigns each known vendor a distinct prompt role
// (spec.md §4.2's "one per provider role" guidance) so all three
// templates see production traffic instead of only
// RoleTechnicalAnalysis. An unrecognized id falls back to the
// orchestrator's own default.
func roleForProvider(id string) prompt.Role {
	switch id {
	case "chatgpt", "openai":
		return prompt.RoleTechnicalAnalysis
	case "claude", "anthropic":
		return prompt.RoleRiskAssessment
	case "gemini", "google":
		return prompt.RoleSentiment
	default:
		return prompt.RoleTechnicalAnalysis
	}
}

func buildAdapter(p config.ProviderConfig, cfg *config.Config) (providers.Adapter, error) {
	model := p.Model
	if override, ok := cfg.AI.ModelOverrides[p.ID]; ok && override != "" {
		model = override
	}

	switch p.ID {
	case "chatgpt", "openai":
		return openaiprovider.New(openaiprovider.Config{
			ID:         p.ID,
			APIKey:     os.Getenv("OPENAI_API_KEY"),
			BaseURL:    p.BaseURL,
			Model:      model,
			MaxRetries: p.MaxRetries,
		}), nil
	case "claude", "anthropic":
		return anthropicprovider.New(anthropicprovider.Config{
			ID:         p.ID,
			APIKey:     os.Getenv("ANTHROPIC_API_KEY"),
			BaseURL:    p.BaseURL,
			Model:      model,
			MaxRetries: p.MaxRetries,
		}), nil
	case "gemini", "google":
		return geminiprovider.New(context.Background(), geminiprovider.Config{
			ID:         p.ID,
			APIKey:     os.Getenv("GEMINI_API_KEY"),
			Model:      model,
			MaxRetries: p.MaxRetries,
		})
	default:
		return nil, fmt.Errorf("unknown provider id %q", p.ID)
	}
}

func buildCache(cfg *config.Config, logger *zap.Logger) cache.SignalCache {
	l1 := cache.NewInProcessCache(1024)
	if cfg.Redis.Addr == "" {
		return l1
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	l2 := cache.NewRedisCache(client, logger)
	return cache.NewTieredCache(l1, l2)
}

func sampleRequest(cfg *config.Config) *types.SignalRequest {
	base := time.Now().UTC().Truncate(time.Hour)
	n := cfg.AI.LookbackCandles
	if n <= 0 {
		n = 50
	}
	bars := make([]types.Bar, 0, n)
	for i := 0; i < n; i++ {
		bars = append(bars, types.Bar{
			Timestamp: base.Add(time.Duration(i-n) * time.Hour),
			Open:      100, High: 101, Low: 99, Close: 100.5, Volume: 10,
		})
	}
	return &types.SignalRequest{
		Pair:      "BTC-USD",
		Timeframe: types.Timeframe1h,
		AsOf:      base,
		Bars:      bars,
	}
}

func initLogger(cfg config.LogConfig) *zap.Logger {
	level := zapcore.InfoLevel
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	}

	zapConfig := zap.NewProductionConfig()
	zapConfig.Level = zap.NewAtomicLevelAt(level)
	zapConfig.EncoderConfig.TimeKey = "timestamp"
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zapConfig.Build(zap.AddCaller())
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return logger
}
