package generator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"

	"studygen/internal/config"
	"studygen/internal/domain"
)

// Kind selects a generator variant.
type Kind string

const (
	KindOffline Kind = "offline"
	KindModel   Kind = "model"
)

// KindFor maps an llm.provider setting onto a variant.
func KindFor(provider string) Kind {
	if provider == "" || provider == config.ProviderOffline {
		return KindOffline
	}
	return KindModel
}

// New returns the variant selected by kind. KindModel requires a model.
func New(kind Kind, model llms.Model, opts ...LLMOption) (domain.Generator, error) {
	switch kind {
	case KindOffline:
		return NewOffline(), nil
	case KindModel:
		if model == nil {
			return nil, errors.New("model generator requires an llms.Model")
		}
		return NewLLM(model, opts...), nil
	default:
		return nil, fmt.Errorf("unknown generator kind %q", kind)
	}
}

// NewFromConfig builds the generator described by cfg. cache may be nil.
func NewFromConfig(ctx context.Context, cfg config.LLMConfig, c domain.Cache, cacheTTL time.Duration, logger *zap.Logger) (domain.Generator, error) {
	kind := KindFor(cfg.Provider)
	if kind == KindOffline {
		return New(kind, nil)
	}

	model, err := NewModel(ctx, cfg)
	if err != nil {
		return nil, err
	}
	name := cfg.Provider
	if cfg.Model != "" {
		name = cfg.Provider + "/" + cfg.Model
	}
	return New(kind, model,
		WithLogger(logger),
		WithModelName(name),
		WithTemperature(cfg.Temperature),
		WithTimeout(cfg.Timeout),
		WithRetry(RetryConfig{
			MaxAttempts: cfg.MaxAttempts,
			InitialWait: cfg.InitialWait,
			MaxWait:     cfg.MaxWait,
			Multiplier:  2,
		}),
		WithCompletionCache(c, cacheTTL),
	)
}

// NewModel creates the langchaingo client for cfg.Provider.
func NewModel(ctx context.Context, cfg config.LLMConfig) (llms.Model, error) {
	switch cfg.Provider {
	case config.ProviderOllama:
		serverURL := cfg.ServerURL
		if serverURL == "" {
			serverURL = defaultOllamaURL
		}
		opts := []ollama.Option{
			ollama.WithServerURL(serverURL),
			ollama.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		}
		if cfg.Model != "" {
			opts = append(opts, ollama.WithModel(cfg.Model))
		}
		return ollama.New(opts...)
	case config.ProviderOpenAI:
		opts := []openai.Option{openai.WithToken(cfg.APIKey)}
		if cfg.Model != "" {
			opts = append(opts, openai.WithModel(cfg.Model))
		}
		if cfg.ServerURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.ServerURL))
		}
		return openai.New(opts...)
	case config.ProviderAnthropic:
		opts := []anthropic.Option{anthropic.WithToken(cfg.APIKey)}
		if cfg.Model != "" {
			opts = append(opts, anthropic.WithModel(cfg.Model))
		}
		return anthropic.New(opts...)
	case config.ProviderGoogleAI:
		opts := []googleai.Option{googleai.WithAPIKey(cfg.APIKey)}
		if cfg.Model != "" {
			opts = append(opts, googleai.WithDefaultModel(cfg.Model))
		}
		return googleai.New(ctx, opts...)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
}

const defaultOllamaURL = "http://localhost:11434"
