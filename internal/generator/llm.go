package generator

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/tmc/langchaingo/llms"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"studygen/internal/cache"
	"studygen/internal/domain"
	"studygen/internal/util"
)

var tracer = otel.Tracer("studygen/internal/generator")

// LLM generates through a langchaingo model. Every failure other than a
// validation error is logged and answered by the offline variant instead.
type LLM struct {
	model       llms.Model
	name        string
	temperature float64
	timeout     time.Duration
	retry       RetryConfig
	fallback    *Offline
	logger      *zap.Logger

	cache    domain.Cache
	cacheTTL time.Duration
	group    singleflight.Group
}

var _ domain.Generator = (*LLM)(nil)

type LLMOption func(*LLM)

func WithLogger(logger *zap.Logger) LLMOption {
	return func(l *LLM) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithModelName labels logs, spans and cache keys.
func WithModelName(name string) LLMOption {
	return func(l *LLM) { l.name = name }
}

// WithTemperature sets the temperature used for quiz questions. Summaries
// carry their own temperature.
func WithTemperature(t float64) LLMOption {
	return func(l *LLM) { l.temperature = t }
}

// WithTimeout bounds every single model call.
func WithTimeout(d time.Duration) LLMOption {
	return func(l *LLM) { l.timeout = d }
}

func WithRetry(cfg RetryConfig) LLMOption {
	return func(l *LLM) { l.retry = cfg }
}

// WithCompletionCache memoises completions by prompt. A nil cache disables it.
func WithCompletionCache(c domain.Cache, ttl time.Duration) LLMOption {
	return func(l *LLM) {
		l.cache = c
		l.cacheTTL = ttl
	}
}

func NewLLM(model llms.Model, opts ...LLMOption) *LLM {
	l := &LLM{
		model:       model,
		name:        "llm",
		temperature: 0.7,
		timeout:     30 * time.Second,
		retry:       DefaultRetryConfig(),
		fallback:    NewOffline(),
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *LLM) GenerateSummary(ctx context.Context, params domain.SummaryParams) (*domain.GeneratedSummary, error) {
	if err := validateSummaryParams(params); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "generator.GenerateSummary")
	defer span.End()
	span.SetAttributes(
		attribute.String("generator.model", l.name),
		attribute.String("summary.mode", string(params.Mode)),
	)

	out, err := l.complete(ctx, buildSummaryPrompt(params), "", params.Temperature)
	var summary *domain.GeneratedSummary
	if err == nil {
		summary, err = parseSummary(out.text, params.Mode, params.BulletCount)
		if err != nil {
			l.evict(ctx, out)
		}
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "model summary failed")
		span.SetAttributes(attribute.Bool("generator.fallback", true))
		l.logger.Warn("model summary failed, using offline fallback",
			zap.String("model", l.name),
			zap.String("mode", string(params.Mode)),
			zap.Error(err))
		return l.fallback.GenerateSummary(ctx, params)
	}
	return summary, nil
}

func (l *LLM) GenerateQuizQuestion(ctx context.Context, params domain.QuestionParams) (*domain.GeneratedQuestion, error) {
	if err := validateQuestionParams(params); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "generator.GenerateQuizQuestion")
	defer span.End()
	span.SetAttributes(
		attribute.String("generator.model", l.name),
		attribute.String("question.type", string(params.Type)),
		attribute.Int("question.cursor", params.Cursor),
	)

	prompt := buildQuizPrompt(params)
	out, err := l.complete(ctx, prompt, itemVariant(params), l.temperature)
	var q *domain.GeneratedQuestion
	if err == nil {
		q, err = parseQuestion(out.text, params.Type)
		if err != nil {
			l.evict(ctx, out)
		}
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "model question failed")
		span.SetAttributes(attribute.Bool("generator.fallback", true))
		l.logger.Warn("model question failed, using offline fallback",
			zap.String("model", l.name),
			zap.String("type", string(params.Type)),
			zap.Int("cursor", params.Cursor),
			zap.Error(err))
		return l.fallback.GenerateQuizQuestion(ctx, params)
	}

	if q.SourceSection == "" {
		q.SourceSection = params.SectionHint
	}
	switch {
	case out.tokens > 0:
		q.TokensUsed = out.tokens
	case q.TokensUsed <= 0:
		q.TokensUsed = util.WordCount(prompt) + util.WordCount(out.text)
	}
	span.SetAttributes(attribute.Int("generator.tokens", q.TokensUsed))
	return q, nil
}

type completion struct {
	text   string
	tokens int
	// key is set when text came from the completion cache.
	key string
}

// itemVariant identifies one quiz item. Quiz prompts repeat across items of
// the same type and section, so the variant keeps their completions apart.
func itemVariant(params domain.QuestionParams) string {
	return params.Seed + "#" + strconv.Itoa(params.Cursor)
}

func completionKey(model, prompt, variant string, temperature float64) string {
	return cache.GenerateCacheKey("generator", "completion",
		cache.HashIdentifier(model, prompt, variant), strconv.FormatFloat(temperature, 'f', 2, 64))
}

// complete returns the model's answer to prompt, consulting the completion
// cache first. Calls with the same prompt and variant in flight at the same
// time share one model call.
func (l *LLM) complete(ctx context.Context, prompt, variant string, temperature float64) (completion, error) {
	key := completionKey(l.name, prompt, variant, temperature)

	if l.cache != nil {
		cached, err := l.cache.Get(ctx, key)
		if err == nil {
			l.logger.Debug("completion cache hit", zap.String("key", key))
			return completion{text: cached, key: key}, nil
		}
		if !errors.Is(err, domain.ErrCacheMiss) {
			l.logger.Warn("completion cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	v, err, _ := l.group.Do(key, func() (interface{}, error) {
		return withRetry(ctx, l.retry, func(ctx context.Context) (completion, error) {
			return l.call(ctx, prompt, temperature)
		})
	})
	if err != nil {
		return completion{}, domain.NewLLMServiceError(err)
	}
	out := v.(completion)

	if l.cache != nil {
		if err := l.cache.Set(ctx, key, out.text, l.cacheTTL); err != nil {
			l.logger.Warn("completion cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return out, nil
}

// evict drops a cached completion that could not be parsed so the next
// request asks the model again.
func (l *LLM) evict(ctx context.Context, out completion) {
	if l.cache == nil || out.key == "" {
		return
	}
	if err := l.cache.Delete(ctx, out.key); err != nil {
		l.logger.Warn("completion cache delete failed", zap.String("key", out.key), zap.Error(err))
	}
}

func (l *LLM) call(ctx context.Context, prompt string, temperature float64) (completion, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	resp, err := l.model.GenerateContent(ctx,
		[]llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, prompt)},
		llms.WithTemperature(temperature),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return completion{}, fmt.Errorf("LLM request timed out: %w", err)
		}
		return completion{}, fmt.Errorf("LLM call failed: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return completion{}, errEmptyResponse
	}

	choice := resp.Choices[0]
	return completion{text: choice.Content, tokens: tokensFrom(choice.GenerationInfo)}, nil
}

// tokensFrom reads the usage figures providers put in GenerationInfo.
func tokensFrom(info map[string]any) int {
	for _, key := range []string{"TotalTokens", "total_tokens"} {
		if n := intValue(info[key]); n > 0 {
			return n
		}
	}
	pairs := [][2]string{
		{"PromptTokens", "CompletionTokens"},
		{"InputTokens", "OutputTokens"},
		{"input_tokens", "output_tokens"},
	}
	for _, p := range pairs {
		if n := intValue(info[p[0]]) + intValue(info[p[1]]); n > 0 {
			return n
		}
	}
	return 0
}

func intValue(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		return int(n)
	case float32:
		return int(n)
	}
	return 0
}
