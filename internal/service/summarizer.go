package service

import (
	"context"
	"math"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"studygen/internal/domain"
	"studygen/internal/redact"
	"studygen/internal/util"
)

var tracer = otel.Tracer("studygen/internal/service")

const (
	MinSummaryTextLength = 200
	MinBulletCount       = 3
	MaxBulletCount       = 7

	// Abstracts target 100-150 words with 10% tolerance either way.
	abstractMinWords = 90
	abstractMaxWords = 165

	numberTolerance = 0.01
)

var ordinals = []string{"one", "two", "three", "four", "five", "six", "seven", "eight", "nine", "ten"}

// SummarizerService turns source text into an abstract or a fixed number of bullets.
type SummarizerService interface {
	Summarize(ctx context.Context, req domain.SummarizeRequest) (*domain.SummarizeResponse, error)
}

type summarizerService struct {
	generator   domain.Generator
	temperature float64
	logger      *zap.Logger
}

// NewSummarizerService creates a summarizer on top of gen. A nil logger
// discards output.
func NewSummarizerService(gen domain.Generator, temperature float64, logger *zap.Logger) SummarizerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &summarizerService{
		generator:   gen,
		temperature: temperature,
		logger:      logger,
	}
}

func (s *summarizerService) Summarize(ctx context.Context, req domain.SummarizeRequest) (*domain.SummarizeResponse, error) {
	if err := validateSummarizeRequest(req); err != nil {
		return nil, err
	}
	bulletCount := req.BulletCount
	if bulletCount == 0 {
		bulletCount = domain.DefaultBulletCount
	}

	ctx, span := tracer.Start(ctx, "service.Summarize")
	defer span.End()
	span.SetAttributes(
		attribute.String("summary.mode", string(req.Mode)),
		attribute.Bool("summary.redact", req.RedactPII),
	)

	source := util.Normalize(req.Text)
	if req.RedactPII {
		source = redact.RedactPII(source)
	}

	generated, err := s.generator.GenerateSummary(ctx, domain.SummaryParams{
		Text:        source,
		Mode:        req.Mode,
		BulletCount: bulletCount,
		Temperature: s.temperature,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		if domain.IsValidation(err) {
			return nil, err
		}
		return nil, domain.NewProcessingError("Failed to generate summary", err)
	}
	if generated == nil {
		return nil, domain.NewProcessingError("Generator returned no summary", nil)
	}

	resp := &domain.SummarizeResponse{SummaryType: req.Mode}
	if req.Mode == domain.ModeBullets {
		resp.Bullets, err = s.processBullets(generated.Bullets, bulletCount, source)
	} else {
		resp.Abstract, err = s.processAbstract(generated.Abstract, source)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "summary rejected")
		return nil, err
	}

	resp.Meta.TokensIn = util.WordCount(source)
	if req.Mode == domain.ModeBullets {
		for _, b := range resp.Bullets {
			resp.Meta.TokensOut += util.WordCount(b)
		}
	} else {
		resp.Meta.TokensOut = util.WordCount(resp.Abstract)
	}
	span.SetAttributes(
		attribute.Int("summary.tokens_in", resp.Meta.TokensIn),
		attribute.Int("summary.tokens_out", resp.Meta.TokensOut),
	)
	return resp, nil
}

func validateSummarizeRequest(req domain.SummarizeRequest) error {
	if strings.TrimSpace(req.Text) == "" {
		return domain.NewValidationError("Text is required and must be a string")
	}
	if utf8.RuneCountInString(req.Text) < MinSummaryTextLength {
		return domain.NewValidationError("Text must be at least 200 characters long")
	}
	if !req.Mode.Valid() {
		return domain.NewValidationError(`Mode must be either "abstract" or "bullets"`)
	}
	if req.Mode == domain.ModeBullets && req.BulletCount != 0 {
		if req.BulletCount < MinBulletCount || req.BulletCount > MaxBulletCount {
			return domain.NewValidationError("Bullet count must be between 3 and 7")
		}
	}
	return nil
}

func (s *summarizerService) processAbstract(abstract, source string) (string, error) {
	if err := s.checkNumbers(abstract, source); err != nil {
		return "", err
	}
	abstract = util.Normalize(abstract)
	if words := util.WordCount(abstract); words > abstractMaxWords {
		abstract = trimToWordCount(abstract, abstractMaxWords)
	} else if words < abstractMinWords {
		s.logger.Debug("abstract below target length", zap.Int("words", words))
	}
	return abstract, nil
}

// processBullets checks the generated bullets before padding, so the
// placeholders never take part in the number check.
func (s *summarizerService) processBullets(bullets []string, count int, source string) ([]string, error) {
	for _, b := range bullets {
		if err := s.checkNumbers(b, source); err != nil {
			return nil, err
		}
	}

	out := make([]string, 0, count)
	for _, b := range bullets {
		if b = util.Normalize(b); b != "" {
			out = append(out, b)
		}
	}
	if len(out) > count {
		out = out[:count]
	}
	for len(out) < count {
		out = append(out, placeholderBullet(len(out)+1))
	}
	return out, nil
}

func placeholderBullet(n int) string {
	word := "another"
	if n >= 1 && n <= len(ordinals) {
		word = ordinals[n-1]
	}
	return "Key point " + word + " from the content."
}

// checkNumbers rejects output carrying a numeric literal the source does not
// contain.
func (s *summarizerService) checkNumbers(output, source string) error {
	invented := inventedNumbers(output, source)
	if len(invented) == 0 {
		return nil
	}
	s.logger.Warn("summary rejected for numbers absent from source", zap.Float64s("numbers", invented))
	return domain.NewHallucinationError("Summary introduces numbers not present in source text", invented)
}

func inventedNumbers(output, source string) []float64 {
	have := util.ExtractNumbers(source)
	var invented []float64
	for _, n := range util.ExtractNumbers(output) {
		found := false
		for _, h := range have {
			if math.Abs(h-n) < numberTolerance {
				found = true
				break
			}
		}
		if !found {
			invented = append(invented, n)
		}
	}
	return invented
}

// trimToWordCount drops whole sentences from the end until text fits in
// maxWords. A first sentence longer than maxWords is kept as is.
func trimToWordCount(text string, maxWords int) string {
	sentences := util.SentencesWithPunctuation(text)
	kept := make([]string, 0, len(sentences))
	words := 0
	for _, sentence := range sentences {
		n := util.WordCount(sentence)
		if words+n > maxWords {
			break
		}
		kept = append(kept, sentence)
		words += n
	}
	if len(kept) == 0 && len(sentences) > 0 {
		return sentences[0]
	}
	return strings.Join(kept, " ")
}
