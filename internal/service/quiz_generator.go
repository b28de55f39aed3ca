package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"studygen/internal/domain"
	"studygen/internal/redact"
	"studygen/internal/sections"
	"studygen/internal/util"
)

const (
	MinQuestionCount = 1
	MaxQuestionCount = 50

	recommendedContentLength = 200
	fallbackStem             = "Describe the given concept"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// QuizGeneratorService builds quizzes from study material.
type QuizGeneratorService interface {
	GenerateQuiz(ctx context.Context, req domain.QuizRequest) (*domain.QuizResponse, error)
}

type quizGeneratorService struct {
	generator domain.Generator
	logger    *zap.Logger
	now       func() time.Time
}

// NewQuizGeneratorService creates a quiz generator on top of gen. A nil
// logger discards output.
func NewQuizGeneratorService(gen domain.Generator, logger *zap.Logger) QuizGeneratorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &quizGeneratorService{
		generator: gen,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *quizGeneratorService) GenerateQuiz(ctx context.Context, req domain.QuizRequest) (*domain.QuizResponse, error) {
	start := s.now()

	if err := s.validateRequest(req); err != nil {
		return nil, err
	}
	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = domain.DifficultyMedium
	}

	ctx, span := tracer.Start(ctx, "service.GenerateQuiz")
	defer span.End()
	span.SetAttributes(
		attribute.Int("quiz.question_count", req.QuestionCount),
		attribute.String("quiz.difficulty", string(difficulty)),
		attribute.Bool("quiz.seeded", req.Seed != ""),
	)

	content := req.Content
	if req.RedactPII {
		content = redact.RedactPII(content)
	}
	found := sections.Extract(content)

	questions, err := s.generateQuestions(ctx, content, difficulty, req, found)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation aborted")
		return nil, err
	}

	if findings := ValidateQuestionFormat(questions); HasErrors(findings) {
		var msgs []string
		for _, f := range findings {
			if f.Severity == domain.SeverityError {
				msgs = append(msgs, f.Error)
			}
		}
		err := domain.NewProcessingError("Quiz generation failed validation: "+strings.Join(msgs, ", "), nil).
			WithContext("issues", findings)
		span.RecordError(err)
		span.SetStatus(codes.Error, "batch failed validation")
		return nil, err
	}

	tokens := 0
	for _, q := range questions {
		tokens += q.Metadata.TokensUsed
	}
	span.SetAttributes(
		attribute.Int("quiz.generated", len(questions)),
		attribute.Int("quiz.tokens", tokens),
	)

	return &domain.QuizResponse{
		QuizID:    s.quizID(req.Seed),
		Questions: questions,
		Metadata: domain.QuizMetadata{
			TotalQuestions: len(questions),
			Difficulty:     difficulty,
			Coverage:       sections.CalculateCoverage(questions, found),
			GenerationTime: s.now().Sub(start).Milliseconds(),
			TokensUsed:     tokens,
		},
	}, nil
}

func (s *quizGeneratorService) validateRequest(req domain.QuizRequest) error {
	if strings.TrimSpace(req.Content) == "" {
		return domain.NewValidationError("Content is required for quiz generation")
	}
	if n := utf8.RuneCountInString(req.Content); n < recommendedContentLength {
		s.logger.Warn("content shorter than recommended, attempting best-effort generation",
			zap.Int("length", n), zap.Int("recommended", recommendedContentLength))
	}
	if req.QuestionCount < MinQuestionCount || req.QuestionCount > MaxQuestionCount {
		return domain.NewValidationError("Question count must be between 1 and 50")
	}
	if req.Difficulty != "" && !req.Difficulty.Valid() {
		return domain.NewValidationError("Difficulty must be one of easy, medium, hard")
	}
	if d := req.QuestionTypes; d != nil {
		if d.MCQ < 0 || d.TrueFalse < 0 || d.ShortAnswer < 0 {
			return domain.NewValidationError("Question type counts must not be negative")
		}
		if d.Total() != req.QuestionCount {
			return domain.NewValidationError("Sum of question types must equal total question count")
		}
	}
	return nil
}

// Distribution returns how many questions of each type a request asks for.
// Without explicit counts it splits 70% mcq and 20% true_false, rounded,
// and gives the remainder to short_answer.
func Distribution(req domain.QuizRequest) domain.TypeDistribution {
	if req.QuestionTypes != nil {
		return *req.QuestionTypes
	}
	n := req.QuestionCount
	mcq := int(math.Round(float64(n) * 0.7))
	tf := int(math.Round(float64(n) * 0.2))
	sa := n - mcq - tf
	if sa < 0 {
		sa = 0
	}
	return domain.TypeDistribution{MCQ: mcq, TrueFalse: tf, ShortAnswer: sa}
}

// generateQuestions calls the generator one item at a time. The cursor is
// shared across types and only advances when an item succeeds.
func (s *quizGeneratorService) generateQuestions(
	ctx context.Context,
	content string,
	difficulty domain.Difficulty,
	req domain.QuizRequest,
	found []string,
) ([]domain.QuizQuestion, error) {
	dist := Distribution(req)
	questions := make([]domain.QuizQuestion, 0, dist.Total())
	cursor := 0

	for _, qt := range domain.QuestionTypes {
		count := dist.Count(qt)
		for i := 0; i < count; i++ {
			if err := ctx.Err(); err != nil {
				return nil, domain.NewProcessingError("Quiz generation cancelled", err)
			}

			var itemSeed string
			if req.Seed != "" {
				itemSeed = req.Seed + "_" + string(qt) + "_" + strconv.Itoa(cursor)
			}
			var hint string
			if len(found) > 0 {
				hint = found[cursor%len(found)]
			}

			generated, err := s.generator.GenerateQuizQuestion(ctx, domain.QuestionParams{
				Content:             content,
				Type:                qt,
				Difficulty:          difficulty,
				IncludeExplanations: req.IncludeExplanations,
				Seed:                itemSeed,
				Cursor:              cursor,
				SectionHint:         hint,
			})
			if err == nil && generated == nil {
				err = errors.New("generator returned no question")
			}
			if err != nil {
				s.logger.Warn("question generation failed, skipping",
					zap.String("type", string(qt)),
					zap.Int("index", i+1),
					zap.Int("cursor", cursor),
					zap.Error(err))
				continue
			}

			questions = append(questions, s.assembleQuestion(generated, qt, difficulty, itemSeed, hint, content))
			cursor++
		}
	}
	return questions, nil
}

func (s *quizGeneratorService) assembleQuestion(
	g *domain.GeneratedQuestion,
	qt domain.QuestionType,
	difficulty domain.Difficulty,
	itemSeed, hint, content string,
) domain.QuizQuestion {
	section := hint
	if section == "" {
		section = g.SourceSection
	}
	tokens := g.TokensUsed
	if tokens < 0 {
		tokens = 0
	}
	return domain.QuizQuestion{
		ID:            s.questionID(qt, itemSeed),
		Type:          qt,
		Stem:          SanitizeStem(g.Stem),
		Options:       g.Options,
		CorrectAnswer: g.CorrectAnswer,
		Explanation:   g.Explanation,
		Difficulty:    difficulty,
		SourceSection: section,
		Metadata: domain.QuestionMetadata{
			TokensUsed:   tokens,
			GeneratedAt:  s.now().UTC().Format(time.RFC3339),
			SourceLength: utf8.RuneCountInString(content),
		},
	}
}

// SanitizeStem removes question marks and collapses whitespace. An empty
// result becomes a generic prompt.
func SanitizeStem(stem string) string {
	cleaned := strings.ReplaceAll(stem, "?", "")
	cleaned = strings.TrimSpace(whitespaceRe.ReplaceAllString(cleaned, " "))
	if cleaned == "" {
		return fallbackStem
	}
	return cleaned
}

func (s *quizGeneratorService) quizID(seed string) string {
	id := fmt.Sprintf("quiz_%d_%s", s.now().UnixMilli(), util.RandomToken(6))
	if seed != "" {
		id += "_" + seed
	}
	return id
}

func (s *quizGeneratorService) questionID(qt domain.QuestionType, itemSeed string) string {
	if itemSeed != "" {
		return fmt.Sprintf("q_%s_%s", qt, itemSeed)
	}
	return fmt.Sprintf("q_%s_%d_%s", qt, s.now().UnixMilli(), util.RandomToken(4))
}
