package handler

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"studygen/internal/domain"
	"studygen/internal/dto"
	"studygen/internal/logger"
	"studygen/internal/middleware"
	"studygen/internal/service"
	"studygen/internal/validation"
)

// QuizHandler handles quiz generation, export and validation requests
type QuizHandler struct {
	service   service.QuizGeneratorService
	validator *validation.Validator
	health    healthCheck
	now       func() time.Time
}

// NewQuizHandler creates a new QuizHandler instance
func NewQuizHandler(service service.QuizGeneratorService, opts ...HealthOption) *QuizHandler {
	return &QuizHandler{
		service:   service,
		validator: validation.NewValidator(),
		health:    newHealthCheck(opts),
		now:       time.Now,
	}
}

// GenerateQuiz godoc
// @Summary Generate a quiz
// @Description Generates multiple choice, true/false and short answer questions from study material
// @Tags quiz
// @Accept json
// @Produce json
// @Param request body dto.QuizGenerateRequest true "Quiz parameters"
// @Success 200 {object} dto.QuizGenerateResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /quiz/generate [post]
func (h *QuizHandler) GenerateQuiz(c *fiber.Ctx) error {
	var req dto.QuizGenerateRequest
	if err := bindJSON(c, h.validator, &req); err != nil {
		return err
	}

	requestID := middleware.GetRequestID(c)
	log := logger.Get().With(zap.String("request_id", requestID))
	log.Info("Quiz generation request",
		zap.Int("question_count", req.QuestionCount),
		zap.String("difficulty", req.Difficulty),
		zap.Int("content_length", len(req.Content)),
	)

	quiz, err := h.service.GenerateQuiz(c.UserContext(), req.ToDomain())
	if err != nil {
		return err
	}

	log.Info("Quiz generation successful",
		zap.String("quiz_id", quiz.QuizID),
		zap.Int("questions", len(quiz.Questions)),
		zap.Int64("generation_ms", quiz.Metadata.GenerationTime),
	)
	return c.JSON(dto.QuizGenerateResponse{QuizResponse: *quiz, RequestID: requestID})
}

// ExportQuiz godoc
// @Summary Export questions
// @Description Returns the questions as a JSON or CSV attachment
// @Tags quiz
// @Accept json
// @Produce json,text/csv
// @Param request body dto.QuizExportRequest true "Questions and export options"
// @Success 200 {string} string "export file"
// @Failure 400 {object} middleware.ErrorResponse
// @Router /quiz/export [post]
func (h *QuizHandler) ExportQuiz(c *fiber.Ctx) error {
	var req dto.QuizExportRequest
	if err := bindJSON(c, h.validator, &req); err != nil {
		return err
	}

	format := service.ExportFormat(req.Options.Format)
	data, err := service.Export(req.Questions, service.ExportOptions{
		Format:              format,
		IncludeExplanations: req.Options.Explanations(),
		IncludeMetadata:     req.Options.Metadata(),
	})
	if err != nil {
		return err
	}

	logger.Get().Info("Quiz export successful",
		zap.String("request_id", middleware.GetRequestID(c)),
		zap.String("format", string(format)),
		zap.Int("questions", len(req.Questions)),
	)

	filename := service.ExportFilename(format, h.now())
	c.Set(fiber.HeaderContentType, format.ContentType())
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(data)
}

// ValidateQuiz godoc
// @Summary Validate questions
// @Description Checks question format and answer keys without generating anything
// @Tags quiz
// @Accept json
// @Produce json
// @Param request body dto.QuizValidateRequest true "Questions to validate"
// @Success 200 {object} dto.QuizValidateResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /quiz/validate [post]
func (h *QuizHandler) ValidateQuiz(c *fiber.Ctx) error {
	var req dto.QuizValidateRequest
	if err := bindJSON(c, h.validator, &req); err != nil {
		return err
	}

	resp := BuildValidationReport(dto.QuestionsFromInputs(req.Questions))
	resp.RequestID = middleware.GetRequestID(c)

	logger.Get().Info("Quiz validation complete",
		zap.String("request_id", resp.RequestID),
		zap.Int("valid", resp.Summary.ValidQuestions),
		zap.Int("total", resp.Summary.TotalQuestions),
	)
	return c.JSON(resp)
}

// BuildValidationReport validates each question independently and adds
// batch-level ambiguity warnings.
func BuildValidationReport(questions []domain.QuizQuestion) dto.QuizValidateResponse {
	resp := dto.QuizValidateResponse{
		ValidationResults: make([]dto.QuestionValidationResult, 0, len(questions)),
		AmbiguityWarnings: service.DetectAmbiguity(questions),
	}
	for i, q := range questions {
		errs := service.ValidateQuestion(q)
		resp.ValidationResults = append(resp.ValidationResults, dto.QuestionValidationResult{
			QuestionIndex: i,
			QuestionID:    q.ID,
			Errors:        errs,
			IsValid:       len(errs) == 0,
		})
		resp.Summary.TotalErrors += len(errs)
		if len(errs) == 0 {
			resp.Summary.ValidQuestions++
		}
	}
	resp.Summary.TotalQuestions = len(questions)
	resp.Summary.InvalidQuestions = len(questions) - resp.Summary.ValidQuestions
	return resp
}

// Health godoc
// @Summary Quiz generator health check
// @Tags quiz
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /quiz/health [get]
func (h *QuizHandler) Health(c *fiber.Ctx) error {
	return h.health.respond(c, "quiz-generator")
}
