package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"studygen/internal/dto"
	"studygen/internal/logger"
	"studygen/internal/middleware"
	"studygen/internal/service"
	"studygen/internal/validation"
)

// SummarizeHandler handles summarization HTTP requests
type SummarizeHandler struct {
	service   service.SummarizerService
	validator *validation.Validator
	health    healthCheck
}

// NewSummarizeHandler creates a new SummarizeHandler instance
func NewSummarizeHandler(service service.SummarizerService, opts ...HealthOption) *SummarizeHandler {
	return &SummarizeHandler{
		service:   service,
		validator: validation.NewValidator(),
		health:    newHealthCheck(opts),
	}
}

// Summarize godoc
// @Summary Summarize text
// @Description Produces an abstract or a fixed number of bullet points from the given text
// @Tags summarize
// @Accept json
// @Produce json
// @Param request body dto.SummarizeRequest true "Text to summarize"
// @Success 200 {object} dto.SummarizeResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 422 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /summarize [post]
func (h *SummarizeHandler) Summarize(c *fiber.Ctx) error {
	var req dto.SummarizeRequest
	if err := bindJSON(c, h.validator, &req); err != nil {
		return err
	}

	requestID := middleware.GetRequestID(c)
	log := logger.Get().With(zap.String("request_id", requestID))
	// Only sizes are logged; the text itself may be sensitive.
	log.Info("Summarize request", zap.String("mode", req.Mode), zap.Int("text_length", len(req.Text)))

	result, err := h.service.Summarize(c.UserContext(), req.ToDomain())
	if err != nil {
		return err
	}

	log.Info("Summarization successful",
		zap.Int("tokens_in", result.Meta.TokensIn),
		zap.Int("tokens_out", result.Meta.TokensOut),
	)
	return c.JSON(dto.NewSummarizeResponse(result, requestID))
}

// Health godoc
// @Summary Summarization health check
// @Tags summarize
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /summarize/health [get]
func (h *SummarizeHandler) Health(c *fiber.Ctx) error {
	return h.health.respond(c, "summarization-api")
}
