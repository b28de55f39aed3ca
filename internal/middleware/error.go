package middleware

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"studygen/internal/domain"
	"studygen/internal/logger"
)

// ErrorResponse represents the standard error response structure
type ErrorResponse struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Status    int                    `json:"status"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"requestId,omitempty"`
}

// ValidationErrorResponse represents validation error response
type ValidationErrorResponse struct {
	Code      string             `json:"code"`
	Message   string             `json:"message"`
	Status    int                `json:"status"`
	Errors    domain.FieldErrors `json:"errors"`
	RequestID string             `json:"requestId,omitempty"`
}

// ErrorHandler is a centralized error handler installed through fiber.Config.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		log := logger.Get().With(zap.String("request_id", GetRequestID(c)))

		// Handle request field errors
		var fieldErrs domain.FieldErrors
		if errors.As(err, &fieldErrs) {
			log.Warn("Validation errors occurred",
				zap.String("path", c.Path()),
				zap.Int("error_count", len(fieldErrs)),
			)
			return c.Status(http.StatusBadRequest).JSON(ValidationErrorResponse{
				Code:      string(domain.CodeValidation),
				Message:   "Request validation failed",
				Status:    http.StatusBadRequest,
				Errors:    fieldErrs,
				RequestID: GetRequestID(c),
			})
		}

		// Handle domain errors
		var domainErr *domain.DomainError
		if errors.As(err, &domainErr) {
			statusCode := mapDomainErrorToHTTPStatus(domainErr)

			fields := []zap.Field{
				zap.String("code", string(domainErr.Code)),
				zap.String("message", domainErr.Message),
				zap.Int("status", statusCode),
			}
			if domainErr.Cause != nil {
				fields = append(fields, zap.Error(domainErr.Cause))
			}
			if statusCode >= http.StatusInternalServerError {
				log.Error("Domain error occurred", fields...)
			} else {
				log.Warn("Domain error occurred", fields...)
			}

			response := ErrorResponse{
				Code:      string(domainErr.Code),
				Message:   domainErr.Message,
				Status:    statusCode,
				RequestID: GetRequestID(c),
			}
			if len(domainErr.Context) > 0 {
				response.Details = domainErr.Context
			}
			return c.Status(statusCode).JSON(response)
		}

		// Handle fiber errors
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			log.Warn("Fiber error occurred",
				zap.Int("code", fiberErr.Code),
				zap.String("message", fiberErr.Message),
			)
			return c.Status(fiberErr.Code).JSON(ErrorResponse{
				Code:      "HTTP_ERROR",
				Message:   fiberErr.Message,
				Status:    fiberErr.Code,
				RequestID: GetRequestID(c),
			})
		}

		// Handle unknown errors; the cause is logged but never sent to the client
		internalErr := domain.NewInternalError("An unexpected error occurred while processing your request", err)
		log.Error("Unknown error occurred",
			zap.String("path", c.Path()),
			zap.Error(internalErr.Cause),
		)

		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
			Code:      string(internalErr.Code),
			Message:   internalErr.Message,
			Status:    http.StatusInternalServerError,
			RequestID: GetRequestID(c),
		})
	}
}

// mapDomainErrorToHTTPStatus maps domain errors to HTTP status codes
func mapDomainErrorToHTTPStatus(err *domain.DomainError) int {
	switch err.Code {
	case domain.CodeValidation:
		return http.StatusBadRequest
	case domain.CodeHallucination:
		return http.StatusUnprocessableEntity
	case domain.CodeLLMServiceError:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
