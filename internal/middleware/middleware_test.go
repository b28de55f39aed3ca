package middleware_test

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"studygen/internal/domain"
	"studygen/internal/middleware"
)

func newApp(handler fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	app.Use(middleware.RequestID())
	app.Get("/test", handler)
	return app
}

func decode(t *testing.T, body io.Reader) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

func TestErrorHandler_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", domain.NewValidationError("Text must be at least 200 characters long"), fiber.StatusBadRequest, "VALIDATION_ERROR"},
		{"hallucination", domain.NewHallucinationError("Summary introduces numbers not present in source text", []float64{5}), fiber.StatusUnprocessableEntity, "HALLUCINATION_ERROR"},
		{"processing", domain.NewProcessingError("Quiz generation failed validation", nil), fiber.StatusInternalServerError, "PROCESSING_ERROR"},
		{"llm service", domain.NewLLMServiceError(errors.New("down")), fiber.StatusServiceUnavailable, "LLM_SERVICE_ERROR"},
		{"fiber error", fiber.NewError(fiber.StatusMethodNotAllowed, "nope"), fiber.StatusMethodNotAllowed, "HTTP_ERROR"},
		{"unknown", errors.New("boom"), fiber.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newApp(func(c *fiber.Ctx) error { return tt.err })

			resp, err := app.Test(httptest.NewRequest("GET", "/test", nil), -1)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			body := decode(t, resp.Body)
			assert.Equal(t, tt.wantCode, body["code"])
			assert.EqualValues(t, tt.wantStatus, body["status"])
			assert.Equal(t, resp.Header.Get(middleware.RequestIDHeader), body["requestId"])
		})
	}
}

func TestErrorHandler_HidesUnknownErrorText(t *testing.T) {
	app := newApp(func(c *fiber.Ctx) error { return errors.New("db password is hunter2") })

	resp, err := app.Test(httptest.NewRequest("GET", "/test", nil), -1)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	assert.NotContains(t, string(raw), "hunter2")
	assert.Contains(t, string(raw), "An unexpected error occurred while processing your request")
}

func TestErrorHandler_DetailsAndFieldErrors(t *testing.T) {
	t.Run("domain error context becomes details", func(t *testing.T) {
		app := newApp(func(c *fiber.Ctx) error {
			return domain.NewHallucinationError("Summary introduces numbers not present in source text", []float64{5})
		})
		resp, err := app.Test(httptest.NewRequest("GET", "/test", nil), -1)
		require.NoError(t, err)
		body := decode(t, resp.Body)
		assert.Equal(t, map[string]interface{}{"numbers": []interface{}{float64(5)}}, body["details"])
	})

	t.Run("field errors", func(t *testing.T) {
		app := newApp(func(c *fiber.Ctx) error {
			return domain.FieldErrors{{Field: "mode", Message: "is required"}}
		})
		resp, err := app.Test(httptest.NewRequest("GET", "/test", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

		body := decode(t, resp.Body)
		assert.Equal(t, "VALIDATION_ERROR", body["code"])
		errs := body["errors"].([]interface{})
		require.Len(t, errs, 1)
		assert.Equal(t, "mode", errs[0].(map[string]interface{})["field"])
	})
}

func TestRequestID(t *testing.T) {
	var seen string
	app := newApp(func(c *fiber.Ctx) error {
		seen = middleware.GetRequestID(c)
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/test", nil), -1)
	require.NoError(t, err)
	assert.Regexp(t, `^req_[0-9A-HJKMNP-TV-Z]{26}$`, seen)
	assert.Equal(t, seen, resp.Header.Get(middleware.RequestIDHeader))

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set(middleware.RequestIDHeader, "client-chosen")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "client-chosen", seen)
	assert.Equal(t, "client-chosen", resp.Header.Get(middleware.RequestIDHeader))
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger(zap.New(core)))
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/bad", func(c *fiber.Ctx) error { return domain.NewValidationError("bad input") })

	resp, err := app.Test(httptest.NewRequest("GET", "/ok", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/bad", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	entries := logs.FilterMessage("HTTP Request").All()
	require.Len(t, entries, 2)
	assert.EqualValues(t, fiber.StatusOK, entries[0].ContextMap()["status"])
	assert.EqualValues(t, fiber.StatusBadRequest, entries[1].ContextMap()["status"])
	assert.Equal(t, "/bad", entries[1].ContextMap()["path"])
	assert.NotEmpty(t, entries[1].ContextMap()["request_id"])
}
