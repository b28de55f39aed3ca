package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"studygen/internal/domain"
	"studygen/internal/dto"
	"studygen/internal/logger"
)

const cachePingTimeout = 2 * time.Second

// HealthOption configures the dependencies a health endpoint reports on.
type HealthOption func(*healthCheck)

// WithCacheHealth makes health endpoints ping the completion cache. A nil
// cache is not reported.
func WithCacheHealth(c domain.Cache) HealthOption {
	return func(h *healthCheck) { h.cache = c }
}

type healthCheck struct {
	cache domain.Cache
	now   func() time.Time
}

func newHealthCheck(opts []HealthOption) healthCheck {
	h := healthCheck{now: time.Now}
	for _, opt := range opts {
		opt(&h)
	}
	return h
}

// respond reports "degraded" when the cache is unreachable; generation still
// works without it.
func (h healthCheck) respond(c *fiber.Ctx, service string) error {
	resp := dto.HealthResponse{
		Status:    "healthy",
		Service:   service,
		Timestamp: h.now().UTC().Format(time.RFC3339),
	}

	if h.cache != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), cachePingTimeout)
		defer cancel()
		if err := h.cache.Ping(ctx); err != nil {
			logger.Get().Warn("Completion cache ping failed", zap.String("service", service), zap.Error(err))
			resp.Status = "degraded"
			resp.Cache = "unavailable"
		} else {
			resp.Cache = "ok"
		}
	}
	return c.JSON(resp)
}
