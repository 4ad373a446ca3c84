package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Checker is a named dependency probed by the readiness endpoint.
type Checker struct {
	Name  string
	Check func(ctx context.Context) error
}

type HealthHandler struct {
	checks []Checker
	logger *zap.Logger
}

func NewHealthHandler(logger *zap.Logger, checks ...Checker) *HealthHandler {
	return &HealthHandler{checks: checks, logger: logger}
}

// Health handles GET /v1/health. It is public so load balancers can reach
// it, and it never touches a dependency.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready handles GET /v1/ready: 200 when every dependency answers, 503
// with the failing ones otherwise.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for _, chk := range h.checks {
		if err := chk.Check(ctx); err != nil {
			h.logger.Warn("readiness check failed", zap.String("dependency", chk.Name), zap.Error(err))
			results[chk.Name] = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		results[chk.Name] = "ok"
	}

	body := gin.H{"status": "ok", "checks": results}
	if status != http.StatusOK {
		body["status"] = "unavailable"
	}
	c.JSON(status, body)
}
