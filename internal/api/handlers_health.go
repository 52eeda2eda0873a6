// handlers_health.go - Service health reporting
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pdf2deck/backend/internal/convert"
)

// HealthHandlerImpl reports service identity and conversion load.
type HealthHandlerImpl struct {
	version string
	jobs    *convert.Manager
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version string, jobs *convert.Manager) HealthHandler {
	return &HealthHandlerImpl{
		version: version,
		jobs:    jobs,
	}
}

// HandleHealth returns liveness plus the number of conversions in flight,
// so a deployment can tell an idle server from a wedged one.
func (h *HealthHandlerImpl) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":     "ok",
		"service":    "pdf2deck",
		"version":    h.version,
		"activeJobs": h.jobs.ActiveJobs(),
	})
}
