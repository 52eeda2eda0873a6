// routes.go - Route registration helpers
package api

import (
	"github.com/labstack/echo/v4"

	"github.com/pdf2deck/backend/internal/convert"
	"github.com/pdf2deck/backend/internal/storage"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Store             storage.Store
	Jobs              *convert.Manager
	Version           string
	AllowFileDeletion bool

	// AllowedOrigins mirrors the CORS middleware configuration and gates
	// websocket upgrades; empty means same-origin only.
	AllowedOrigins []string
}

// Handlers holds all handler instances
type Handlers struct {
	Health  HealthHandler
	Upload  UploadHandler
	Convert ConvertHandler
	JobWS   *WebSocketHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(deps.Version, deps.Jobs),
		Upload:  NewUploadHandler(deps.Store),
		Convert: NewConvertHandler(deps.Store, deps.Jobs),
		JobWS:   NewWebSocketHandler(deps.Jobs, deps.AllowedOrigins),
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers, deps *Dependencies) {
	e.HTTPErrorHandler = ErrorHandler

	apiGroup := e.Group("/api")

	// Health check
	apiGroup.GET("/health", handlers.Health.HandleHealth)

	// File management
	apiGroup.POST("/files/upload", handlers.Upload.HandleUploadFile)
	apiGroup.GET("/files/recent", handlers.Upload.HandleGetRecentFiles)
	apiGroup.GET("/files/:id", handlers.Upload.HandleGetFile)
	if deps.AllowFileDeletion {
		apiGroup.DELETE("/files/:id", handlers.Upload.HandleDeleteFile)
	}

	// Conversion jobs
	apiGroup.POST("/convert", handlers.Convert.HandleStartConvert)
	apiGroup.GET("/convert/:jobId/status", handlers.Convert.HandleJobStatus)
	apiGroup.GET("/convert/:jobId/download", handlers.Convert.HandleDownload)

	// Job progress push
	apiGroup.GET("/ws/jobs/:jobId", handlers.JobWS.HandleJobSocket)
}
