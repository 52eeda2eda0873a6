// handlers_convert.go - Conversion job handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pdf2deck/backend/internal/convert"
	"github.com/pdf2deck/backend/internal/models"
	"github.com/pdf2deck/backend/internal/storage"
)

// ConvertHandlerImpl implements the ConvertHandler interface
type ConvertHandlerImpl struct {
	store storage.Store
	jobs  *convert.Manager
}

// NewConvertHandler creates a new convert handler instance
func NewConvertHandler(store storage.Store, jobs *convert.Manager) ConvertHandler {
	return &ConvertHandlerImpl{store: store, jobs: jobs}
}

type startConvertRequest struct {
	FileID string `json:"fileId"`
}

// HandleStartConvert starts an async conversion job for an uploaded PDF.
func (h *ConvertHandlerImpl) HandleStartConvert(c echo.Context) error {
	var req startConvertRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if req.FileID == "" {
		return NewValidationError("fileId")
	}

	info, err := h.store.Get(req.FileID)
	if err != nil {
		return NewNotFoundError("file", req.FileID)
	}
	if info.Kind != models.FileKindUpload {
		return NewBadRequestError("file is not an uploaded PDF", nil)
	}

	job := h.jobs.StartJob(info.ID, info.Name)

	return c.JSON(http.StatusAccepted, map[string]interface{}{
		"jobId":  job.ID,
		"status": job.Status,
	})
}

// HandleJobStatus returns a snapshot of a conversion job.
func (h *ConvertHandlerImpl) HandleJobStatus(c echo.Context) error {
	id := c.Param("jobId")
	if id == "" {
		return NewValidationError("jobId")
	}

	job, ok := h.jobs.Snapshot(id)
	if !ok {
		return NewNotFoundError("job", id)
	}

	return c.JSON(http.StatusOK, job)
}

// HandleDownload serves the generated deck as an attachment. Outputs are
// transient; an expired deck reads as not found.
func (h *ConvertHandlerImpl) HandleDownload(c echo.Context) error {
	id := c.Param("jobId")
	if id == "" {
		return NewValidationError("jobId")
	}

	job, ok := h.jobs.Snapshot(id)
	if !ok {
		return NewNotFoundError("job", id)
	}
	if job.Status == convert.StatusError {
		return NewConflictError("conversion failed: " + job.Error)
	}
	if job.Status != convert.StatusComplete {
		return NewConflictError("conversion not complete")
	}

	path, err := h.store.GetFilePath(job.OutputID)
	if err != nil {
		return NewNotFoundError("file", job.OutputID)
	}

	return c.Attachment(path, job.OutputName)
}
