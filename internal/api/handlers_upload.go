// handlers_upload.go - File upload operation handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pdf2deck/backend/internal/models"
	"github.com/pdf2deck/backend/internal/storage"
	"github.com/pdf2deck/backend/internal/uploadform"
)

// UploadHandlerImpl implements the UploadHandler interface
type UploadHandlerImpl struct {
	store storage.Store
}

// NewUploadHandler creates a new upload handler instance
func NewUploadHandler(store storage.Store) UploadHandler {
	return &UploadHandlerImpl{store: store}
}

// HandleUploadFile accepts a single PDF as multipart/form-data under the
// "file" field. The checks and their order match the page widget: missing
// file, then type, then size, each with the widget's message.
func (h *UploadHandlerImpl) HandleUploadFile(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return NewMissingFileError()
	}

	selected := uploadform.SelectedFile{
		Type: fh.Header.Get(echo.HeaderContentType),
		Name: fh.Filename,
		Size: fh.Size,
	}
	if !uploadform.ValidType(selected) {
		return NewInvalidTypeError()
	}
	if !uploadform.ValidSize(selected) {
		return NewFileTooLargeError()
	}

	src, err := fh.Open()
	if err != nil {
		return NewInternalError("failed to open uploaded file", err)
	}
	defer src.Close()

	info, err := h.store.Save(fh.Filename, src)
	if err != nil {
		return NewInternalError("failed to save file", err)
	}

	return c.JSON(http.StatusCreated, info)
}

// HandleGetRecentFiles returns recently uploaded PDFs, newest first.
func (h *UploadHandlerImpl) HandleGetRecentFiles(c echo.Context) error {
	files, err := h.store.List(50)
	if err != nil {
		return NewInternalError("failed to list files", err)
	}

	uploads := make([]*models.FileInfo, 0, len(files))
	for _, f := range files {
		if f.Kind == models.FileKindUpload {
			uploads = append(uploads, f)
		}
	}
	if len(uploads) > 20 {
		uploads = uploads[:20]
	}

	return c.JSON(http.StatusOK, uploads)
}

// HandleGetFile returns metadata for a specific file
func (h *UploadHandlerImpl) HandleGetFile(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	info, err := h.store.Get(id)
	if err != nil {
		return NewNotFoundError("file", id)
	}

	return c.JSON(http.StatusOK, info)
}

// HandleDeleteFile deletes a file from storage
func (h *UploadHandlerImpl) HandleDeleteFile(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	if err := h.store.Delete(id); err != nil {
		return NewNotFoundError("file", id)
	}

	return c.NoContent(http.StatusNoContent)
}
