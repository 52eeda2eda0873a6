package models

import "time"

// File kinds stored by the service.
const (
	FileKindUpload = "upload" // source PDF
	FileKindOutput = "output" // generated PowerPoint deck
)

// File statuses.
const (
	FileStatusUploaded   = "uploaded"
	FileStatusConverting = "converting"
	FileStatusConverted  = "converted"
	FileStatusError      = "error"
)

// FileInfo represents metadata about a stored file.
type FileInfo struct {
	ID         string    `json:"id" msgpack:"id"`
	Name       string    `json:"name" msgpack:"name"`
	Kind       string    `json:"kind" msgpack:"kind"`
	Size       int64     `json:"size" msgpack:"size"`
	UploadedAt time.Time `json:"uploadedAt" msgpack:"uploadedAt"`
	Status     string    `json:"status" msgpack:"status"`
}
