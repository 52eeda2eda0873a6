// Package uploadform implements the interaction controller for the PDF
// upload widget: client-visible validation, alert banners, and the submit
// button's Idle/Loading state machine.
package uploadform

import "strings"

// PDFContentType is the declared media type accepted for uploads.
const PDFContentType = "application/pdf"

// MaxFileSize is the inclusive upload size limit (20 MiB).
const MaxFileSize = 20 * 1024 * 1024

// User-facing validation messages. The API layer reuses these so the
// server-side checks surface identical text.
const (
	MsgMissingFile  = "Please select a PDF file to convert."
	MsgInvalidType  = "Please select a valid PDF file."
	MsgFileTooLarge = "File size must be less than 20MB."
)

// SelectedFile is the structural contract for the file held by the input:
// declared media type, file name, and byte size.
type SelectedFile struct {
	Type string
	Name string
	Size int64
}

// ValidType reports whether the file is acceptable as a PDF. Browsers
// sometimes omit or misreport the media type, so a .pdf name suffix
// (case-insensitive) is an accepted fallback signal.
func ValidType(f SelectedFile) bool {
	if f.Type == PDFContentType {
		return true
	}
	return strings.HasSuffix(strings.ToLower(f.Name), ".pdf")
}

// ValidSize reports whether the file is within the size limit. A file of
// exactly MaxFileSize bytes is accepted.
func ValidSize(f SelectedFile) bool {
	return f.Size <= MaxFileSize
}
