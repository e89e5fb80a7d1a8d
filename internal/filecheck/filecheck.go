// Package filecheck validates uploaded document buffers before they are
// sent to the extraction provider: MIME allow-list, size ceiling, and
// format-specific structural checks (PDF page count/encryption/resolution,
// image dimensions).
package filecheck

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/seremi5/expense-management/constants"
)

// Metadata describes a validated upload. Fields are zero-valued when not
// applicable to the format (e.g. PageCount for images).
type Metadata struct {
	MIMEType  string `json:"mime_type"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
	PageCount int    `json:"page_count,omitempty"`
	Format    string `json:"format,omitempty"`
}

// Limits holds the configured validation ceilings and floors.
type Limits struct {
	MaxFileSize int64 // bytes
	MaxPDFPages int
	MinWidth    int
	MinHeight   int
}

// InvalidFileError carries a user-facing reason for rejecting an upload.
type InvalidFileError struct {
	Reason string
}

func (e *InvalidFileError) Error() string { return e.Reason }

func invalidf(format string, args ...any) error {
	return &InvalidFileError{Reason: fmt.Sprintf(format, args...)}
}

// Validator checks an uploaded byte buffer against Limits.
type Validator struct {
	limits Limits
	log    *slog.Logger
}

func NewValidator(limits Limits, log *slog.Logger) *Validator {
	if log == nil {
		log = slog.Default()
	}
	return &Validator{limits: limits, log: log}
}

// Validate checks declared MIME type, declared size, and the buffer itself.
// On failure the returned Metadata still carries whatever could be derived
// (declared MIME, page count) so callers can report it.
func (v *Validator) Validate(declaredMime string, declaredSize int64, data []byte) (Metadata, error) {
	meta := Metadata{MIMEType: declaredMime}

	if !constants.MIMETypeAllowed(declaredMime) {
		return meta, invalidf("unsupported file type %q; allowed types are %s",
			declaredMime, strings.Join(constants.AllowedMIMETypes, ", "))
	}

	if v.limits.MaxFileSize > 0 && declaredSize > v.limits.MaxFileSize {
		return meta, invalidf("file size exceeds limit of %dMB", v.limits.MaxFileSize/(1024*1024))
	}

	if strings.EqualFold(declaredMime, "application/pdf") {
		return v.validatePDF(meta, data)
	}
	return v.validateImage(meta, data)
}
