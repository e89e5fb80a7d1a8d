package extraction

import (
	"github.com/seremi5/expense-management/internal/filecheck"
)

// Result is the sole output contract of a pipeline invocation.
//
// Errors and Warnings are validation-rule findings attached to a successful
// extraction: errors block downstream approval and route the record to
// manual review, warnings are advisory. Only pipeline-level failures (file
// invalid, extraction exhausted, malformed provider output) set
// Success=false, with a short user-facing message in Err.
type Result[T any] struct {
	Success    bool               `json:"success"`
	Data       *T                 `json:"data,omitempty"`
	Err        string             `json:"error,omitempty"`
	Errors     []string           `json:"errors,omitempty"`
	Warnings   []string           `json:"warnings,omitempty"`
	DurationMS int64              `json:"duration_ms"`
	Metadata   filecheck.Metadata `json:"metadata"`
}
