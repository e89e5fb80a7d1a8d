// Package provider defines the boundary to the remote document-extraction
// service. The service is treated as an untrusted, fallible, rate-limited
// dependency with an upload/extract/delete contract.
package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/seremi5/expense-management/constants"
)

// Handle is an opaque reference to a file held by the remote provider.
// It is owned exclusively by the pipeline invocation that created it and
// must be deleted exactly once when the invocation finishes.
type Handle struct {
	Name     string
	URI      string
	MIMEType string
}

// Schema tells the provider what fields to return for a document kind.
// Definition is a JSON-Schema (draft 2020-12 subset) as a generic map.
type Schema struct {
	Name       string
	Definition map[string]any
}

// RawResponse is the provider's structured-output payload, prior to any
// parsing or validation on our side.
type RawResponse struct {
	Body  []byte
	Model string
}

// Client is the extraction-provider contract. Implementations classify
// their own failures as retryable or terminal via *Error.
type Client interface {
	Upload(ctx context.Context, data []byte, mimeType, displayName string) (Handle, error)
	Extract(ctx context.Context, h Handle, kind constants.DocumentKind, schema Schema) (RawResponse, error)
	// Delete is best-effort: callers log failures and never propagate them.
	Delete(ctx context.Context, h Handle) error
}

// Error is a provider failure tagged with a retry decision. The retry loop
// is a pure function of Retryable; it never inspects provider internals.
type Error struct {
	Op         string // "upload" | "extract" | "delete"
	StatusCode int    // upstream HTTP status when known, else 0
	Retryable  bool
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider %s failed (status %d): %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("provider %s failed: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsTerminal reports whether err is a provider error explicitly marked
// non-retryable. Unmarked errors default to retryable (transient network
// faults arrive unwrapped from transports).
func IsTerminal(err error) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return !pe.Retryable
	}
	return false
}
