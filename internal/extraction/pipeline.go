// Package extraction drives one document through the extraction pipeline:
// file integrity check, provider upload, retried extraction, parse, business
// validation, and guaranteed remote cleanup.
package extraction

import (
	"context"
	"log/slog"
	"time"

	"github.com/seremi5/expense-management/constants"
	"github.com/seremi5/expense-management/internal/filecheck"
	"github.com/seremi5/expense-management/internal/provider"
)

// UploadedFile is the caller-owned description of one upload. The byte
// buffer travels separately and neither outlives the invocation.
type UploadedFile struct {
	Name     string
	MIMEType string
	Size     int64
}

// Pipeline composes the file validator, provider client, and retry policy.
// Invocations are stateless and safe to run concurrently; the only teardown
// they own is the remote handle created during upload.
type Pipeline struct {
	files  *filecheck.Validator
	client provider.Client
	retry  RetryPolicy
	log    *slog.Logger
}

func NewPipeline(files *filecheck.Validator, client provider.Client, retry RetryPolicy, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	if retry.Log == nil {
		retry.Log = log
	}
	return &Pipeline{files: files, client: client, retry: retry, log: log}
}

// ExtractInvoice runs the pipeline for an invoice upload.
func (p *Pipeline) ExtractInvoice(ctx context.Context, file UploadedFile, data []byte) Result[Invoice] {
	return run(ctx, p, file, data, constants.KindInvoice, ParseInvoice, ValidateInvoice)
}

// ExtractReceipt runs the pipeline for a receipt upload.
func (p *Pipeline) ExtractReceipt(ctx context.Context, file UploadedFile, data []byte) Result[Receipt] {
	return run(ctx, p, file, data, constants.KindReceipt, ParseReceipt, ValidateReceipt)
}

// ExtractDocument runs the pipeline for a document whose kind is unknown.
func (p *Pipeline) ExtractDocument(ctx context.Context, file UploadedFile, data []byte) Result[UnifiedDocument] {
	return run(ctx, p, file, data, constants.KindDocument, ParseUnified, ValidateUnified)
}

func run[T any](
	ctx context.Context,
	p *Pipeline,
	file UploadedFile,
	data []byte,
	kind constants.DocumentKind,
	parse func([]byte, *slog.Logger) (*T, error),
	validate func(*T) Report,
) (res Result[T]) {
	start := time.Now()
	defer func() {
		res.DurationMS = time.Since(start).Milliseconds()
	}()

	log := p.log.With("kind", string(kind), "file", file.Name)
	log.Info("pipeline.extract.start", "mime_type", file.MIMEType, "size", file.Size)

	// Step 1: structural integrity. No remote handle exists yet, so a
	// failure returns directly with whatever metadata was derived.
	meta, err := p.files.Validate(file.MIMEType, file.Size, data)
	res.Metadata = meta
	if err != nil {
		log.Warn("pipeline.extract.file_rejected", "error", err)
		res.Err = err.Error()
		return res
	}

	// Step 2: upload. The handle is captured before the error check so
	// cleanup can reference a file the provider created but never
	// finished activating.
	handle, err := p.client.Upload(ctx, data, file.MIMEType, file.Name)
	if handle.Name != "" {
		defer p.cleanup(ctx, handle, log)
	}
	if err != nil {
		log.Error("pipeline.extract.upload_failed", "error", err)
		res.Err = "document upload to the extraction service failed"
		return res
	}

	// Step 3: extraction with bounded retries.
	schema := SchemaFor(kind)
	raw, err := Retry(ctx, p.retry, func(ctx context.Context) (provider.RawResponse, error) {
		return p.client.Extract(ctx, handle, kind, schema)
	})
	if err != nil {
		log.Error("pipeline.extract.failed", "error", err)
		res.Err = "document extraction failed"
		return res
	}

	// Step 4: parse. Malformed provider output is a pipeline failure.
	doc, err := parse(raw.Body, log)
	if err != nil {
		log.Error("pipeline.extract.parse_failed", "error", err)
		res.Err = "extraction service returned data that could not be understood"
		return res
	}

	// Step 5: business validation, attached to a successful envelope.
	report := validate(doc)
	res.Success = true
	res.Data = doc
	res.Errors = report.Errors
	res.Warnings = report.Warnings

	log.Info("pipeline.extract.ok",
		"model", raw.Model,
		"errors", len(report.Errors),
		"warnings", len(report.Warnings),
	)
	return res
}

// cleanup deletes the remote handle exactly once on every exit path. It
// keeps working after caller cancellation and swallows its own failures so
// they never mask the pipeline's actual result.
func (p *Pipeline) cleanup(ctx context.Context, h provider.Handle, log *slog.Logger) {
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
	defer cancel()
	if err := p.client.Delete(dctx, h); err != nil {
		log.Warn("pipeline.cleanup.delete_failed", "remote_file", h.Name, "error", err)
		return
	}
	log.Debug("pipeline.cleanup.ok", "remote_file", h.Name)
}
