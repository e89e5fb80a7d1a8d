// Package gemini adapts the Google Gemini Files + GenerateContent APIs to
// the provider.Client contract.
package gemini

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/seremi5/expense-management/constants"
	"github.com/seremi5/expense-management/internal/provider"
)

// Config for the Gemini client.
type Config struct {
	APIKey       string        // if empty, falls back to env GEMINI_API_KEY via caller config
	Model        string        // e.g. "gemini-2.0-flash"
	Temperature  float32       // 0..2
	UploadPoll   time.Duration // interval between file-state polls after upload
	UploadExpiry time.Duration // give up waiting for ACTIVE after this long
}

type Client struct {
	cfg    Config
	genai  *genai.Client
	logger *slog.Logger

	// getFile is a test seam; defaults to the genai Files API.
	getFile func(ctx context.Context, name string) (*genai.File, error)
}

func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}
	if cfg.UploadPoll <= 0 {
		cfg.UploadPoll = 500 * time.Millisecond
	}
	if cfg.UploadExpiry <= 0 {
		cfg.UploadExpiry = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	gc, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Client{cfg: cfg, genai: gc, logger: logger, getFile: gc.GetFile}, nil
}

func (c *Client) Close() error { return c.genai.Close() }

// Upload pushes the buffer to the Files API and waits until the file
// reaches ACTIVE so a subsequent Extract can reference it.
func (c *Client) Upload(ctx context.Context, data []byte, mimeType, displayName string) (provider.Handle, error) {
	start := time.Now()
	f, err := c.genai.UploadFile(ctx, "", bytes.NewReader(data), &genai.UploadFileOptions{
		MIMEType:    mimeType,
		DisplayName: displayName,
	})
	if err != nil {
		return provider.Handle{}, c.classify("upload", err)
	}

	f, err = c.waitActive(ctx, f)
	if err != nil {
		if f == nil {
			return provider.Handle{}, err
		}
		// The file exists remotely even though it never became usable;
		// hand the caller a handle so cleanup can still delete it.
		return provider.Handle{Name: f.Name, URI: f.URI, MIMEType: mimeType}, err
	}

	c.logger.Info("gemini.upload.ok",
		"file", f.Name,
		"mime_type", mimeType,
		"bytes", len(data),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return provider.Handle{Name: f.Name, URI: f.URI, MIMEType: mimeType}, nil
}

func (c *Client) waitActive(ctx context.Context, f *genai.File) (*genai.File, error) {
	deadline := time.Now().Add(c.cfg.UploadExpiry)
	for f.State == genai.FileStateProcessing {
		if time.Now().After(deadline) {
			return f, &provider.Error{Op: "upload", Retryable: true,
				Err: fmt.Errorf("file %s still processing after %s", f.Name, c.cfg.UploadExpiry)}
		}
		select {
		case <-ctx.Done():
			return f, ctx.Err()
		case <-time.After(c.cfg.UploadPoll):
		}
		// GetFile returns a nil file on failure; keep the previous
		// snapshot so the caller can still clean up by name.
		nf, err := c.getFile(ctx, f.Name)
		if err != nil {
			return f, c.classify("upload", err)
		}
		f = nf
	}
	if f.State != genai.FileStateActive {
		return f, &provider.Error{Op: "upload", Retryable: false,
			Err: fmt.Errorf("file %s entered state %v", f.Name, f.State)}
	}
	return f, nil
}

// Extract asks the model for structured JSON output matching the schema,
// referencing the previously uploaded file.
func (c *Client) Extract(ctx context.Context, h provider.Handle, kind constants.DocumentKind, schema provider.Schema) (provider.RawResponse, error) {
	start := time.Now()
	model := c.genai.GenerativeModel(c.cfg.Model)
	model.SetTemperature(c.cfg.Temperature)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = toGenaiSchema(schema.Definition)

	resp, err := model.GenerateContent(ctx,
		genai.FileData{MIMEType: h.MIMEType, URI: h.URI},
		genai.Text(buildPrompt(kind)),
	)
	if err != nil {
		return provider.RawResponse{}, c.classify("extract", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return provider.RawResponse{}, &provider.Error{Op: "extract", Retryable: true,
			Err: errors.New("empty candidate list in response")}
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	c.logger.Info("gemini.extract.ok",
		"file", h.Name,
		"kind", string(kind),
		"model", c.cfg.Model,
		"response_bytes", sb.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return provider.RawResponse{Body: []byte(sb.String()), Model: c.cfg.Model}, nil
}

// Delete removes the remote file. Callers treat failures as advisory.
func (c *Client) Delete(ctx context.Context, h provider.Handle) error {
	if err := c.genai.DeleteFile(ctx, h.Name); err != nil {
		return c.classify("delete", err)
	}
	c.logger.Debug("gemini.delete.ok", "file", h.Name)
	return nil
}

// classify maps transport failures to provider.Error with a retry decision:
// rate limits and server faults are transient, client faults are terminal.
func (c *Client) classify(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &provider.Error{Op: op, Retryable: false, Err: err}
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		retryable := gerr.Code == 429 || gerr.Code >= 500
		return &provider.Error{Op: op, StatusCode: gerr.Code, Retryable: retryable, Err: err}
	}
	var nerr net.Error
	if errors.As(err, &nerr) {
		return &provider.Error{Op: op, Retryable: true, Err: err}
	}
	// Unclassified transport faults are assumed transient.
	return &provider.Error{Op: op, Retryable: true, Err: err}
}
