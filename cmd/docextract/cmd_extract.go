package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/seremi5/expense-management/constants"
	"github.com/seremi5/expense-management/internal/common"
	"github.com/seremi5/expense-management/internal/extraction"
	"github.com/seremi5/expense-management/internal/filecheck"
	"github.com/seremi5/expense-management/internal/ingest"
	"github.com/seremi5/expense-management/internal/provider/gemini"
	repo "github.com/seremi5/expense-management/internal/repository"
	"github.com/seremi5/expense-management/internal/service"
)

var extractFlags struct {
	kind    string
	dbPath  string
	verbose bool
}

var extractCmd = &cobra.Command{
	Use:   "extract <file-or-directory>...",
	Short: "Run the extraction pipeline against local files",
	Long: `Extract structured data from one or more documents.

Directories are scanned recursively for supported files (pdf, jpg, jpeg,
png, webp). Each outcome is printed as JSON and recorded in the local
history database.

The provider API key is read from the GEMINI_API_KEY environment variable
(a .env file in the working directory is honored).`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

func init() {
	f := extractCmd.Flags()
	f.StringVar(&extractFlags.kind, "kind", "document", "Document kind: invoice, receipt, or document")
	f.StringVar(&extractFlags.dbPath, "db", ".docextract.db", "Local history database path")
	f.BoolVarP(&extractFlags.verbose, "verbose", "v", false, "Log pipeline steps to stderr")
}

func runExtract(cmd *cobra.Command, args []string) error {
	kind, err := parseKind(extractFlags.kind)
	if err != nil {
		return err
	}

	logger := newLogger(extractFlags.verbose)
	ctx := cmd.Context()

	paths, err := collectPaths(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no extractable files found")
	}

	extractor, cleanup, err := buildExtractor(ctx, extractFlags.dbPath, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	failed := 0
	for _, path := range paths {
		rec, err := extractor.ProcessPath(ctx, path, kind)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed++
			continue
		}
		if rec.Status == constants.RecordStatusFailed {
			failed++
		}
		if err := enc.Encode(newRecordView(path, rec)); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(paths))
	}
	return nil
}

func parseKind(s string) (constants.DocumentKind, error) {
	switch constants.DocumentKind(s) {
	case constants.KindInvoice, constants.KindReceipt, constants.KindDocument:
		return constants.DocumentKind(s), nil
	}
	return "", fmt.Errorf("unknown kind %q: expected invoice, receipt, or document", s)
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func collectPaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		found, stats, err := ingest.ScanDirectory(arg)
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", arg, err)
		}
		if stats.Matched == 0 {
			fmt.Fprintf(os.Stderr, "%s: no extractable files (%d scanned)\n", arg, stats.Scanned)
		}
		paths = append(paths, found...)
	}
	return paths, nil
}

// buildExtractor assembles the full pipeline against the environment config
// and a local SQLite history store.
func buildExtractor(ctx context.Context, dbPath string, logger *slog.Logger) (*service.Extractor, func(), error) {
	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	client, err := gemini.NewClient(ctx, gemini.Config{
		APIKey:       cfg.Provider.APIKey,
		Model:        cfg.Provider.Model,
		Temperature:  cfg.Provider.Temperature,
		UploadPoll:   cfg.Provider.UploadPoll,
		UploadExpiry: cfg.Provider.UploadExpiry,
	}, logger)
	if err != nil {
		return nil, nil, err
	}

	db, err := repo.OpenLocal(dbPath, logger)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	records := repo.NewLocalRecordRepository(db, logger)
	if err := records.Init(ctx); err != nil {
		_ = client.Close()
		_ = db.Close()
		return nil, nil, err
	}

	files := filecheck.NewValidator(filecheck.Limits{
		MaxFileSize: cfg.Files.MaxFileSize,
		MaxPDFPages: cfg.Files.MaxPDFPages,
		MinWidth:    cfg.Files.MinWidth,
		MinHeight:   cfg.Files.MinHeight,
	}, logger)

	pipe := extraction.NewPipeline(files, client, extraction.RetryPolicy{
		MaxRetries: cfg.Provider.MaxRetries,
		BaseDelay:  cfg.Provider.RetryBase,
		Jitter:     cfg.Provider.RetryJitter,
		Log:        logger,
	}, logger)

	cleanup := func() {
		_ = client.Close()
		_ = db.Close()
	}
	return service.NewExtractor(pipe, records, logger), cleanup, nil
}

// recordView is the CLI's JSON shape for one outcome.
type recordView struct {
	Path       string          `json:"path"`
	Status     string          `json:"status"`
	Document   json.RawMessage `json:"document,omitempty"`
	Errors     []string        `json:"errors,omitempty"`
	Warnings   []string        `json:"warnings,omitempty"`
	Failure    string          `json:"failure,omitempty"`
	DurationMS int64           `json:"duration_ms"`
}

func newRecordView(path string, rec *repo.ExtractionRecord) recordView {
	return recordView{
		Path:       path,
		Status:     string(rec.Status),
		Document:   rec.Payload,
		Errors:     rec.Errors,
		Warnings:   rec.Warnings,
		Failure:    rec.Failure,
		DurationMS: rec.DurationMS,
	}
}
