// Package service glues the extraction pipeline to persistence: it reads a
// local file, runs the pipeline for the requested document kind, derives the
// record status, and stores the outcome.
package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/seremi5/expense-management/constants"
	"github.com/seremi5/expense-management/internal/common"
	"github.com/seremi5/expense-management/internal/extraction"
	"github.com/seremi5/expense-management/internal/repository"
)

type Extractor struct {
	pipeline *extraction.Pipeline
	records  repository.ExtractionRecordRepository
	log      *slog.Logger
}

func NewExtractor(pipeline *extraction.Pipeline, records repository.ExtractionRecordRepository, log *slog.Logger) *Extractor {
	if log == nil {
		log = slog.Default()
	}
	return &Extractor{pipeline: pipeline, records: records, log: log}
}

// ProcessPath extracts one local file and persists the outcome. The returned
// record mirrors what was stored; a non-nil error means the file could not
// be read or the store rejected the record, not that extraction failed.
func (s *Extractor) ProcessPath(ctx context.Context, path string, kind constants.DocumentKind) (*repository.ExtractionRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		s.log.Error("service.read_failed", "path", path, "error", err)
		return nil, common.NotFoundErrorf("file %s could not be read", path)
	}

	name := filepath.Base(path)
	mime := constants.MapExtToMIME(filepath.Ext(path))
	if mime == "" {
		return nil, common.InvalidArgumentErrorf("unsupported file extension %q", filepath.Ext(path))
	}

	file := extraction.UploadedFile{Name: name, MIMEType: mime, Size: int64(len(data))}
	rec := s.extract(ctx, file, data, kind)

	if s.records != nil {
		if err := s.records.Insert(ctx, rec); err != nil {
			return nil, common.InternalErrorf("storing extraction record: %v", err)
		}
	}
	return rec, nil
}

func (s *Extractor) extract(ctx context.Context, file extraction.UploadedFile, data []byte, kind constants.DocumentKind) *repository.ExtractionRecord {
	switch kind {
	case constants.KindInvoice:
		return record(file, kind, s.pipeline.ExtractInvoice(ctx, file, data))
	case constants.KindReceipt:
		return record(file, kind, s.pipeline.ExtractReceipt(ctx, file, data))
	default:
		return record(file, constants.KindDocument, s.pipeline.ExtractDocument(ctx, file, data))
	}
}

// record flattens a typed pipeline result into a storable row. Success with
// validation errors routes to manual review rather than counting as failure.
func record[T any](file extraction.UploadedFile, kind constants.DocumentKind, res extraction.Result[T]) *repository.ExtractionRecord {
	rec := &repository.ExtractionRecord{
		FileName:   file.Name,
		Kind:       kind,
		Errors:     res.Errors,
		Warnings:   res.Warnings,
		Failure:    res.Err,
		DurationMS: res.DurationMS,
	}
	switch {
	case !res.Success:
		rec.Status = constants.RecordStatusFailed
	case len(res.Errors) > 0:
		rec.Status = constants.RecordStatusNeedsReview
	default:
		rec.Status = constants.RecordStatusExtracted
	}
	if res.Data != nil {
		if payload, err := json.Marshal(res.Data); err == nil {
			rec.Payload = payload
		}
	}
	return rec
}
