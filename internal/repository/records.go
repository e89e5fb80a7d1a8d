package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/seremi5/expense-management/constants"
)

// ExtractionRecord is one stored pipeline outcome. Payload holds the
// extracted document JSON and is nil when the pipeline failed.
type ExtractionRecord struct {
	ID         uuid.UUID
	FileName   string
	Kind       constants.DocumentKind
	Status     constants.RecordStatus
	Payload    []byte
	Errors     []string
	Warnings   []string
	Failure    string
	DurationMS int64
	CreatedAt  time.Time
}

type ExtractionRecordRepository interface {
	// Init creates the backing table when it does not exist yet.
	Init(ctx context.Context) error
	Insert(ctx context.Context, rec *ExtractionRecord) error
	ListRecent(ctx context.Context, limit int) ([]ExtractionRecord, error)
}

const pgRecordsDDL = `
CREATE TABLE IF NOT EXISTS extraction_records (
	id          UUID PRIMARY KEY,
	file_name   TEXT NOT NULL,
	kind        TEXT NOT NULL,
	status      TEXT NOT NULL,
	payload     JSONB,
	errors      TEXT[] NOT NULL DEFAULT '{}',
	warnings    TEXT[] NOT NULL DEFAULT '{}',
	failure     TEXT NOT NULL DEFAULT '',
	duration_ms BIGINT NOT NULL DEFAULT 0,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`

type pgRecords struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewExtractionRecordRepository(pool *pgxpool.Pool, log *slog.Logger) ExtractionRecordRepository {
	if log == nil {
		log = slog.Default()
	}
	return &pgRecords{pool: pool, log: log}
}

func (r *pgRecords) Init(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, pgRecordsDDL)
	if err != nil {
		r.log.Error("repository.records.init_failed", "error", err)
	}
	return err
}

func (r *pgRecords) Insert(ctx context.Context, rec *ExtractionRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO extraction_records
			(id, file_name, kind, status, payload, errors, warnings, failure, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		rec.ID, rec.FileName, string(rec.Kind), string(rec.Status),
		rec.Payload, rec.Errors, rec.Warnings, rec.Failure, rec.DurationMS, rec.CreatedAt,
	)
	if err != nil {
		r.log.Error("repository.records.insert_failed", "file", rec.FileName, "error", err)
		return err
	}
	r.log.Info("repository.records.inserted",
		"record_id", rec.ID, "file", rec.FileName, "status", string(rec.Status))
	return nil
}

func (r *pgRecords) ListRecent(ctx context.Context, limit int) ([]ExtractionRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, file_name, kind, status, payload, errors, warnings, failure, duration_ms, created_at
		FROM extraction_records
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		r.log.Error("repository.records.list_failed", "error", err)
		return nil, err
	}
	defer rows.Close()

	var out []ExtractionRecord
	for rows.Next() {
		var rec ExtractionRecord
		var kind, status string
		if err := rows.Scan(&rec.ID, &rec.FileName, &kind, &status,
			&rec.Payload, &rec.Errors, &rec.Warnings, &rec.Failure,
			&rec.DurationMS, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.Kind = constants.DocumentKind(kind)
		rec.Status = constants.RecordStatus(status)
		out = append(out, rec)
	}
	return out, rows.Err()
}
