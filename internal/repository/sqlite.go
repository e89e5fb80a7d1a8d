package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/seremi5/expense-management/constants"
)

const sqliteRecordsDDL = `
CREATE TABLE IF NOT EXISTS extraction_records (
	id          TEXT PRIMARY KEY,
	file_name   TEXT NOT NULL,
	kind        TEXT NOT NULL,
	status      TEXT NOT NULL,
	payload     BLOB,
	errors      TEXT NOT NULL DEFAULT '[]',
	warnings    TEXT NOT NULL DEFAULT '[]',
	failure     TEXT NOT NULL DEFAULT '',
	duration_ms INTEGER NOT NULL DEFAULT 0,
	created_at  TEXT NOT NULL
)`

// OpenLocal opens (or creates) a SQLite file database. Used by the one-shot
// CLI so local runs keep history without a Postgres instance.
func OpenLocal(path string, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		logger.Error("failed to open local database", "path", path, "error", err)
		return nil, err
	}
	// SQLite handles one writer at a time.
	db.SetMaxOpenConns(1)
	logger.Debug("local database opened", "path", path)
	return db, nil
}

type sqliteRecords struct {
	db  *sql.DB
	log *slog.Logger
}

func NewLocalRecordRepository(db *sql.DB, log *slog.Logger) ExtractionRecordRepository {
	if log == nil {
		log = slog.Default()
	}
	return &sqliteRecords{db: db, log: log}
}

func (r *sqliteRecords) Init(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, sqliteRecordsDDL)
	if err != nil {
		r.log.Error("repository.records.init_failed", "error", err)
	}
	return err
}

func (r *sqliteRecords) Insert(ctx context.Context, rec *ExtractionRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	errs, err := json.Marshal(rec.Errors)
	if err != nil {
		return err
	}
	warns, err := json.Marshal(rec.Warnings)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO extraction_records
			(id, file_name, kind, status, payload, errors, warnings, failure, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID.String(), rec.FileName, string(rec.Kind), string(rec.Status),
		rec.Payload, string(errs), string(warns), rec.Failure, rec.DurationMS,
		rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		r.log.Error("repository.records.insert_failed", "file", rec.FileName, "error", err)
		return err
	}
	r.log.Info("repository.records.inserted",
		"record_id", rec.ID, "file", rec.FileName, "status", string(rec.Status))
	return nil
}

func (r *sqliteRecords) ListRecent(ctx context.Context, limit int) ([]ExtractionRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, file_name, kind, status, payload, errors, warnings, failure, duration_ms, created_at
		FROM extraction_records
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		r.log.Error("repository.records.list_failed", "error", err)
		return nil, err
	}
	defer rows.Close()

	var out []ExtractionRecord
	for rows.Next() {
		var (
			rec          ExtractionRecord
			id, kind     string
			status       string
			errs, warns  string
			createdAt    string
		)
		if err := rows.Scan(&id, &rec.FileName, &kind, &status,
			&rec.Payload, &errs, &warns, &rec.Failure, &rec.DurationMS, &createdAt); err != nil {
			return nil, err
		}
		if rec.ID, err = uuid.Parse(id); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(errs), &rec.Errors); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(warns), &rec.Warnings); err != nil {
			return nil, err
		}
		if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, err
		}
		rec.Kind = constants.DocumentKind(kind)
		rec.Status = constants.RecordStatus(status)
		out = append(out, rec)
	}
	return out, rows.Err()
}
