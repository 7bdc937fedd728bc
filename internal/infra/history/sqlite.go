package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/xavierca1/leadhub/internal/entity"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS upload_history (
	seq             INTEGER PRIMARY KEY AUTOINCREMENT,
	id              TEXT NOT NULL UNIQUE,
	file_name       TEXT NOT NULL,
	file_size       INTEGER NOT NULL,
	total_rows      INTEGER NOT NULL,
	valid_rows      INTEGER NOT NULL,
	inserted_rows   INTEGER NOT NULL,
	updated_rows    INTEGER NOT NULL,
	skipped_rows    INTEGER NOT NULL,
	error_rows      INTEGER NOT NULL,
	success_rate    REAL NOT NULL,
	processing_time INTEGER NOT NULL,
	status          TEXT NOT NULL,
	uploaded_at     TEXT NOT NULL
);
`

const historyColumns = `id, file_name, file_size, total_rows, valid_rows, inserted_rows, updated_rows,
	skipped_rows, error_rows, success_rate, processing_time, status, uploaded_at`

// SQLiteStore persiste o histórico em SQLite, mantendo só as MaxEntries
// entradas mais recentes.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore abre (ou cria) o banco em path. Use ":memory:" nos testes.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite aceita um único escritor; com :memory: cada conexão seria outro banco.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create upload_history: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Append(ctx context.Context, e entity.UploadHistoryEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO upload_history (`+historyColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.FileName, e.FileSize, e.TotalRows, e.ValidRows, e.InsertedRows, e.UpdatedRows,
		e.SkippedRows, e.ErrorRows, e.SuccessRate, e.ProcessingTime, e.Status,
		e.UploadedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert history entry: %w", err)
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM upload_history WHERE seq NOT IN (
		SELECT seq FROM upload_history ORDER BY seq DESC LIMIT ?)`, MaxEntries)
	if err != nil {
		return fmt.Errorf("failed to trim history: %w", err)
	}

	return tx.Commit()
}

func (s *SQLiteStore) List(ctx context.Context, limit int) ([]entity.UploadHistoryEntry, error) {
	return s.query(ctx, clampLimit(limit))
}

func (s *SQLiteStore) Stats(ctx context.Context) (entity.UploadStats, error) {
	entries, err := s.query(ctx, MaxEntries)
	if err != nil {
		return entity.UploadStats{}, err
	}
	return entity.SummarizeUploads(entries), nil
}

func (s *SQLiteStore) query(ctx context.Context, limit int) ([]entity.UploadHistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+historyColumns+` FROM upload_history ORDER BY seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	entries := []entity.UploadHistoryEntry{}
	for rows.Next() {
		var (
			e          entity.UploadHistoryEntry
			uploadedAt string
		)
		if err := rows.Scan(&e.ID, &e.FileName, &e.FileSize, &e.TotalRows, &e.ValidRows,
			&e.InsertedRows, &e.UpdatedRows, &e.SkippedRows, &e.ErrorRows, &e.SuccessRate,
			&e.ProcessingTime, &e.Status, &uploadedAt); err != nil {
			return nil, err
		}
		if e.UploadedAt, err = time.Parse(time.RFC3339Nano, uploadedAt); err != nil {
			return nil, fmt.Errorf("invalid uploaded_at %q: %w", uploadedAt, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
