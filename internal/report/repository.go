// Package report archives finished council runs in PostgreSQL. The archive
// is optional: runs never depend on it, and the API serves analyses without
// it when DATABASE_URL is not configured.
package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when no archived report matches the requested id
var ErrNotFound = errors.New("report not found")

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Report is a finished council run stored in the archive
type Report struct {
	ID          string    `json:"id"`
	CompanyName string    `json:"company_name"`
	Mode        string    `json:"mode"`
	Language    string    `json:"language"`
	Model       string    `json:"model"`
	Stage1      string    `json:"stage_1"`
	Stage2      string    `json:"stage_2"`
	Stage3      string    `json:"stage_3"`
	Stage4      string    `json:"stage_4"`
	CreatedAt   time.Time `json:"created_at"`
}

// Summary is an archive index row without the stage bodies
type Summary struct {
	ID          string    `json:"id"`
	CompanyName string    `json:"company_name"`
	Mode        string    `json:"mode"`
	Language    string    `json:"language"`
	Model       string    `json:"model"`
	CreatedAt   time.Time `json:"created_at"`
}

// Repository handles report persistence
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository instance
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Pool returns the underlying database pool
func (r *Repository) Pool() *pgxpool.Pool {
	return r.db
}

// EnsureSchema creates the archive schema and table when missing
// ⭐ SSOT: 리포트 아카이브 테이블 정의는 여기서만
func (r *Repository) EnsureSchema(ctx context.Context) error {
	schema := `
		CREATE SCHEMA IF NOT EXISTS council;

		CREATE TABLE IF NOT EXISTS council.reports (
			id TEXT PRIMARY KEY,
			company_name TEXT NOT NULL DEFAULT '',
			mode TEXT NOT NULL,
			language TEXT NOT NULL,
			model TEXT NOT NULL,
			stage_1 TEXT NOT NULL,
			stage_2 TEXT NOT NULL,
			stage_3 TEXT NOT NULL,
			stage_4 TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_reports_created_at
			ON council.reports (created_at DESC);
	`

	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure report schema: %w", err)
	}

	return nil
}

// Save archives a finished run and returns the stored report id.
// A missing id or creation time is assigned here.
// ⭐ SSOT: 완료된 리포트 저장은 이 함수에서만
func (r *Repository) Save(ctx context.Context, rep *Report) (string, error) {
	if rep.ID == "" {
		rep.ID = uuid.NewString()
	}
	if rep.CreatedAt.IsZero() {
		rep.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO council.reports (
			id, company_name, mode, language, model,
			stage_1, stage_2, stage_3, stage_4, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Exec(ctx, query,
		rep.ID, rep.CompanyName, rep.Mode, rep.Language, rep.Model,
		rep.Stage1, rep.Stage2, rep.Stage3, rep.Stage4, rep.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("insert report: %w", err)
	}

	return rep.ID, nil
}

// List returns the most recent archived reports, newest first
func (r *Repository) List(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	query := `
		SELECT id, company_name, mode, language, model, created_at
		FROM council.reports
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.CompanyName, &s.Mode, &s.Language, &s.Model, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan report summary: %w", err)
		}
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return summaries, nil
}

// Get retrieves a single archived report. Malformed ids cannot match a
// stored report, so they report ErrNotFound without touching the database.
func (r *Repository) Get(ctx context.Context, id string) (*Report, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	query := `
		SELECT id, company_name, mode, language, model,
			stage_1, stage_2, stage_3, stage_4, created_at
		FROM council.reports
		WHERE id = $1
	`

	rep := &Report{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&rep.ID, &rep.CompanyName, &rep.Mode, &rep.Language, &rep.Model,
		&rep.Stage1, &rep.Stage2, &rep.Stage3, &rep.Stage4, &rep.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query report: %w", err)
	}

	return rep, nil
}

// DeleteOlderThan removes reports created before the cutoff and returns
// the number of rows removed
func (r *Repository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM council.reports WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete old reports: %w", err)
	}

	return tag.RowsAffected(), nil
}
