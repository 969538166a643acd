package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"dealdesk/pkg/core/logging"
	"dealdesk/pkg/core/underwrite"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when no report has the requested ID.
var ErrNotFound = errors.New("report not found")

// DefaultListLimit applies when List is called with limit <= 0.
const DefaultListLimit = 50

// ReportRepo stores underwriting reports.
// Supports Hybrid Vault: DB (Primary) + File System (Fallback/Local)
type ReportRepo struct {
	pool    *pgxpool.Pool
	fileDir string
}

// NewReportRepo creates a report repository.
// If pool is nil and dir is empty, files go to .cache/reports.
func NewReportRepo(pool *pgxpool.Pool, dir string) *ReportRepo {
	if pool == nil && dir == "" {
		dir = filepath.Join(".cache", "reports")
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logging.Named("store").Warnw("report dir unavailable", "dir", dir, "error", err)
		}
	}
	return &ReportRepo{pool: pool, fileDir: dir}
}

// Save upserts a report by ID.
func (r *ReportRepo) Save(ctx context.Context, rep *underwrite.Report) error {
	if rep == nil || rep.ID == "" {
		return fmt.Errorf("report has no id")
	}
	if _, err := uuid.Parse(rep.ID); err != nil {
		return fmt.Errorf("report id %q: %w", rep.ID, err)
	}

	data, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	// 1. DB
	if r.pool != nil {
		query := `
			INSERT INTO underwriting_reports (id, name, report_json, created_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id)
			DO UPDATE SET
				name = EXCLUDED.name,
				report_json = EXCLUDED.report_json
		`
		created := rep.GeneratedAt
		if created.IsZero() {
			created = time.Now()
		}
		if _, err := r.pool.Exec(ctx, query, rep.ID, rep.Deal.Name, data, created); err != nil {
			return fmt.Errorf("failed to save report: %w", err)
		}
	}

	// 2. File (always when configured)
	if r.fileDir != "" {
		if err := os.WriteFile(r.path(rep.ID), data, 0644); err != nil {
			return fmt.Errorf("failed to save report file: %w", err)
		}
	}
	return nil
}

// Load returns the report with the given ID.
func (r *ReportRepo) Load(ctx context.Context, id string) (*underwrite.Report, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	var data []byte
	if r.pool != nil {
		err := r.pool.QueryRow(ctx, `SELECT report_json FROM underwriting_reports WHERE id = $1`, id).Scan(&data)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
			}
			return nil, fmt.Errorf("failed to load report: %w", err)
		}
	} else {
		b, err := os.ReadFile(r.path(id))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
			}
			return nil, fmt.Errorf("failed to read report file: %w", err)
		}
		data = b
	}

	var rep underwrite.Report
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return &rep, nil
}

// List returns summaries of the newest reports first.
func (r *ReportRepo) List(ctx context.Context, limit int) ([]underwrite.Summary, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if r.pool != nil {
		return r.listDB(ctx, limit)
	}
	return r.listFiles(limit)
}

func (r *ReportRepo) listDB(ctx context.Context, limit int) ([]underwrite.Summary, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT report_json
		FROM underwriting_reports
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	out := []underwrite.Summary{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var rep underwrite.Report
		if err := json.Unmarshal(data, &rep); err != nil {
			return nil, fmt.Errorf("failed to unmarshal report: %w", err)
		}
		out = append(out, rep.Summarize())
	}
	return out, rows.Err()
}

func (r *ReportRepo) listFiles(limit int) ([]underwrite.Summary, error) {
	entries, err := os.ReadDir(r.fileDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []underwrite.Summary{}, nil
		}
		return nil, err
	}

	out := []underwrite.Summary{}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(r.fileDir, e.Name()))
		if err != nil {
			continue
		}
		var rep underwrite.Report
		if err := json.Unmarshal(data, &rep); err != nil || rep.ID == "" {
			continue
		}
		out = append(out, rep.Summarize())
	}

	sort.Slice(out, func(i, j int) bool { return out[i].GeneratedAt.After(out[j].GeneratedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *ReportRepo) path(id string) string {
	return filepath.Join(r.fileDir, id+".json")
}
