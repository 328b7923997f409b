package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"hotel_ops/internal/models"

	"github.com/google/uuid"
)

type ReportSQLite struct {
	db *sql.DB
}

func NewReportSQLite(db *sql.DB) *ReportSQLite {
	return &ReportSQLite{db: db}
}

var _ ReportRepo = (*ReportSQLite)(nil)

const (
	reportColumns = `id, room_number, location, is_general, description, image_url, priority, employee_name, resolved, reported_at`

	insertReportSQL = `
		INSERT INTO problem_reports (` + reportColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, ?)
	`
	selectReportSQL  = `SELECT ` + reportColumns + ` FROM problem_reports WHERE id = ?`
	resolveReportSQL = `UPDATE problem_reports SET resolved = 1 WHERE id = ? AND resolved = 0`
)

func scanReport(row rowScanner) (models.ProblemReport, error) {
	var (
		p          models.ProblemReport
		roomNumber sql.NullString
		location   sql.NullString
		imageURL   sql.NullString
		employee   sql.NullString
	)
	if err := row.Scan(&p.ID, &roomNumber, &location, &p.IsGeneralReport, &p.Description,
		&imageURL, &p.Priority, &employee, &p.Resolved, &p.ReportedAt); err != nil {
		return models.ProblemReport{}, err
	}
	p.RoomNumber = roomNumber.String
	p.Location = location.String
	p.ImageURL = nullStringPtr(imageURL)
	p.EmployeeName = nullStringPtr(employee)
	p.ReportedAt = p.ReportedAt.UTC()
	return p, nil
}

func emptyAsNull(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (r *ReportSQLite) Create(ctx context.Context, p models.ProblemReport) (models.ProblemReport, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.ReportedAt.IsZero() {
		p.ReportedAt = time.Now().UTC()
	}
	p.Resolved = false
	_, err := r.db.ExecContext(ctx, insertReportSQL,
		p.ID,
		emptyAsNull(p.RoomNumber),
		emptyAsNull(p.Location),
		p.IsGeneralReport,
		p.Description,
		stringArg(p.ImageURL),
		p.Priority,
		stringArg(p.EmployeeName),
		p.ReportedAt.UTC(),
	)
	if err != nil {
		return models.ProblemReport{}, fmt.Errorf("insert report: %w", err)
	}
	return p, nil
}

func (r *ReportSQLite) Get(ctx context.Context, id string) (models.ProblemReport, error) {
	p, err := scanReport(r.db.QueryRowContext(ctx, selectReportSQL, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ProblemReport{}, ErrNotFound
		}
		return models.ProblemReport{}, fmt.Errorf("select report %q: %w", id, err)
	}
	return p, nil
}

// List returns reports newest first.
func (r *ReportSQLite) List(ctx context.Context, unresolvedOnly bool) ([]models.ProblemReport, error) {
	q := `SELECT ` + reportColumns + ` FROM problem_reports`
	if unresolvedOnly {
		q += ` WHERE resolved = 0`
	}
	q += ` ORDER BY reported_at DESC`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ProblemReport
	for rows.Next() {
		p, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ReportSQLite) MarkResolved(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, resolveReportSQL, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 1 {
		return true, nil
	}
	// Nothing flipped: either unknown or already resolved.
	if _, err := r.Get(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}
