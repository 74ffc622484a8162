package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Claudio1052/Limpeza/internal/models"
)

const requestColumns = `id, full_name, phone, email, address, service_type, bedrooms,
	                 cleaning_date, cleaning_time, description, status, created_at, updated_at`

func (db *DB) CreateRequest(ctx context.Context, req *models.ServiceRequest) error {
	query := `INSERT INTO service_requests (
				id, full_name, phone, email, address, service_type, bedrooms,
				cleaning_date, cleaning_time, description, status, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query,
		req.ID,
		req.FullName,
		req.Phone,
		req.Email,
		req.Address,
		req.ServiceType,
		req.Bedrooms,
		req.CleaningDate,
		req.CleaningTime,
		req.Description,
		req.Status,
		req.CreatedAt,
		req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return nil
}

func (db *DB) GetRequest(ctx context.Context, id string) (*models.ServiceRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM service_requests WHERE id = ?`

	req, err := scanRequest(db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return req, nil
}

// ListRequests returns one window of the filtered set ordered by creation
// time, newest first, together with the total number of matches.
func (db *DB) ListRequests(ctx context.Context, q models.ListQuery) ([]*models.ServiceRequest, int, error) {
	where, args := buildWhere(q)

	var count int
	countQuery := `SELECT COUNT(*) FROM service_requests` + where
	if err := db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, fmt.Errorf("failed to count requests: %w", err)
	}

	query := `SELECT ` + requestColumns + ` FROM service_requests` + where +
		` ORDER BY created_at DESC, id DESC`
	if q.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, q.Limit, q.Offset)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.ServiceRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read requests: %w", err)
	}

	return requests, count, nil
}

func buildWhere(q models.ListQuery) (string, []any) {
	var conds []string
	var args []any

	if q.Status != "" && q.Status != models.DateRangeAll {
		conds = append(conds, "status = ?")
		args = append(args, q.Status)
	}

	if q.DateFrom != "" {
		conds = append(conds, "cleaning_date >= ?")
		args = append(args, q.DateFrom)
	}

	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		conds = append(conds, `(instr(lower(full_name), ?) > 0
			OR instr(lower(email), ?) > 0
			OR instr(lower(address), ?) > 0
			OR instr(lower(phone), ?) > 0)`)
		args = append(args, needle, needle, needle, needle)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// UpdateRequest applies the given column values and stamps updated_at.
// Column names must come from the static field mapping; callers are expected
// to have translated and filtered them already.
func (db *DB) UpdateRequest(ctx context.Context, id string, columns map[string]any, updatedAt time.Time) error {
	if len(columns) == 0 {
		return fmt.Errorf("no columns to update")
	}

	// Deterministic column order keeps the statement stable across calls
	names := make([]string, 0, len(columns))
	for name := range columns {
		names = append(names, name)
	}
	sort.Strings(names)

	var sets []string
	var args []any
	for _, name := range names {
		sets = append(sets, name+" = ?")
		args = append(args, columns[name])
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, updatedAt, id)

	query := `UPDATE service_requests SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update request: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) DeleteRequest(ctx context.Context, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM service_requests WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete request: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// GetStats counts requests created since monthStart by status, plus confirmed
// cleanings scheduled for today and through weekEnd inclusive.
func (db *DB) GetStats(ctx context.Context, monthStart, today, weekEnd time.Time) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{}

	rows, err := db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM service_requests WHERE created_at >= ? GROUP BY status`,
		monthStart)
	if err != nil {
		return nil, fmt.Errorf("failed to get status counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		switch status {
		case models.StatusPending:
			stats.Pending = count
		case models.StatusConfirmed:
			stats.Confirmed = count
		case models.StatusCompleted:
			stats.Completed = count
		case models.StatusCancelled:
			stats.Cancelled = count
		}
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read status counts: %w", err)
	}

	todayStr := today.Format(models.DateLayout)
	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM service_requests WHERE status = ? AND cleaning_date = ?`,
		models.StatusConfirmed, todayStr).Scan(&stats.ConfirmedToday)
	if err != nil {
		return nil, fmt.Errorf("failed to count today's cleanings: %w", err)
	}

	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM service_requests WHERE status = ? AND cleaning_date >= ? AND cleaning_date <= ?`,
		models.StatusConfirmed, todayStr, weekEnd.Format(models.DateLayout)).Scan(&stats.ConfirmedWeek)
	if err != nil {
		return nil, fmt.Errorf("failed to count upcoming cleanings: %w", err)
	}

	return stats, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (*models.ServiceRequest, error) {
	req := &models.ServiceRequest{}
	err := row.Scan(
		&req.ID, &req.FullName, &req.Phone, &req.Email, &req.Address,
		&req.ServiceType, &req.Bedrooms, &req.CleaningDate, &req.CleaningTime,
		&req.Description, &req.Status, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return req, nil
}
