package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/benvon/life-tracker/internal/apperr"
	"github.com/benvon/life-tracker/internal/models"
	"github.com/google/uuid"
)

const pendingColumns = `id, date, category, raw_input, parsed_data, logged_at, compiled`

// PendingLogRepository handles pending log database operations
type PendingLogRepository struct {
	q Querier
}

// NewPendingLogRepository creates a new pending log repository
func NewPendingLogRepository(q Querier) *PendingLogRepository {
	return &PendingLogRepository{q: q}
}

// WithTx returns a repository bound to tx
func (r *PendingLogRepository) WithTx(tx *sql.Tx) *PendingLogRepository {
	return &PendingLogRepository{q: tx}
}

// Create inserts a pending log, assigning an ID when none is set
func (r *PendingLogRepository) Create(ctx context.Context, log *models.PendingLog) error {
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	parsed, err := models.EncodePayload(log.Payload)
	if err != nil {
		return err
	}

	_, err = r.q.ExecContext(ctx, `
		INSERT INTO pending_logs (id, date, category, raw_input, parsed_data, logged_at, compiled)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, log.ID, dateArg(log.Date), string(log.Category), log.RawInput, parsed, timestampArg(log.LoggedAt), false)
	if err != nil {
		return fmt.Errorf("failed to create pending log: %w", err)
	}
	log.Compiled = false
	return nil
}

// GetByID retrieves a pending log by ID
func (r *PendingLogRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.PendingLog, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+pendingColumns+` FROM pending_logs WHERE id = $1`, id)
	log, err := scanPendingLog(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("pending log", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending log: %w", err)
	}
	return log, nil
}

// ListUncompiled returns the uncompiled pending logs for date ordered by logged_at
func (r *PendingLogRepository) ListUncompiled(ctx context.Context, date time.Time) ([]*models.PendingLog, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+pendingColumns+` FROM pending_logs
		WHERE date = $1 AND compiled = $2
		ORDER BY logged_at ASC, id ASC
	`, dateArg(date), false)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending logs: %w", err)
	}
	defer rows.Close()
	return collectPendingLogs(rows)
}

// CountUncompiled returns how many entries of date are still waiting to be compiled
func (r *PendingLogRepository) CountUncompiled(ctx context.Context, date time.Time) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM pending_logs WHERE date = $1 AND compiled = $2
	`, dateArg(date), false).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending logs: %w", err)
	}
	return n, nil
}

// UpdatePayload replaces the parsed data of an uncompiled pending log
func (r *PendingLogRepository) UpdatePayload(ctx context.Context, id uuid.UUID, payload models.Payload) error {
	parsed, err := models.EncodePayload(payload)
	if err != nil {
		return err
	}
	result, err := r.q.ExecContext(ctx, `
		UPDATE pending_logs SET parsed_data = $1 WHERE id = $2 AND compiled = $3
	`, parsed, id, false)
	if err != nil {
		return fmt.Errorf("failed to update pending log: %w", err)
	}
	return r.explainMiss(ctx, result, id)
}

// Delete removes an uncompiled pending log
func (r *PendingLogRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM pending_logs WHERE id = $1 AND compiled = $2`, id, false)
	if err != nil {
		return fmt.Errorf("failed to delete pending log: %w", err)
	}
	return r.explainMiss(ctx, result, id)
}

// ClaimForDate flips every uncompiled row of date to compiled and returns the rows it flipped.
// The flip is a single conditional UPDATE, so two concurrent claims never return the same row.
// Callers run it inside the transaction that also writes the derived rows.
func (r *PendingLogRepository) ClaimForDate(ctx context.Context, date time.Time) ([]*models.PendingLog, error) {
	rows, err := r.q.QueryContext(ctx, `
		UPDATE pending_logs SET compiled = $1
		WHERE date = $2 AND compiled = $3
		RETURNING id
	`, true, dateArg(date), false)
	if err != nil {
		return nil, fmt.Errorf("failed to claim pending logs: %w", err)
	}
	var ids []any
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to scan claimed id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("error iterating claimed ids: %w", err)
	}
	if err := rows.Close(); err != nil {
		return nil, fmt.Errorf("failed to close claim rows: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(ids))
	for i := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	claimed, err := r.q.QueryContext(ctx,
		`SELECT `+pendingColumns+` FROM pending_logs WHERE id IN (`+strings.Join(placeholders, ", ")+`)`,
		ids...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load claimed pending logs: %w", err)
	}
	defer claimed.Close()

	logs, err := collectPendingLogs(claimed)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(logs, func(i, j int) bool {
		if logs[i].LoggedAt.Equal(logs[j].LoggedAt) {
			return logs[i].ID.String() < logs[j].ID.String()
		}
		return logs[i].LoggedAt.Before(logs[j].LoggedAt)
	})
	return logs, nil
}

// explainMiss turns a zero-row update into NotFound or, for compiled rows, a precondition error
func (r *PendingLogRepository) explainMiss(ctx context.Context, result sql.Result, id uuid.UUID) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}
	var compiled bool
	err = r.q.QueryRowContext(ctx, `SELECT compiled FROM pending_logs WHERE id = $1`, id).Scan(&compiled)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound("pending log", id)
	}
	if err != nil {
		return fmt.Errorf("failed to check pending log: %w", err)
	}
	return apperr.Precondition("pending log has already been compiled")
}

func collectPendingLogs(rows *sql.Rows) ([]*models.PendingLog, error) {
	var logs []*models.PendingLog
	for rows.Next() {
		log, err := scanPendingLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pending log: %w", err)
		}
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pending logs: %w", err)
	}
	return logs, nil
}

func scanPendingLog(s rowScanner) (*models.PendingLog, error) {
	log := &models.PendingLog{}
	var (
		category string
		parsed   sql.NullString
	)
	if err := s.Scan(&log.ID, &log.Date, &category, &log.RawInput, &parsed, &log.LoggedAt, &log.Compiled); err != nil {
		return nil, err
	}
	log.Category = models.Category(category)
	if parsed.Valid {
		payload, err := models.DecodePayload(log.Category, []byte(parsed.String))
		if err != nil {
			return nil, err
		}
		log.Payload = payload
	}
	return log, nil
}
