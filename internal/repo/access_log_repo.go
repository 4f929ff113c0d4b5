package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/vantrack/server/internal/model"
)

type accessLogRepo struct {
	db *sql.DB
}

// NewAccessLogRepo creates a Postgres-backed AccessLogRepo
func NewAccessLogRepo(db *sql.DB) AccessLogRepo {
	return &accessLogRepo{db: db}
}

// Append inserts an access log entry, assigning an id when missing
func (r *accessLogRepo) Append(ctx context.Context, entry model.AccessLogEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	var ip *string
	if entry.IP != "" {
		ip = &entry.IP
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO access_log (id, code_used, user_type, accessed_at, ip)
		VALUES ($1, $2, $3, $4, $5)
	`, entry.ID, entry.CodeUsed, string(entry.UserType), entry.AccessedAt, ip)
	if err != nil {
		return fmt.Errorf("failed to append access log: %w", err)
	}
	return nil
}

// ListRecent returns the newest entries first
func (r *accessLogRepo) ListRecent(ctx context.Context, limit int) ([]model.AccessLogEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, code_used, user_type, accessed_at, ip
		FROM access_log
		ORDER BY accessed_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list access log: %w", err)
	}
	defer rows.Close()

	entries := make([]model.AccessLogEntry, 0)
	for rows.Next() {
		var e model.AccessLogEntry
		var userType string
		var ip sql.NullString
		if err := rows.Scan(&e.ID, &e.CodeUsed, &userType, &e.AccessedAt, &ip); err != nil {
			return nil, fmt.Errorf("failed to scan access log: %w", err)
		}
		e.UserType = model.CodeType(userType)
		e.IP = ip.String
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate access log: %w", err)
	}
	return entries, nil
}
