package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vantrack/server/internal/model"
	"github.com/vantrack/server/internal/repo"
)

// AccessLogRepo is the SQLite AccessLogRepo
type AccessLogRepo struct {
	db *sql.DB
}

var _ repo.AccessLogRepo = (*AccessLogRepo)(nil)

func NewAccessLogRepo(db *sql.DB) *AccessLogRepo {
	return &AccessLogRepo{db: db}
}

func (r *AccessLogRepo) Append(ctx context.Context, entry model.AccessLogEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	var ip any
	if entry.IP != "" {
		ip = entry.IP
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO access_log (id, code_used, user_type, accessed_at, ip)
		VALUES (?, ?, ?, ?, ?)
	`, entry.ID.String(), entry.CodeUsed, string(entry.UserType), toMillis(entry.AccessedAt), ip)
	if err != nil {
		return fmt.Errorf("append access log: %w", err)
	}
	return nil
}

func (r *AccessLogRepo) ListRecent(ctx context.Context, limit int) ([]model.AccessLogEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, code_used, user_type, accessed_at, ip
		FROM access_log
		ORDER BY accessed_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list access log: %w", err)
	}
	defer rows.Close()

	entries := make([]model.AccessLogEntry, 0)
	for rows.Next() {
		var e model.AccessLogEntry
		var id, userType string
		var accessedAt int64
		var ip sql.NullString
		if err := rows.Scan(&id, &e.CodeUsed, &userType, &accessedAt, &ip); err != nil {
			return nil, fmt.Errorf("scan access log: %w", err)
		}
		if e.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse access log id: %w", err)
		}
		e.UserType = model.CodeType(userType)
		e.AccessedAt = time.UnixMilli(accessedAt).UTC()
		e.IP = ip.String
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate access log: %w", err)
	}
	return entries, nil
}
