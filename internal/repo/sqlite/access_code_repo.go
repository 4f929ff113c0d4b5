package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vantrack/server/internal/model"
	"github.com/vantrack/server/internal/repo"
)

// AccessCodeRepo is the SQLite AccessCodeRepo
type AccessCodeRepo struct {
	db *sql.DB
}

var _ repo.AccessCodeRepo = (*AccessCodeRepo)(nil)

func NewAccessCodeRepo(db *sql.DB) *AccessCodeRepo {
	return &AccessCodeRepo{db: db}
}

func scanAccessCode(row rowScanner) (model.AccessCode, error) {
	var c model.AccessCode
	var id, codeType string
	var codeDate sql.NullString
	var active bool
	var createdAt, updatedAt int64
	if err := row.Scan(&id, &c.Code, &codeType, &codeDate, &active, &createdAt, &updatedAt); err != nil {
		return model.AccessCode{}, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return model.AccessCode{}, fmt.Errorf("parse access code id: %w", err)
	}
	c.ID = parsed
	c.Type = model.CodeType(codeType)
	c.Date = codeDate.String
	c.Active = active
	c.CreatedAt = time.UnixMilli(createdAt).UTC()
	c.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return c, nil
}

func (r *AccessCodeRepo) GetDaily(ctx context.Context, date string) (model.AccessCode, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, code, code_type, code_date, active, created_at, updated_at
		FROM access_codes
		WHERE code_type = 'daily' AND code_date = ? AND active = 1
	`, date)
	c, err := scanAccessCode(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.AccessCode{}, fmt.Errorf("daily code for %s: %w", date, repo.ErrNotFound)
		}
		return model.AccessCode{}, fmt.Errorf("query daily code: %w", err)
	}
	return c, nil
}

func (r *AccessCodeRepo) UpsertDaily(ctx context.Context, code, date string, now time.Time) (model.AccessCode, error) {
	ms := toMillis(now)
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO access_codes (id, code, code_type, code_date, active, created_at, updated_at)
		VALUES (?, ?, 'daily', ?, 1, ?, ?)
		ON CONFLICT (code_date) WHERE code_type = 'daily'
		DO UPDATE SET code = excluded.code, active = 1, updated_at = excluded.updated_at
		RETURNING id, code, code_type, code_date, active, created_at, updated_at
	`, uuid.New().String(), code, date, ms, ms)
	c, err := scanAccessCode(row)
	if err != nil {
		return model.AccessCode{}, fmt.Errorf("upsert daily code: %w", err)
	}
	return c, nil
}
