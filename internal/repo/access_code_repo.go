package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vantrack/server/internal/model"
)

const dateLayout = "2006-01-02"

type accessCodeRepo struct {
	db *sql.DB
}

// NewAccessCodeRepo creates a Postgres-backed AccessCodeRepo
func NewAccessCodeRepo(db *sql.DB) AccessCodeRepo {
	return &accessCodeRepo{db: db}
}

func scanAccessCode(row rowScanner) (model.AccessCode, error) {
	var c model.AccessCode
	var codeType string
	var codeDate sql.NullTime
	err := row.Scan(&c.ID, &c.Code, &codeType, &codeDate, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return model.AccessCode{}, err
	}
	c.Type = model.CodeType(codeType)
	if codeDate.Valid {
		c.Date = codeDate.Time.Format(dateLayout)
	}
	return c, nil
}

// GetDaily returns the active daily code for the given date (YYYY-MM-DD)
func (r *accessCodeRepo) GetDaily(ctx context.Context, date string) (model.AccessCode, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, code, code_type, code_date, active, created_at, updated_at
		FROM access_codes
		WHERE code_type = 'daily' AND code_date = $1 AND active
	`, date)
	c, err := scanAccessCode(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.AccessCode{}, fmt.Errorf("daily code for %s: %w", date, ErrNotFound)
		}
		return model.AccessCode{}, fmt.Errorf("failed to query daily code: %w", err)
	}
	return c, nil
}

// UpsertDaily inserts the daily code for date or replaces the existing one.
// The partial unique index on code_date makes this a single atomic statement.
func (r *accessCodeRepo) UpsertDaily(ctx context.Context, code, date string, now time.Time) (model.AccessCode, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO access_codes (id, code, code_type, code_date, active, created_at, updated_at)
		VALUES ($1, $2, 'daily', $3, TRUE, $4, $4)
		ON CONFLICT (code_date) WHERE code_type = 'daily'
		DO UPDATE SET code = EXCLUDED.code, active = TRUE, updated_at = EXCLUDED.updated_at
		RETURNING id, code, code_type, code_date, active, created_at, updated_at
	`, uuid.New(), code, date, now)
	c, err := scanAccessCode(row)
	if err != nil {
		return model.AccessCode{}, fmt.Errorf("failed to upsert daily code: %w", err)
	}
	return c, nil
}
