package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/vantrack/server/internal/logging"
	"github.com/vantrack/server/internal/model"
	"github.com/vantrack/server/internal/repo"
)

// CodeRegenerator replaces today's daily code.
type CodeRegenerator struct {
	codes repo.AccessCodeRepo
	loc   *time.Location
	now   func() time.Time
	rand  io.Reader
	log   logging.Logger
}

func NewCodeRegenerator(codes repo.AccessCodeRepo, loc *time.Location, log logging.Logger) *CodeRegenerator {
	if loc == nil {
		loc = time.UTC
	}
	return &CodeRegenerator{codes: codes, loc: loc, now: time.Now, log: log}
}

// Regenerate generates a fresh code and stores it as the only active daily
// code for today. The store applies it in a single upsert, so concurrent calls
// leave exactly one row for the date.
func (g *CodeRegenerator) Regenerate(ctx context.Context) (model.AccessCode, error) {
	now := g.now()
	date := Today(now, g.loc)

	code, err := GenerateDailyCode(now, g.rand)
	if err != nil {
		return model.AccessCode{}, fmt.Errorf("generate daily code: %w", err)
	}

	ac, err := g.codes.UpsertDaily(ctx, code, date, now.UTC())
	if err != nil {
		g.log.Error(ctx, "store daily code failed", "date", date, "error", err)
		return model.AccessCode{}, fmt.Errorf("store daily code: %w", err)
	}
	g.log.Info(ctx, "daily code regenerated", "date", date)
	return ac, nil
}

// Current returns today's active daily code. ok is false when none has been
// generated yet.
func (g *CodeRegenerator) Current(ctx context.Context) (ac model.AccessCode, ok bool, err error) {
	date := Today(g.now(), g.loc)
	ac, err = g.codes.GetDaily(ctx, date)
	if errors.Is(err, repo.ErrNotFound) {
		return model.AccessCode{Type: model.CodeTypeDaily, Date: date}, false, nil
	}
	if err != nil {
		return model.AccessCode{}, false, fmt.Errorf("get daily code: %w", err)
	}
	return ac, true, nil
}
