package auth

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantrack/server/internal/logging"
	"github.com/vantrack/server/internal/model"
	"github.com/vantrack/server/internal/repo"
	"github.com/vantrack/server/internal/repo/memory"
)

type failingLog struct{}

func (failingLog) Append(context.Context, model.AccessLogEntry) error {
	return errors.New("disk full")
}

func (failingLog) ListRecent(context.Context, int) ([]model.AccessLogEntry, error) {
	return nil, nil
}

type failingCodes struct{ repo.AccessCodeRepo }

func (failingCodes) UpsertDaily(context.Context, string, string, time.Time) (model.AccessCode, error) {
	return model.AccessCode{}, errors.New("relation does not exist")
}

func TestGenerateDailyCode(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	code, err := GenerateDailyCode(now, bytes.NewReader([]byte{0xab, 0xcd, 0xef, 0x01}))
	require.NoError(t, err)

	require.Len(t, code, 8)
	assert.Equal(t, "ABCD", code[:4])
	full := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))
	assert.Equal(t, full[len(full)-4:], code[4:], "suffix must be base-36 millis")
	assert.Regexp(t, `^[0-9A-Z]{8}$`, code)
}

func TestGenerateDailyCode_ShortRandom(t *testing.T) {
	_, err := GenerateDailyCode(time.Now(), bytes.NewReader([]byte{1, 2}))
	assert.Error(t, err)
}

func TestToday_UsesLocation(t *testing.T) {
	now := time.Date(2026, 5, 1, 23, 30, 0, 0, time.UTC)
	madrid, err := time.LoadLocation("Europe/Madrid")
	require.NoError(t, err)

	assert.Equal(t, "2026-05-01", Today(now, time.UTC))
	assert.Equal(t, "2026-05-02", Today(now, madrid))
	assert.Equal(t, "2026-05-01", Today(now, nil))
}

func TestRegenerate_TwiceLeavesOneActiveCode(t *testing.T) {
	ctx := context.Background()
	codes := memory.NewAccessCodeStore()
	g := NewCodeRegenerator(codes, time.UTC, logging.Discard())
	now := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return now }

	first, err := g.Regenerate(ctx)
	require.NoError(t, err)
	now = now.Add(time.Minute)
	second, err := g.Regenerate(ctx)
	require.NoError(t, err)

	assert.Equal(t, "2026-05-01", second.Date)
	assert.Equal(t, first.ID, second.ID)
	cur, ok, err := g.Current(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, second.Code, cur.Code)
	assert.True(t, cur.Active)
}

func TestRegenerate_StoreFailureIsFatal(t *testing.T) {
	g := NewCodeRegenerator(failingCodes{memory.NewAccessCodeStore()}, nil, logging.Discard())
	_, err := g.Regenerate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relation does not exist")
}

func TestCurrent_NotGenerated(t *testing.T) {
	g := NewCodeRegenerator(memory.NewAccessCodeStore(), time.UTC, logging.Discard())
	_, ok, err := g.Current(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTokenService_SignVerify(t *testing.T) {
	svc := NewTokenService("secret")
	now := time.Now()
	token, err := svc.Sign(model.RoleAdmin, now, now.Add(time.Hour))
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, claims.Role)
	assert.NotEmpty(t, claims.ID)

	_, err = NewTokenService("other").Verify(token)
	assert.Error(t, err)

	expired, err := svc.Sign(model.RoleUser, now.Add(-2*time.Hour), now.Add(-time.Hour))
	require.NoError(t, err)
	_, err = svc.Verify(expired)
	assert.Error(t, err)
}

func newTestService(codes repo.AccessCodeRepo, logs repo.AccessLogRepo) *Service {
	return NewService("Admin-Secret", 24*time.Hour, time.UTC, codes, logs, NewTokenService("secret"), logging.Discard())
}

func TestLogin_Admin(t *testing.T) {
	logs := memory.NewAccessLogStore()
	svc := newTestService(memory.NewAccessCodeStore(), logs)

	sess, err := svc.Login(context.Background(), "Admin-Secret", "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, sess.Role)
	assert.NotEmpty(t, sess.Token)

	// The admin code is compared verbatim, surrounding whitespace included.
	_, err = svc.Login(context.Background(), "  Admin-Secret ", "10.0.0.1")
	assert.ErrorIs(t, err, ErrInvalidCode)

	// The admin code is case sensitive.
	_, err = svc.Login(context.Background(), "ADMIN-SECRET", "10.0.0.1")
	assert.ErrorIs(t, err, ErrInvalidCode)

	entries, err := logs.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLogin_DailyCode(t *testing.T) {
	ctx := context.Background()
	codes := memory.NewAccessCodeStore()
	logs := memory.NewAccessLogStore()
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	_, err := codes.UpsertDaily(ctx, "AB12CDEF", "2026-05-01", now)
	require.NoError(t, err)

	svc := newTestService(codes, logs)
	svc.now = func() time.Time { return now }

	sess, err := svc.Login(ctx, " ab12cdef ", "192.0.2.7")
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, sess.Role)
	assert.True(t, sess.ExpiresAt.Equal(now.Add(24*time.Hour)))

	entries, err := logs.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "AB12CDEF", entries[0].CodeUsed)
	assert.Equal(t, model.CodeTypeDaily, entries[0].UserType)
	assert.Equal(t, "192.0.2.7", entries[0].IP)
}

func TestLogin_YesterdaysCodeRejected(t *testing.T) {
	ctx := context.Background()
	codes := memory.NewAccessCodeStore()
	_, err := codes.UpsertDaily(ctx, "OLDCODE1", "2026-04-30", time.Now())
	require.NoError(t, err)

	svc := newTestService(codes, memory.NewAccessLogStore())
	svc.now = func() time.Time { return time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC) }

	_, err = svc.Login(ctx, "OLDCODE1", "")
	assert.ErrorIs(t, err, ErrInvalidCode)
	_, err = svc.Login(ctx, "   ", "")
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestLogin_AccessLogFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	codes := memory.NewAccessCodeStore()
	now := time.Now()
	_, err := codes.UpsertDaily(ctx, "AB12CDEF", Today(now, time.UTC), now)
	require.NoError(t, err)

	svc := newTestService(codes, failingLog{})
	svc.now = func() time.Time { return now }
	_, err = svc.Login(ctx, "AB12CDEF", "")
	assert.NoError(t, err)
}

func TestConstantTimeCompare(t *testing.T) {
	assert.True(t, constantTimeCompare([]byte("same"), []byte("same")))
	assert.False(t, constantTimeCompare([]byte("same"), []byte("diff")))
	assert.False(t, constantTimeCompare([]byte("a"), []byte("ab")))
	assert.False(t, constantTimeCompare(nil, []byte("x")))
}

func TestSessionCookies(t *testing.T) {
	exp := time.UnixMilli(1800000000000)
	rec := httptest.NewRecorder()
	SetSessionCookies(rec, Session{Token: "tok", Role: model.RoleUser, ExpiresAt: exp}, true)

	cookies := map[string]*http.Cookie{}
	for _, c := range rec.Result().Cookies() {
		cookies[c.Name] = c
	}
	require.Len(t, cookies, 3)
	assert.Equal(t, "tok", cookies[CookieToken].Value)
	assert.Equal(t, "user", cookies[CookieRole].Value)
	assert.Equal(t, "1800000000000", cookies[CookieExpiry].Value)
	for _, c := range cookies {
		assert.Equal(t, "/", c.Path)
		assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
		assert.True(t, c.Secure)
	}

	rec = httptest.NewRecorder()
	ClearSessionCookies(rec, false)
	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 3)
	for _, c := range cleared {
		assert.Empty(t, c.Value)
		assert.Equal(t, -1, c.MaxAge)
	}
}
