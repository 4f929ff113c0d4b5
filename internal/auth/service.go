package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vantrack/server/internal/logging"
	"github.com/vantrack/server/internal/model"
	"github.com/vantrack/server/internal/repo"
)

// ErrInvalidCode is returned when the submitted code is neither the admin
// code nor today's daily code.
var ErrInvalidCode = errors.New("invalid or expired code")

// Session is what a successful login hands back to the transport layer
type Session struct {
	Token     string
	Role      model.Role
	ExpiresAt time.Time
}

// Service orchestrates code-based login
type Service struct {
	adminCode string
	ttl       time.Duration
	loc       *time.Location
	codes     repo.AccessCodeRepo
	accessLog repo.AccessLogRepo
	tokens    *TokenService
	now       func() time.Time
	log       logging.Logger
}

// NewService creates a new auth service
func NewService(
	adminCode string,
	ttl time.Duration,
	loc *time.Location,
	codes repo.AccessCodeRepo,
	accessLog repo.AccessLogRepo,
	tokens *TokenService,
	log logging.Logger,
) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		adminCode: adminCode,
		ttl:       ttl,
		loc:       loc,
		codes:     codes,
		accessLog: accessLog,
		tokens:    tokens,
		now:       time.Now,
		log:       log,
	}
}

// Login checks input verbatim against the admin code, then trimmed and
// uppercased against today's daily code, and issues a session. Daily logins are
// recorded in the access log; a failed log write does not fail the login.
func (s *Service) Login(ctx context.Context, input, ip string) (Session, error) {
	now := s.now()

	if s.adminCode != "" && constantTimeCompare([]byte(input), []byte(s.adminCode)) {
		s.log.Info(ctx, "admin login", "ip", ip)
		return s.issue(model.RoleAdmin, now)
	}

	code := strings.TrimSpace(input)
	if code == "" {
		return Session{}, ErrInvalidCode
	}

	date := Today(now, s.loc)
	daily, err := s.codes.GetDaily(ctx, date)
	if errors.Is(err, repo.ErrNotFound) {
		s.log.Info(ctx, "login rejected, no daily code", "date", date, "ip", ip)
		return Session{}, ErrInvalidCode
	}
	if err != nil {
		s.log.Error(ctx, "load daily code failed", "date", date, "error", err)
		return Session{}, fmt.Errorf("load daily code: %w", err)
	}
	if !constantTimeCompare([]byte(strings.ToUpper(code)), []byte(daily.Code)) {
		s.log.Info(ctx, "login rejected, code mismatch", "date", date, "ip", ip)
		return Session{}, ErrInvalidCode
	}

	sess, err := s.issue(model.RoleUser, now)
	if err != nil {
		return Session{}, err
	}

	entry := model.AccessLogEntry{
		ID:         uuid.New(),
		CodeUsed:   daily.Code,
		UserType:   daily.Type,
		AccessedAt: now.UTC(),
		IP:         ip,
	}
	if err := s.accessLog.Append(ctx, entry); err != nil {
		s.log.Warn(ctx, "append access log failed", "error", err)
	}
	s.log.Info(ctx, "user login", "date", date, "ip", ip)
	return sess, nil
}

func (s *Service) issue(role model.Role, now time.Time) (Session, error) {
	expiresAt := now.Add(s.ttl)
	token, err := s.tokens.Sign(role, now, expiresAt)
	if err != nil {
		return Session{}, fmt.Errorf("issue session: %w", err)
	}
	return Session{Token: token, Role: role, ExpiresAt: expiresAt}, nil
}

// constantTimeCompare compares two byte slices in constant time
func constantTimeCompare(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}
