// Package session owns the authenticated session lifecycle: sign-in,
// sign-up, sign-out, persisted-session restore, expiry-aware refresh, and
// the security-question recovery path.
//
// The Manager is the single writer of the current Session; every other
// component reads through snapshot accessors (AccessToken, Current, UserID)
// and never holds a reference across a blocking call.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/movequote/internal/client/api"
	"github.com/example/movequote/internal/client/models"
	"github.com/example/movequote/internal/client/repositories/metadata"
	"github.com/example/movequote/internal/common"
	"github.com/example/movequote/internal/cryptox"
	"github.com/example/movequote/internal/logging"
)

const (
	// sessionKey is the single named storage key holding the encoded blob.
	sessionKey = "session"

	// refresh the session when it expires within this buffer
	defaultRefreshBuffer = 5 * time.Minute

	lockoutWindow     = 5 * time.Minute
	maxSignInAttempts = 5
	maxSignUpAttempts = 3
	minPasswordLength = 8
)

// ProfileDirectory is the slice of the profile service the session manager
// needs: creating the profile row at registration and reading the
// security-question fields during password recovery.
type ProfileDirectory interface {
	Create(ctx context.Context, p models.Profile) error
	QuestionByEmail(ctx context.Context, email string) (string, error)
	AnswerHashByEmail(ctx context.Context, email string) (string, error)
}

// SignUpParams collects the registration inputs. The security answer is
// hashed before it leaves this package; the plaintext is never stored.
type SignUpParams struct {
	Email            string
	Password         string
	FullName         string
	SecurityQuestion string
	SecurityAnswer   string
}

// Manager maintains at most one authenticated session, persisted across
// restarts and kept fresh against the remote auth service.
type Manager struct {
	auth     api.AuthClient
	meta     metadata.Repository
	profiles ProfileDirectory
	log      logging.Logger

	buffer time.Duration
	now    func() time.Time

	signInLimiter *attemptLimiter
	signUpLimiter *attemptLimiter

	mu      sync.RWMutex
	current *models.Session
}

func NewManager(auth api.AuthClient, meta metadata.Repository, log logging.Logger) *Manager {
	return &Manager{
		auth:          auth,
		meta:          meta,
		log:           log,
		buffer:        defaultRefreshBuffer,
		now:           time.Now,
		signInLimiter: newAttemptLimiter(maxSignInAttempts, lockoutWindow),
		signUpLimiter: newAttemptLimiter(maxSignUpAttempts, lockoutWindow),
	}
}

// SetProfiles attaches the profile directory. Wired separately because the
// profile service itself reads the data store with this manager's tokens.
func (m *Manager) SetProfiles(p ProfileDirectory) {
	m.profiles = p
}

// SetRefreshBuffer overrides how close to expiry a session gets refreshed.
func (m *Manager) SetRefreshBuffer(d time.Duration) {
	if d > 0 {
		m.buffer = d
	}
}

// SignIn authenticates with email and password. It fails fast with
// common.ErrRateLimited once the attempt counter is locked, without touching
// the network. Only credential rejections count as failed attempts.
func (m *Manager) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	if err := m.signInLimiter.Allow(); err != nil {
		return nil, err
	}

	s, err := m.auth.SignIn(ctx, email, password)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			m.signInLimiter.Fail()
		}
		return nil, err
	}

	m.signInLimiter.Reset()
	if err := m.setAndPersist(ctx, s); err != nil {
		return nil, err
	}
	return snapshot(s), nil
}

// SignUp validates its inputs before any network call, creates the account,
// persists the new session, and writes the profile row with the hashed
// security answer. Backend rejections count toward the registration limiter.
func (m *Manager) SignUp(ctx context.Context, p SignUpParams) (*models.Session, error) {
	if err := validateSignUp(p); err != nil {
		return nil, err
	}
	if err := m.signUpLimiter.Allow(); err != nil {
		return nil, err
	}

	s, err := m.auth.SignUp(ctx, p.Email, p.Password)
	if err != nil {
		if errors.Is(err, common.ErrRegistrationFailed) {
			m.signUpLimiter.Fail()
		}
		return nil, err
	}
	m.signUpLimiter.Reset()

	if err := m.setAndPersist(ctx, s); err != nil {
		return nil, err
	}

	if m.profiles != nil {
		userID, err := parseUserID(s.UserID)
		if err != nil {
			return nil, err
		}
		profile := models.Profile{
			UserID:             userID,
			Email:              p.Email,
			FullName:           p.FullName,
			SecurityQuestion:   p.SecurityQuestion,
			SecurityAnswerHash: cryptox.HashAnswer(p.SecurityAnswer),
		}
		if err := m.profiles.Create(ctx, profile); err != nil {
			// the account and session exist; the profile row will be
			// recreated lazily, but the security answer is lost
			return nil, fmt.Errorf("account created but profile setup failed: %w", err)
		}
	}

	return snapshot(s), nil
}

// RestoreSession loads the persisted session. Malformed or partially
// populated blobs are discarded silently. A session expiring within the
// refresh buffer triggers exactly one refresh attempt; if that fails, all
// persisted state is cleared and nil is returned so the user logs in again.
func (m *Manager) RestoreSession(ctx context.Context) (*models.Session, error) {
	blob, err := m.meta.Get(ctx, sessionKey)
	if err != nil {
		return nil, err
	}
	if len(blob) == 0 {
		return nil, nil
	}

	s, err := models.DecodeSession(blob)
	if err != nil {
		m.log.Warn(ctx, "discarding malformed persisted session")
		m.clearLocal(ctx)
		return nil, nil
	}

	if s.ExpiresWithin(m.buffer, m.now()) {
		refreshed, err := m.auth.Refresh(ctx, s.RefreshToken)
		if err != nil {
			m.log.Warn(ctx, "session refresh failed, forcing re-login", "error", err)
			m.clearLocal(ctx)
			return nil, nil
		}
		s = refreshed
	}

	if err := m.setAndPersist(ctx, s); err != nil {
		return nil, err
	}
	return snapshot(s), nil
}

// SignOut invalidates the remote session and clears local state
// unconditionally, even when the remote call fails.
func (m *Manager) SignOut(ctx context.Context) {
	token := m.AccessToken()
	if token != "" {
		if err := m.auth.SignOut(ctx, token); err != nil {
			m.log.Warn(ctx, "remote sign-out failed", "error", err)
		}
	}
	m.clearLocal(ctx)
}

// GetSecurityQuestion returns the stored question for the account.
func (m *Manager) GetSecurityQuestion(ctx context.Context, email string) (string, error) {
	return m.profiles.QuestionByEmail(ctx, email)
}

// VerifySecurityAnswer checks the answer against the stored hash.
func (m *Manager) VerifySecurityAnswer(ctx context.Context, email, answer string) (bool, error) {
	hash, err := m.profiles.AnswerHashByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	return cryptox.VerifyAnswer(answer, hash), nil
}

// ResetPasswordViaSecurityAnswer replaces the account password without the
// old one, gated on the security answer. The new password is validated
// before any network call.
func (m *Manager) ResetPasswordViaSecurityAnswer(ctx context.Context, email, answer, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return &common.ValidationError{Field: "password", Reason: fmt.Sprintf("must be at least %d characters", minPasswordLength)}
	}

	ok, err := m.VerifySecurityAnswer(ctx, email, answer)
	if err != nil {
		return err
	}
	if !ok {
		return common.ErrInvalidCredentials
	}
	return m.auth.ResetPassword(ctx, email, newPassword)
}

// AccessToken returns the current token or "" when signed out.
// Implements api.TokenSource.
func (m *Manager) AccessToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return ""
	}
	return m.current.AccessToken
}

// Current returns a snapshot copy of the session, or nil when signed out.
func (m *Manager) Current() *models.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return snapshot(m.current)
}

// UserID returns the signed-in user's id or "".
func (m *Manager) UserID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return ""
	}
	return m.current.UserID
}

func (m *Manager) setAndPersist(ctx context.Context, s *models.Session) error {
	blob, err := s.Encode()
	if err != nil {
		return err
	}
	if err := m.meta.Set(ctx, sessionKey, blob); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	m.mu.Lock()
	m.current = s
	m.mu.Unlock()
	return nil
}

// clearLocal wipes the in-memory and persisted session. Session-critical
// failures always land here rather than leaving half-valid state behind.
func (m *Manager) clearLocal(ctx context.Context) {
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()

	if err := m.meta.Delete(ctx, sessionKey); err != nil {
		m.log.Warn(ctx, "failed to clear persisted session", "error", err)
	}
}

func validateSignUp(p SignUpParams) error {
	if !strings.Contains(p.Email, "@") {
		return &common.ValidationError{Field: "email", Reason: "must contain @"}
	}
	if len(p.Password) < minPasswordLength {
		return &common.ValidationError{Field: "password", Reason: fmt.Sprintf("must be at least %d characters", minPasswordLength)}
	}
	if strings.TrimSpace(p.SecurityAnswer) == "" {
		return &common.ValidationError{Field: "security_answer", Reason: "must not be empty"}
	}
	return nil
}

func parseUserID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad user id %q", common.ErrDecoding, s)
	}
	return id, nil
}

func snapshot(s *models.Session) *models.Session {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}
