package session

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/movequote/internal/client/models"
	"github.com/example/movequote/internal/common"
	"github.com/example/movequote/internal/cryptox"
	"github.com/example/movequote/internal/logging"
)

// ---- fakes ----

// fakeAuth implements api.AuthClient and records call counts for assertions.
type fakeAuth struct {
	SignInRet *models.Session
	SignInErr error

	SignUpRet *models.Session
	SignUpErr error

	RefreshRet *models.Session
	RefreshErr error

	SignOutErr error
	ResetErr   error

	SignInCalls  int
	SignUpCalls  int
	RefreshCalls int
	SignOutCalls int
	ResetCalls   int

	LastResetEmail    string
	LastResetPassword string
}

func (f *fakeAuth) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	f.SignInCalls++
	return cloneSession(f.SignInRet), f.SignInErr
}

func (f *fakeAuth) SignUp(ctx context.Context, email, password string) (*models.Session, error) {
	f.SignUpCalls++
	return cloneSession(f.SignUpRet), f.SignUpErr
}

func (f *fakeAuth) Refresh(ctx context.Context, refreshToken string) (*models.Session, error) {
	f.RefreshCalls++
	return cloneSession(f.RefreshRet), f.RefreshErr
}

func (f *fakeAuth) SignOut(ctx context.Context, accessToken string) error {
	f.SignOutCalls++
	return f.SignOutErr
}

func (f *fakeAuth) ResetPassword(ctx context.Context, email, newPassword string) error {
	f.ResetCalls++
	f.LastResetEmail = email
	f.LastResetPassword = newPassword
	return f.ResetErr
}

func cloneSession(s *models.Session) *models.Session {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}

// fakeMeta is an in-memory metadata.Repository.
type fakeMeta struct {
	data map[string][]byte
}

func newFakeMeta() *fakeMeta { return &fakeMeta{data: map[string][]byte{}} }

func (f *fakeMeta) Get(ctx context.Context, key string) ([]byte, error) { return f.data[key], nil }
func (f *fakeMeta) Set(ctx context.Context, key string, value []byte) error {
	f.data[key] = value
	return nil
}
func (f *fakeMeta) Delete(ctx context.Context, key string) error {
	delete(f.data, key)
	return nil
}
func (f *fakeMeta) Clear(ctx context.Context) error {
	f.data = map[string][]byte{}
	return nil
}

// fakeProfiles implements ProfileDirectory.
type fakeProfiles struct {
	CreateErr   error
	Created     []models.Profile
	Question    string
	QuestionErr error
	AnswerHash  string
	HashErr     error
}

func (f *fakeProfiles) Create(ctx context.Context, p models.Profile) error {
	f.Created = append(f.Created, p)
	return f.CreateErr
}

func (f *fakeProfiles) QuestionByEmail(ctx context.Context, email string) (string, error) {
	return f.Question, f.QuestionErr
}

func (f *fakeProfiles) AnswerHashByEmail(ctx context.Context, email string) (string, error) {
	return f.AnswerHash, f.HashErr
}

// ---- helpers ----

func newTestManager(t *testing.T, auth *fakeAuth) (*Manager, *fakeMeta) {
	t.Helper()
	meta := newFakeMeta()
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	m := NewManager(auth, meta, log)
	return m, meta
}

func futureSession() *models.Session {
	return &models.Session{
		UserID:       "2b1f0a54-9f09-4f4e-8f0e-2a8f6f8a9f11",
		AccessToken:  "at",
		RefreshToken: "rt",
		ExpiresAt:    time.Now().Add(time.Hour).Unix(),
	}
}

func validSignUp() SignUpParams {
	return SignUpParams{
		Email:            "new@example.com",
		Password:         "longenough",
		FullName:         "Michelle Z",
		SecurityQuestion: models.SecurityQuestions[0],
		SecurityAnswer:   "Smith",
	}
}

// ---- tests ----

func TestSignIn_SuccessPersistsSession(t *testing.T) {
	auth := &fakeAuth{SignInRet: futureSession()}
	m, meta := newTestManager(t, auth)

	s, err := m.SignIn(context.Background(), "user@example.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, futureSession().UserID, s.UserID)
	assert.Equal(t, s.UserID, m.UserID())
	assert.Equal(t, "at", m.AccessToken())

	// persisted blob decodes back to the same session
	got, err := models.DecodeSession(meta.data["session"])
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestSignIn_LockoutAfterFiveFailures(t *testing.T) {
	auth := &fakeAuth{SignInErr: common.ErrInvalidCredentials}
	m, _ := newTestManager(t, auth)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := m.SignIn(ctx, "user@example.com", "wrong")
		assert.ErrorIs(t, err, common.ErrInvalidCredentials)
	}
	require.Equal(t, 5, auth.SignInCalls)

	// the sixth attempt fails fast without contacting the network
	_, err := m.SignIn(ctx, "user@example.com", "wrong")
	assert.ErrorIs(t, err, common.ErrRateLimited)
	assert.Equal(t, 5, auth.SignInCalls)
}

func TestSignIn_LockClearsAfterWindow(t *testing.T) {
	auth := &fakeAuth{SignInErr: common.ErrInvalidCredentials}
	m, _ := newTestManager(t, auth)
	ctx := context.Background()

	now := time.Date(2025, 2, 20, 10, 0, 0, 0, time.UTC)
	m.signInLimiter.now = func() time.Time { return now }

	for i := 0; i < 5; i++ {
		_, _ = m.SignIn(ctx, "e", "wrong")
	}
	_, err := m.SignIn(ctx, "e", "wrong")
	require.ErrorIs(t, err, common.ErrRateLimited)

	// once the lockout window elapses the counter resets
	now = now.Add(lockoutWindow + time.Second)
	auth.SignInErr = nil
	auth.SignInRet = futureSession()

	_, err = m.SignIn(ctx, "e", "right")
	assert.NoError(t, err)
}

func TestSignIn_NetworkErrorsDoNotCountAsAttempts(t *testing.T) {
	auth := &fakeAuth{SignInErr: common.ErrNetwork}
	m, _ := newTestManager(t, auth)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, err := m.SignIn(ctx, "e", "pw")
		assert.ErrorIs(t, err, common.ErrNetwork)
	}
	assert.Equal(t, 10, auth.SignInCalls)
}

func TestSignUp_ValidationBeforeNetwork(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*SignUpParams)
		wantField string
	}{
		{name: "email without at sign", mutate: func(p *SignUpParams) { p.Email = "nope" }, wantField: "email"},
		{name: "short password", mutate: func(p *SignUpParams) { p.Password = "short" }, wantField: "password"},
		{name: "blank answer", mutate: func(p *SignUpParams) { p.SecurityAnswer = "   " }, wantField: "security_answer"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			auth := &fakeAuth{}
			m, _ := newTestManager(t, auth)

			p := validSignUp()
			tc.mutate(&p)

			_, err := m.SignUp(context.Background(), p)

			var verr *common.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.wantField, verr.Field)
			assert.Zero(t, auth.SignUpCalls, "no network call on validation failure")
		})
	}
}

func TestSignUp_CreatesProfileWithHashedAnswer(t *testing.T) {
	auth := &fakeAuth{SignUpRet: futureSession()}
	m, _ := newTestManager(t, auth)
	profiles := &fakeProfiles{}
	m.SetProfiles(profiles)

	p := validSignUp()
	s, err := m.SignUp(context.Background(), p)
	require.NoError(t, err)
	assert.True(t, s.Valid())

	require.Len(t, profiles.Created, 1)
	created := profiles.Created[0]
	assert.Equal(t, p.Email, created.Email)
	assert.Equal(t, p.SecurityQuestion, created.SecurityQuestion)
	assert.NotContains(t, created.SecurityAnswerHash, p.SecurityAnswer, "plaintext answer must never be stored")
	assert.True(t, cryptox.VerifyAnswer(p.SecurityAnswer, created.SecurityAnswerHash))
}

func TestSignUp_RateLimitedAfterThreeRejections(t *testing.T) {
	auth := &fakeAuth{SignUpErr: common.ErrRegistrationFailed}
	m, _ := newTestManager(t, auth)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := m.SignUp(ctx, validSignUp())
		assert.ErrorIs(t, err, common.ErrRegistrationFailed)
	}
	_, err := m.SignUp(ctx, validSignUp())
	assert.ErrorIs(t, err, common.ErrRateLimited)
	assert.Equal(t, 3, auth.SignUpCalls)
}

func TestRestoreSession_NoPersistedState(t *testing.T) {
	m, _ := newTestManager(t, &fakeAuth{})

	s, err := m.RestoreSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestRestoreSession_MalformedBlobsDiscarded(t *testing.T) {
	encode := func(s string) []byte {
		return []byte(base64.StdEncoding.EncodeToString([]byte(s)))
	}

	tests := []struct {
		name string
		blob []byte
	}{
		{name: "garbage", blob: []byte("!!!")},
		{name: "empty json", blob: encode(`{}`)},
		{name: "missing user id", blob: encode(`{"access_token":"a","refresh_token":"r","expires_at":99}`)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			auth := &fakeAuth{}
			m, meta := newTestManager(t, auth)
			meta.data["session"] = tc.blob

			s, err := m.RestoreSession(context.Background())
			require.NoError(t, err)
			assert.Nil(t, s)
			assert.Empty(t, meta.data["session"], "malformed blob must be cleared")
			assert.Zero(t, auth.RefreshCalls)
		})
	}
}

func TestRestoreSession_FreshSessionNotRefreshed(t *testing.T) {
	auth := &fakeAuth{}
	m, meta := newTestManager(t, auth)

	blob, err := futureSession().Encode()
	require.NoError(t, err)
	meta.data["session"] = blob

	s, err := m.RestoreSession(context.Background())
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Zero(t, auth.RefreshCalls)
}

func TestRestoreSession_ExpiringSessionRefreshedOnce(t *testing.T) {
	refreshed := futureSession()
	refreshed.AccessToken = "new-at"
	auth := &fakeAuth{RefreshRet: refreshed}
	m, meta := newTestManager(t, auth)

	stale := futureSession()
	stale.ExpiresAt = time.Now().Add(time.Minute).Unix() // inside the 5m buffer
	blob, err := stale.Encode()
	require.NoError(t, err)
	meta.data["session"] = blob

	s, err := m.RestoreSession(context.Background())
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, 1, auth.RefreshCalls)
	assert.Equal(t, "new-at", s.AccessToken)

	// the refreshed session is what got persisted
	got, err := models.DecodeSession(meta.data["session"])
	require.NoError(t, err)
	assert.Equal(t, "new-at", got.AccessToken)
}

func TestRestoreSession_RefreshFailureClearsState(t *testing.T) {
	auth := &fakeAuth{RefreshErr: common.ErrSessionExpired}
	m, meta := newTestManager(t, auth)

	stale := futureSession()
	stale.ExpiresAt = time.Now().Add(-time.Minute).Unix()
	blob, err := stale.Encode()
	require.NoError(t, err)
	meta.data["session"] = blob

	s, err := m.RestoreSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, s)
	assert.Equal(t, 1, auth.RefreshCalls)
	assert.Empty(t, meta.data["session"])
	assert.Empty(t, m.AccessToken())
}

func TestSignOut_ClearsLocalStateEvenWhenRemoteFails(t *testing.T) {
	auth := &fakeAuth{SignInRet: futureSession(), SignOutErr: errors.New("backend down")}
	m, meta := newTestManager(t, auth)
	ctx := context.Background()

	_, err := m.SignIn(ctx, "e", "p")
	require.NoError(t, err)
	require.NotEmpty(t, meta.data["session"])

	m.SignOut(ctx)

	assert.Equal(t, 1, auth.SignOutCalls)
	assert.Empty(t, meta.data["session"])
	assert.Empty(t, m.AccessToken())
	assert.Nil(t, m.Current())
}

func TestResetPasswordViaSecurityAnswer(t *testing.T) {
	hash := cryptox.HashAnswer("Smith")

	t.Run("correct answer resets password", func(t *testing.T) {
		auth := &fakeAuth{}
		m, _ := newTestManager(t, auth)
		m.SetProfiles(&fakeProfiles{AnswerHash: hash})

		err := m.ResetPasswordViaSecurityAnswer(context.Background(), "e@x.com", "Smith", "brandnewpw")
		require.NoError(t, err)
		assert.Equal(t, 1, auth.ResetCalls)
		assert.Equal(t, "brandnewpw", auth.LastResetPassword)
	})

	t.Run("wrong answer rejected", func(t *testing.T) {
		auth := &fakeAuth{}
		m, _ := newTestManager(t, auth)
		m.SetProfiles(&fakeProfiles{AnswerHash: hash})

		err := m.ResetPasswordViaSecurityAnswer(context.Background(), "e@x.com", "Jones", "brandnewpw")
		assert.ErrorIs(t, err, common.ErrInvalidCredentials)
		assert.Zero(t, auth.ResetCalls)
	})

	t.Run("short password rejected before any lookup", func(t *testing.T) {
		auth := &fakeAuth{}
		m, _ := newTestManager(t, auth)
		m.SetProfiles(&fakeProfiles{AnswerHash: hash})

		err := m.ResetPasswordViaSecurityAnswer(context.Background(), "e@x.com", "Smith", "tiny")
		var verr *common.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "password", verr.Field)
		assert.Zero(t, auth.ResetCalls)
	})
}

func TestGetSecurityQuestion(t *testing.T) {
	m, _ := newTestManager(t, &fakeAuth{})
	m.SetProfiles(&fakeProfiles{Question: models.SecurityQuestions[1]})

	q, err := m.GetSecurityQuestion(context.Background(), "e@x.com")
	require.NoError(t, err)
	assert.Equal(t, models.SecurityQuestions[1], q)
}
