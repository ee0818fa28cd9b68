package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/example/movequote/internal/client/api"
	"github.com/example/movequote/internal/client/config"
	"github.com/example/movequote/internal/client/inquiry"
	"github.com/example/movequote/internal/client/models"
	"github.com/example/movequote/internal/client/profile"
	"github.com/example/movequote/internal/client/repositories/searches"
	"github.com/example/movequote/internal/client/session"
	"github.com/example/movequote/internal/client/storage"
	"github.com/example/movequote/internal/logging"
	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

// sessionService is the slice of session.Manager the CLI uses. Kept as an
// interface so command handlers can be tested against fakes.
type sessionService interface {
	SignIn(ctx context.Context, email, password string) (*models.Session, error)
	SignUp(ctx context.Context, p session.SignUpParams) (*models.Session, error)
	RestoreSession(ctx context.Context) (*models.Session, error)
	SignOut(ctx context.Context)
	GetSecurityQuestion(ctx context.Context, email string) (string, error)
	ResetPasswordViaSecurityAnswer(ctx context.Context, email, answer, newPassword string) error
	UserID() string
}

type profileService interface {
	Get(ctx context.Context, userID uuid.UUID, email string) (*models.Profile, error)
	Update(ctx context.Context, userID uuid.UUID, fullName, email string) error
	UpdateSecurityQuestion(ctx context.Context, userID uuid.UUID, question, answer string) error
}

type inquiryService interface {
	SubmitSearch(ctx context.Context, p inquiry.SearchParams) (int64, error)
	FetchCandidateIDs(ctx context.Context, queryID int64) ([]int64, []int64, error)
	FetchInquiries(ctx context.Context, inquiryIDs []int64) ([]models.MovingInquiry, error)
	FetchCompanies(ctx context.Context, companyIDs []int64) ([]models.MovingCompany, error)
	PlaceCall(ctx context.Context, inq *models.MovingInquiry) error
	PastQueries(ctx context.Context, userID string) ([]models.MovingQuery, error)
	CachedSearches(ctx context.Context, userID string) ([]searches.CachedSearch, error)
	StartPolling(ctx context.Context, queryID int64, inquiryIDs []int64, interval time.Duration) *inquiry.Subscription
}

type App struct {
	config    *config.Config
	sessions  sessionService
	profiles  profileService
	inquiries inquiryService
	repos     *storage.Repositories
	log       logging.Logger
	reader    *bufio.Reader

	// the query the user is currently looking at
	lastQueryID    int64
	lastInquiryIDs []int64
	lastInquiries  []models.MovingInquiry
	companyNames   map[int64]string
}

// NewApp opens the local database and wires the HTTP clients and services.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	repos, err := storage.Init(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	auth := api.NewHTTPAuthClient(c.AuthBaseURL, c.AuthAPIKey, nil)
	manager := session.NewManager(auth, repos.Metadata, log)
	manager.SetRefreshBuffer(c.RefreshBuffer)

	// the data store authenticates with the manager's current token
	store := api.NewRESTStore(c.AuthBaseURL, c.AuthAPIKey, manager, nil)
	profiles := profile.NewService(store, log)
	manager.SetProfiles(profiles)

	quotes := api.NewHTTPQuoteClient(c.QuoteAPIBaseURL, nil)
	inquiries := inquiry.NewService(quotes, store, repos.Searches, log)

	return &App{
		config:       c,
		sessions:     manager,
		profiles:     profiles,
		inquiries:    inquiries,
		repos:        repos,
		log:          log,
		reader:       bufio.NewReader(os.Stdin),
		companyNames: make(map[int64]string),
	}, nil
}

// Run restores any persisted session and hands control to the REPL. It
// blocks until the user exits.
func (a *App) Run(ctx context.Context) error {
	defer a.repos.Close()

	if s, err := a.sessions.RestoreSession(ctx); err != nil {
		a.log.Warn(ctx, "session restore failed", "error", err)
	} else if s != nil {
		printlnFn("Welcome back!")
	}

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(os.Stdin))
	return nil
}

func (a *App) isLoggedIn() bool {
	return a.sessions.UserID() != ""
}

func (a *App) getStatus() string {
	if uid := a.sessions.UserID(); uid != "" {
		return "(signed in)"
	}
	return ""
}
