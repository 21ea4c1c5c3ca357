// Package testutil provides utilities for testing
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"contentdesk/internal/api/middleware"
	"contentdesk/internal/api/routes"
	"contentdesk/internal/auth"
	"contentdesk/internal/config"
	"contentdesk/internal/email"
	"contentdesk/internal/models"
	"contentdesk/internal/repository/memory"
	"contentdesk/internal/service"
	"contentdesk/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"
)

// TestConfig returns a development configuration suitable for unit tests
func TestConfig() *config.Config {
	cfg := &config.Config{
		API: config.APIConfig{
			Port:        "8080",
			Environment: config.EnvDevelopment,
		},
		Auth: config.AuthConfig{
			SessionSecret: "test_secret_key",
			SessionTTL:    auth.DefaultSessionTTL,
			BcryptCost:    bcrypt.MinCost,
			OTPLength:     auth.DefaultOTPLength,
		},
		Email: config.EmailConfig{
			AppName: "Content Desk",
		},
	}
	cfg.RateLimit.Backend = config.RateLimitBackendMemory
	cfg.RateLimit.Requests = 10000
	cfg.RateLimit.Window = 60
	cfg.RateLimit.Burst = 10000
	return cfg
}

// FakeClock is a manually advanced time source
type FakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{t: t}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// MockMailer records sent messages and can be made to fail
type MockMailer struct {
	mu       sync.Mutex
	messages []email.Message
	err      error
}

var codePattern = regexp.MustCompile(`\b[0-9]{4,10}\b`)

func (m *MockMailer) Send(ctx context.Context, msg email.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msg)
	return nil
}

// FailWith makes every following Send return err; nil restores delivery
func (m *MockMailer) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Messages returns a copy of the delivered messages
func (m *MockMailer) Messages() []email.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]email.Message(nil), m.messages...)
}

// LastCode extracts the code from the most recent message
func (m *MockMailer) LastCode(t *testing.T) string {
	t.Helper()

	msgs := m.Messages()
	require.NotEmpty(t, msgs, "no email was sent")
	code := codePattern.FindString(msgs[len(msgs)-1].Text)
	require.NotEmpty(t, code, "no code in email")
	return code
}

// TestContext holds common test dependencies, all backed by in-memory stores
type TestContext struct {
	T             *testing.T
	Config        *config.Config
	Clock         *FakeClock
	Mailer        *MockMailer
	Users         *memory.UserRepo
	LoginSessions *memory.LoginSessionRepo
	ResetSessions *memory.PasswordResetRepo
	RateLimits    *memory.RateLimitRepo
	Services      *service.Services
	Router        *gin.Engine
}

// NewTestContext creates a new test context with all dependencies
func NewTestContext(t *testing.T) *TestContext {
	t.Helper()
	return NewTestContextWithConfig(t, TestConfig())
}

// NewTestContextWithConfig is NewTestContext with a caller supplied configuration
func NewTestContextWithConfig(t *testing.T, cfg *config.Config) *TestContext {
	t.Helper()

	// Set Gin to test mode
	gin.SetMode(gin.TestMode)

	// Initialize validators
	validation.Initialize()

	users := memory.NewUserRepo()
	tc := &TestContext{
		T:             t,
		Config:        cfg,
		Clock:         NewFakeClock(time.Date(2024, 3, 20, 13, 0, 0, 0, time.UTC)),
		Mailer:        &MockMailer{},
		Users:         users,
		LoginSessions: memory.NewLoginSessionRepo(),
		ResetSessions: memory.NewPasswordResetRepo(users),
		RateLimits:    memory.NewRateLimitRepo(),
	}

	logger := zaptest.NewLogger(t)

	services, err := service.New(cfg, service.Stores{
		Users:         tc.Users,
		LoginSessions: tc.LoginSessions,
		ResetSessions: tc.ResetSessions,
		RateLimits:    tc.RateLimits,
	}, tc.Mailer, logger, tc.Clock.Now)
	require.NoError(t, err, "Failed to wire services")
	tc.Services = services

	throttle := middleware.NewIPThrottle(cfg)
	t.Cleanup(throttle.Close)

	tc.Router = routes.SetupRoutes(routes.Dependencies{
		Config:   cfg,
		Services: services,
		Users:    tc.Users,
		Throttle: throttle,
		Logger:   logger,
	})

	return tc
}

// CreateTestUser creates a user with the given email and password
func (tc *TestContext) CreateTestUser(emailAddr, password string, mutate ...func(*models.User)) *models.User {
	tc.T.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(tc.T, err, "Failed to hash password")

	user := &models.User{
		Email:        emailAddr,
		PasswordHash: string(hash),
		Role:         models.RoleEditor,
	}
	for _, fn := range mutate {
		fn(user)
	}

	require.NoError(tc.T, tc.Users.Create(context.Background(), user), "Failed to create test user")
	return user
}

// SessionCookie returns a valid session cookie for user
func (tc *TestContext) SessionCookie(user *models.User) *http.Cookie {
	tc.T.Helper()

	token, err := tc.Services.Tokens.Sign(user.ID, user.Role, time.Hour)
	require.NoError(tc.T, err, "Failed to sign test session")
	return &http.Cookie{Name: auth.SessionCookieName, Value: token}
}

// DoJSON sends body as JSON to the router and records the response
func (tc *TestContext) DoJSON(method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	tc.T.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(tc.T, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	tc.Router.ServeHTTP(w, req)
	return w
}

// DecodeJSON unmarshals the recorded body into out
func DecodeJSON(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), "body: %s", w.Body.String())
}
