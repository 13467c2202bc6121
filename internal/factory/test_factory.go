package factory

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/gysagsohn/game-tracker-server/internal/dependencies/mocks"
	"github.com/gysagsohn/game-tracker-server/internal/services/auth"
	"github.com/gysagsohn/game-tracker-server/internal/storage/memory"
	"github.com/gysagsohn/game-tracker-server/internal/testutil"
)

// TestSecret signs tokens issued by a TestApp
const TestSecret = "test-secret"

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockIDs    *mocks.MockIDs
	MockMailer *mocks.MockMailer
	Memory     *memory.Storage
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	return NewTestAppWithConfig(Config{})
}

// NewTestAppWithConfig is NewTestApp with overrides. Logger, Sender and
// storage settings in cfg are ignored.
func NewTestAppWithConfig(cfg Config) *TestApp {
	mockClock := mocks.NewMockClock(time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC))
	mockIDs := mocks.NewMockIDs()
	mockMailer := mocks.NewMockMailer()
	store := memory.New(mockClock)

	if cfg.AuthConfig.Secret == "" {
		cfg.AuthConfig.Secret = TestSecret
	}
	if cfg.AuthConfig.BcryptCost == 0 {
		cfg.AuthConfig.BcryptCost = bcrypt.MinCost
	}
	if cfg.AuthConfig.FrontendURL == "" {
		cfg.AuthConfig.FrontendURL = auth.DefaultConfig().FrontendURL
	}

	app := newWithDependencies(store, mockClock, mockIDs, mockMailer, cfg, testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockIDs:    mockIDs,
		MockMailer: mockMailer,
		Memory:     store,
	}
}
