package factory

import (
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/codebreaker/internal/dependencies/mocks"
	"github.com/mcoot/codebreaker/internal/storage/memory"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	return NewTestAppWithConfig(Config{})
}

// NewTestAppWithConfig creates a test App with mocked dependencies and the
// given housekeeping settings. Storage is always in memory.
func NewTestAppWithConfig(cfg Config) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	app := newWithDependencies(store, mockClock, mockRandom, cfg, logger)

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}

// QueueLobby queues the code and secret for the next created lobby's first round
func (t *TestApp) QueueLobby(code, secret string) {
	t.MockRandom.QueueString(code)
	t.MockRandom.QueueSecret(secret)
}
