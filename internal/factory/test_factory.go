package factory

import (
	"time"

	"github.com/mcoot/swordgame-go/internal/dependencies/mocks"
	"github.com/mcoot/swordgame-go/internal/storage/memory"
	"github.com/mcoot/swordgame-go/internal/testutil"
	"github.com/mcoot/swordgame-go/internal/transport/ws"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// Enhancement rolls and bot choices both come from MockRandom, so queue them before each attempt.
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(store, mockClock, mockRandom, mockRandom, ws.DefaultOptions(), testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
