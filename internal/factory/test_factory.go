package factory

import (
	"context"
	"time"

	"github.com/dojosmash/dojo-smash/internal/dependencies/mocks"
	"github.com/dojosmash/dojo-smash/internal/model"
	"github.com/dojosmash/dojo-smash/internal/services/auth"
	"github.com/dojosmash/dojo-smash/internal/storage"
	"github.com/dojosmash/dojo-smash/internal/storage/memory"
	"github.com/dojosmash/dojo-smash/internal/testutil"
)

// TestAdminKey is the admin key of apps built by NewTestApp
const TestAdminKey = "dojo-test-key"

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	MockIDs    *mocks.MockIDs
}

// NewTestApp creates an App on memory storage with mocked dependencies.
// Authorization is enabled with TestAdminKey.
func NewTestApp() *TestApp {
	return newTestApp(auth.Config{Key: TestAdminKey})
}

// NewOpenTestApp is NewTestApp with authorization disabled
func NewOpenTestApp() *TestApp {
	return newTestApp(auth.Config{})
}

func newTestApp(authCfg auth.Config) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2025, time.February, 5, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	mockIDs := mocks.NewMockIDs("id")

	app, err := newWithDependencies(store, mockClock, mockRandom, mockIDs, nil, authCfg, testutil.NopLogger())
	if err != nil {
		panic(err)
	}

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		MockIDs:    mockIDs,
	}
}

// Token logs in with TestAdminKey and returns the session token
func (t *TestApp) Token() string {
	session, err := t.AuthService.Login(TestAdminKey)
	if err != nil {
		panic(err)
	}
	return session.Token
}

// SeedUsers saves users directly, bypassing the services
func (t *TestApp) SeedUsers(ctx context.Context, users ...*model.User) error {
	return t.Storage.Update(ctx, func(ctx context.Context, tx storage.Tx) error {
		for _, u := range users {
			if u.Avatar == "" {
				u.Avatar = model.DefaultAvatar
			}
			if err := tx.SaveUser(ctx, u); err != nil {
				return err
			}
		}
		return nil
	})
}
