package factory

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/dojosmash/dojo-smash/internal/config"
	"github.com/dojosmash/dojo-smash/internal/events/sse"
	"github.com/dojosmash/dojo-smash/internal/model"
	"github.com/dojosmash/dojo-smash/internal/services/auth"
	"github.com/dojosmash/dojo-smash/internal/services/users"
	"github.com/dojosmash/dojo-smash/internal/services/wager"
	"github.com/dojosmash/dojo-smash/internal/services/weekly"
	redisstorage "github.com/dojosmash/dojo-smash/internal/storage/redis"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
}

func (s *IntegrationSuite) TearDownTest() {
	s.NoError(s.app.Close())
}

func (s *IntegrationSuite) createUser(name string) *model.User {
	u, err := s.app.UserService.Create(s.ctx, name, "")
	s.Require().NoError(err)
	return u
}

func (s *IntegrationSuite) user(id model.UserID) *model.User {
	u, err := s.app.UserService.Get(s.ctx, id)
	s.Require().NoError(err)
	return u
}

// Test: a full week of ledger activity ends up consistent across services
func (s *IntegrationSuite) TestWeekOfLedgerActivity() {
	ana := s.createUser("Ana")
	beto := s.createUser("Beto")
	carla := s.createUser("Carla")

	// Step 1: weekly registration for everyone
	_, err := s.app.WeeklyService.RegisterBatch(s.ctx, "2025-W06", []weekly.Entry{
		{UserID: ana.ID, Deltas: model.Points{Dojos: 2, Pendejos: 1}},
		{UserID: beto.ID, Deltas: model.Points{Dojos: 1}},
		{UserID: carla.ID, Deltas: model.Points{Mimidos: 1, Chescos: 3}},
	})
	s.Require().NoError(err)

	// Step 2: a three-way wager
	w, err := s.app.WagerService.Create(s.ctx, wager.CreateParams{
		Participants: []model.UserID{ana.ID, beto.ID, carla.ID},
		Category:     model.CategoryDojos,
		Stake:        1,
	})
	s.Require().NoError(err)
	_, err = s.app.WagerService.Resolve(s.ctx, w.ID, carla.ID)
	s.Require().NoError(err)

	s.Equal(model.Points{Dojos: 1, Pendejos: 1}, s.user(ana.ID).Points)
	s.Equal(model.Points{Dojos: 0}, s.user(beto.ID).Points)
	s.Equal(model.Points{Dojos: 2, Mimidos: 1, Chescos: 3}, s.user(carla.ID).Points)

	// Step 3: debt and payment
	debt := 20.0
	_, err = s.app.UserService.Update(s.ctx, ana.ID, users.Patch{Debt: &debt})
	s.Require().NoError(err)
	_, err = s.app.BankService.RecordPayment(s.ctx, ana.ID, 15, "")
	s.Require().NoError(err)
	s.Equal(5.0, s.user(ana.ID).Debt)

	// Step 4: the table reflects it all
	table, err := s.app.TablaService.Table(s.ctx)
	s.Require().NoError(err)
	s.Equal(model.Week("2025-W06"), table.Week)
	s.Require().Len(table.Rows, 3)
	s.Equal("Carla", table.Rows[0].User.Name)
	s.Equal(1.0, table.Rows[0].Total)
}

// Test: events from the services reach a connected SSE client
func (s *IntegrationSuite) TestEventsReachHub() {
	client := sse.NewClient("test")
	s.Require().True(s.app.Hub.Register(client))
	s.Require().Eventually(func() bool { return s.app.Hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	s.createUser("Ana")

	select {
	case msg := <-client.Messages():
		s.Contains(string(msg), "event: usuario_creado")
	case <-time.After(time.Second):
		s.Fail("no event received")
	}
}

func TestNewMemoryApp(t *testing.T) {
	app, err := New(context.Background(), Config{})
	require.NoError(t, err)
	defer app.Close()

	assert.Equal(t, StorageTypeMemory, app.StorageType)
	assert.False(t, app.AuthService.Enabled())
	assert.Nil(t, app.NATS)
}

func TestNewClockUsesServerTimezone(t *testing.T) {
	cfg := &config.Config{
		Server:  config.ServerConfig{Timezone: "America/Mexico_City"},
		Storage: config.StorageConfig{Type: StorageTypeMemory},
	}
	appCfg, err := ConfigFrom(cfg, nil)
	require.NoError(t, err)

	app, err := New(context.Background(), appCfg)
	require.NoError(t, err)
	defer app.Close()

	assert.Equal(t, "America/Mexico_City", app.Clock.Now().Location().String())

	cfg.Server.Timezone = "Mars/Olympus"
	_, err = ConfigFrom(cfg, nil)
	assert.Error(t, err)
}

func TestNewRedisApp(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := redisstorage.DefaultConfig()
	cfg.URL = "redis://" + mr.Addr()

	app, err := New(context.Background(), Config{StorageType: StorageTypeRedis, RedisConfig: &cfg})
	require.NoError(t, err)
	defer app.Close()

	assert.Equal(t, StorageTypeRedis, app.StorageType)
	_, err = app.UserService.Create(context.Background(), "Ana", "yoshi")
	require.NoError(t, err)
	assert.True(t, mr.Exists("dojo:idx:nombre:Ana"))
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := New(context.Background(), Config{StorageType: "postgres"})
	assert.Error(t, err)

	_, err = New(context.Background(), Config{StorageType: StorageTypeRedis})
	assert.Error(t, err)

	_, err = New(context.Background(), Config{AuthConfig: auth.Config{KeyHash: "not-bcrypt"}})
	assert.Error(t, err)
}
