package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/dojosmash/dojo-smash/internal/dependencies/mocks"
	"github.com/dojosmash/dojo-smash/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	clock   *mocks.MockClock
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2025, time.February, 5, 12, 0, 0, 0, time.UTC))
	svc, err := New(s.clock, Config{Key: "pendejo"}, testutil.NopLogger())
	s.Require().NoError(err)
	s.service = svc
}

// Login tests

func (s *ServiceSuite) TestLoginSucceeds() {
	s.True(s.service.Enabled())

	session, err := s.service.Login("pendejo")
	s.Require().NoError(err)
	s.NotEmpty(session.Token)
	s.Equal(s.clock.Now().Add(24*time.Hour), session.ExpiresAt)
}

func (s *ServiceSuite) TestLoginWrongKey() {
	_, err := s.service.Login("nope")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestLoginWithHash() {
	hash, err := bcrypt.GenerateFromPassword([]byte("secreto"), bcrypt.MinCost)
	s.Require().NoError(err)

	svc, err := New(s.clock, Config{KeyHash: string(hash), Key: "ignored"}, testutil.NopLogger())
	s.Require().NoError(err)

	_, err = svc.Login("secreto")
	s.NoError(err)
	_, err = svc.Login("ignored")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestBadHashRejected() {
	_, err := New(s.clock, Config{KeyHash: "plain-text"}, testutil.NopLogger())
	s.Error(err)
}

func (s *ServiceSuite) TestDisabled() {
	svc, err := New(s.clock, Config{}, testutil.NopLogger())
	s.Require().NoError(err)
	s.False(svc.Enabled())

	_, err = svc.Login("anything")
	s.ErrorIs(err, ErrDisabled)
}

// Session tests

func (s *ServiceSuite) TestTokensAreUnique() {
	a, _ := s.service.Login("pendejo")
	b, _ := s.service.Login("pendejo")
	s.NotEqual(a.Token, b.Token)
}

func (s *ServiceSuite) TestValidateSession() {
	session, _ := s.service.Login("pendejo")

	got, err := s.service.ValidateSession(session.Token)
	s.Require().NoError(err)
	s.Equal(session.Token, got.Token)

	_, err = s.service.ValidateSession("sess_bogus")
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestSessionExpires() {
	session, _ := s.service.Login("pendejo")

	s.clock.Advance(25 * time.Hour)

	_, err := s.service.ValidateSession(session.Token)
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestInvalidateSession() {
	session, _ := s.service.Login("pendejo")
	s.service.InvalidateSession(session.Token)

	_, err := s.service.ValidateSession(session.Token)
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestCleanExpiredSessions() {
	old, _ := s.service.Login("pendejo")
	s.clock.Advance(23 * time.Hour)
	fresh, _ := s.service.Login("pendejo")
	s.clock.Advance(2 * time.Hour)

	s.Equal(1, s.service.CleanExpiredSessions())

	_, err := s.service.ValidateSession(old.Token)
	s.ErrorIs(err, ErrInvalidSession)
	_, err = s.service.ValidateSession(fresh.Token)
	s.NoError(err)
}
