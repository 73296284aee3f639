package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dojosmash/dojo-smash/internal/dependencies/clock"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid admin key")
	ErrInvalidSession     = errors.New("invalid or expired session")
	ErrDisabled           = errors.New("authorization is not configured")
)

// Session represents an authenticated admin session
type Session struct {
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Service guards ledger writes behind a shared admin key
type Service struct {
	clock  clock.Clock
	logger *slog.Logger

	keyHash []byte

	mu       sync.RWMutex
	sessions map[string]*Session

	sessionDuration time.Duration
}

// Config holds configuration for the auth service.
// KeyHash takes precedence over Key. With neither set, authorization is off.
type Config struct {
	Key             string
	KeyHash         string
	SessionDuration time.Duration
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		SessionDuration: 24 * time.Hour,
	}
}

// New creates a new auth Service. A plain Key is hashed with bcrypt on startup.
func New(clock clock.Clock, cfg Config, logger *slog.Logger) (*Service, error) {
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = DefaultConfig().SessionDuration
	}
	s := &Service{
		clock:           clock,
		logger:          logger.With(slog.String("service", "auth")),
		sessions:        make(map[string]*Session),
		sessionDuration: cfg.SessionDuration,
	}

	switch {
	case cfg.KeyHash != "":
		if _, err := bcrypt.Cost([]byte(cfg.KeyHash)); err != nil {
			return nil, errors.New("auth: admin_key_hash is not a bcrypt hash")
		}
		s.keyHash = []byte(cfg.KeyHash)
	case cfg.Key != "":
		hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Key), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		s.keyHash = hash
	default:
		s.logger.Warn("no admin key configured, ledger writes are open to everyone")
	}
	return s, nil
}

// Enabled reports whether an admin key is configured
func (s *Service) Enabled() bool {
	return s.keyHash != nil
}

// Login checks the admin key and creates a session
func (s *Service) Login(key string) (*Session, error) {
	if !s.Enabled() {
		return nil, ErrDisabled
	}
	if err := bcrypt.CompareHashAndPassword(s.keyHash, []byte(key)); err != nil {
		s.logger.Warn("rejected admin login")
		return nil, ErrInvalidCredentials
	}
	return s.createSession(), nil
}

// ValidateSession checks if a session token is valid and returns the session
func (s *Service) ValidateSession(token string) (*Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrInvalidSession
	}

	if s.clock.Now().After(session.ExpiresAt) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return nil, ErrInvalidSession
	}

	return session, nil
}

// InvalidateSession removes a session
func (s *Service) InvalidateSession(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

func (s *Service) createSession() *Session {
	now := s.clock.Now()
	session := &Session{
		Token:     generateToken("sess_"),
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionDuration),
	}

	s.mu.Lock()
	s.sessions[session.Token] = session
	s.mu.Unlock()

	return session
}

func generateToken(prefix string) string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return prefix + base64.RawURLEncoding.EncodeToString(b)
}

// CleanExpiredSessions removes expired sessions (call periodically)
func (s *Service) CleanExpiredSessions() int {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for token, session := range s.sessions {
		if now.After(session.ExpiresAt) {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed
}
