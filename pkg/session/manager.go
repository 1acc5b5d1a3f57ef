package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// Manager ties a Store and a Transport together.
type Manager struct {
	store     Store
	transport Transport
	config    Config
	log       *slog.Logger
}

// New creates a Manager. A transport is required; the store defaults to
// a MemoryStore swept at the configured cleanup interval.
func New(opts ...Option) *Manager {
	m := &Manager{
		config: DefaultConfig(),
		log:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.transport == nil {
		panic("session: transport is required")
	}
	if m.store == nil {
		m.store = NewMemoryStore(m.config.CleanupInterval)
	}
	return m
}

// Load returns the session referenced by the request, if it exists and
// has not expired.
func (m *Manager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	token, err := m.transport.GetToken(r)
	if err != nil {
		return nil, err
	}
	s, err := m.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if s.IsExpired() {
		return nil, ErrSessionExpired
	}
	return s, nil
}

// Ensure returns the current session or starts an anonymous one.
func (m *Manager) Ensure(ctx context.Context, w http.ResponseWriter, r *http.Request) (*Session, error) {
	if s, err := m.Load(ctx, r); err == nil {
		return s, nil
	}

	token, err := generateToken()
	if err != nil {
		return nil, err
	}
	s := newSession(token, m.config.AnonTTL)
	if err := m.store.Save(ctx, s); err != nil {
		return nil, err
	}
	if err := m.transport.SetToken(w, s.Token, m.config.AnonTTL); err != nil {
		_ = m.store.Delete(ctx, s.Token)
		return nil, err
	}
	return s, nil
}

// Login stores the backend credentials on the session and rotates its token.
func (m *Manager) Login(ctx context.Context, w http.ResponseWriter, r *http.Request, user User, apiToken string) (*Session, error) {
	s, err := m.Load(ctx, r)
	if err != nil {
		s = newSession("", m.config.AuthTTL)
	} else {
		_ = m.store.Delete(ctx, s.Token)
	}

	token, err := generateToken()
	if err != nil {
		return nil, err
	}
	s.Token = token
	s.APIToken = apiToken
	s.User = &user
	s.ExpiresAt = time.Now().Add(m.config.AuthTTL)

	if err := m.store.Save(ctx, s); err != nil {
		return nil, err
	}
	if err := m.transport.SetToken(w, s.Token, m.config.AuthTTL); err != nil {
		return nil, err
	}
	return s, nil
}

// ClearCredentials removes the backend token and user but keeps the
// session and its data.
func (m *Manager) ClearCredentials(ctx context.Context, s *Session) error {
	if s == nil {
		return ErrInvalidSession
	}
	s.APIToken = ""
	s.User = nil
	return m.store.Save(ctx, s)
}

// Save persists changes made to s.
func (m *Manager) Save(ctx context.Context, s *Session) error {
	return m.store.Save(ctx, s)
}

// Destroy deletes the session and expires the cookie.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	defer m.transport.ClearToken(w)
	token, err := m.transport.GetToken(r)
	if err != nil {
		return nil
	}
	return m.store.Delete(ctx, token)
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrTokenGeneration, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
