package session

import (
	"maps"
	"time"

	"github.com/google/uuid"
)

// User is the console user returned by the backend at login.
type User struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Session is the server-side state behind a session cookie.
type Session struct {
	ID        uuid.UUID         `json:"id"`
	Token     string            `json:"token"`
	APIToken  string            `json:"api_token,omitempty"`
	User      *User             `json:"user,omitempty"`
	Data      map[string]string `json:"data,omitempty"`
	ExpiresAt time.Time         `json:"expires_at"`
	CreatedAt time.Time         `json:"created_at"`
}

func newSession(token string, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.New(),
		Token:     token,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
}

// IsAuthenticated reports whether the session carries a backend token.
func (s *Session) IsAuthenticated() bool {
	return s != nil && s.APIToken != ""
}

func (s *Session) IsExpired() bool {
	return s != nil && time.Now().After(s.ExpiresAt)
}

// BearerToken returns the backend token, or "" for anonymous sessions.
func (s *Session) BearerToken() string {
	if s == nil {
		return ""
	}
	return s.APIToken
}

func (s *Session) Get(key string) (string, bool) {
	if s == nil || s.Data == nil {
		return "", false
	}
	v, ok := s.Data[key]
	return v, ok
}

func (s *Session) Set(key, value string) {
	if s.Data == nil {
		s.Data = make(map[string]string)
	}
	s.Data[key] = value
}

func (s *Session) Delete(key string) {
	delete(s.Data, key)
}

func (s *Session) clone() *Session {
	c := *s
	c.Data = maps.Clone(s.Data)
	if s.User != nil {
		u := *s.User
		c.User = &u
	}
	return &c
}
