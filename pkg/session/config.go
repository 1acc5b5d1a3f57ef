package session

import "time"

type Config struct {
	CookieName      string        `env:"SESSION_COOKIE_NAME" envDefault:"eventmail_sid"`
	AnonTTL         time.Duration `env:"SESSION_ANON_TTL" envDefault:"1h"`
	AuthTTL         time.Duration `env:"SESSION_AUTH_TTL" envDefault:"12h"`
	CleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"5m"`
}

func DefaultConfig() Config {
	return Config{
		CookieName:      "eventmail_sid",
		AnonTTL:         time.Hour,
		AuthTTL:         12 * time.Hour,
		CleanupInterval: 5 * time.Minute,
	}
}
