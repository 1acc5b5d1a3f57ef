package cookie

import (
	"net/http"
	"strings"
)

type Config struct {
	Secrets  []string `env:"COOKIE_SECRETS" envSeparator:","`
	Domain   string   `env:"COOKIE_DOMAIN"`
	Secure   bool     `env:"COOKIE_SECURE" envDefault:"false"`
	SameSite string   `env:"COOKIE_SAME_SITE" envDefault:"lax"`
}

func (c Config) sameSite() http.SameSite {
	switch strings.ToLower(c.SameSite) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// NewFromConfig creates a Manager from cfg. Extra options override it.
func NewFromConfig(cfg Config, opts ...Option) (*Manager, error) {
	base := []Option{
		WithSecure(cfg.Secure),
		WithSameSite(cfg.sameSite()),
	}
	if cfg.Domain != "" {
		base = append(base, WithDomain(cfg.Domain))
	}
	return New(cfg.Secrets, append(base, opts...)...)
}
