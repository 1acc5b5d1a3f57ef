package apiclient

import "time"

// Config holds the backend connection settings.
type Config struct {
	BaseURL string        `env:"BACKEND_URL" envDefault:"http://localhost:5001/api"`
	Timeout time.Duration `env:"BACKEND_TIMEOUT" envDefault:"30s"`
}

// NewFromConfig creates a Client from cfg.
func NewFromConfig(cfg Config, opts ...Option) *Client {
	return New(cfg.BaseURL, append([]Option{WithTimeout(cfg.Timeout)}, opts...)...)
}
