// Package config loads typed configuration from the process environment.
//
// Load parses environment variables into a struct using
// github.com/caarlos0/env/v11 tags. Before the first parse it loads a .env
// file from the working directory with github.com/joho/godotenv when one
// exists; variables already set in the environment win. Each config type is
// parsed once and cached for the life of the process.
//
//	type Config struct {
//	    BackendURL string        `env:"BACKEND_URL" envDefault:"http://localhost:5001/api"`
//	    Timeout    time.Duration `env:"BACKEND_TIMEOUT" envDefault:"30s"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//	    return err
//	}
//
// LoadFiles loads extra dotenv files explicitly, for example per-environment
// overrides. Parse errors are not cached, so a later Load retries.
package config
