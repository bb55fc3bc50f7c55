package config

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
)

type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	// GeminiAPIKey is optional at boot; AI calls fail with missing_credential without it.
	GeminiAPIKey     string `env:"GEMINI_API_KEY"`
	GeminiImageModel string `env:"GEMINI_IMAGE_MODEL" envDefault:"gemini-2.5-flash-image"`
	GeminiTextModel  string `env:"GEMINI_TEXT_MODEL" envDefault:"gemini-2.5-flash"`

	RequestTimeoutSeconds int `env:"REQUEST_TIMEOUT_SECONDS" envDefault:"90"`
	HTTPTimeoutSeconds    int `env:"HTTP_TIMEOUT_SECONDS" envDefault:"120"`
	MaxUploadMB           int `env:"MAX_UPLOAD_MB" envDefault:"15"`

	// MaxImagePixels caps width x height of uploads and generated images.
	MaxImagePixels int64 `env:"MAX_IMAGE_PIXELS" envDefault:"40000000"`

	ListingProfile     string   `env:"LISTING_PROFILE" envDefault:"detailed"`
	SessionIdleMinutes int      `env:"SESSION_IDLE_MINUTES" envDefault:"60"`
	CORSAllowOrigins   []string `env:"CORS_ALLOW_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://localhost:5173"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	cfg.GeminiAPIKey = strings.TrimSpace(cfg.GeminiAPIKey)
	return &cfg, nil
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

func (c *Config) SessionIdle() time.Duration {
	return time.Duration(c.SessionIdleMinutes) * time.Minute
}

func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}
