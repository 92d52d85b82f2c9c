package app

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/customtruckbeds/site/internal/quote"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"30s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	SessionSecret string        `envconfig:"SESSION_SECRET" required:"true"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"24h"`

	CSRFSecret string `envconfig:"CSRF_SECRET" required:"true"`

	WebhookMode    string        `envconfig:"WEBHOOK_MODE" default:"fixed"`
	WebhookURL     string        `envconfig:"WEBHOOK_URL"`
	WebhookTimeout time.Duration `envconfig:"WEBHOOK_TIMEOUT" default:"10s"`

	// QuoteRateLimit caps quote POSTs per client IP per minute.
	QuoteRateLimit int `envconfig:"QUOTE_RATE_LIMIT" default:"5"`

	LeadNotifyTo string `envconfig:"LEAD_NOTIFY_TO"`
	SMTPHost     string `envconfig:"SMTP_HOST" default:"127.0.0.1"`
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"1025"`
	SMTPFrom     string `envconfig:"SMTP_FROM" default:"website@customtruckbeds.com.au"`

	// WorkerMetricsAddr serves /metrics for cmd/worker. Empty disables it.
	WorkerMetricsAddr string `envconfig:"WORKER_METRICS_ADDR" default:":9091"`
}

// LoadDotEnv loads the given .env files when present. Variables already set in
// the environment win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var existing []string
	for _, f := range files {
		if fileExists(f) {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot express.
func (c *Config) Validate() error {
	if c.SessionSecret == "" {
		return errors.New("session secret must be provided")
	}
	if c.CSRFSecret == "" {
		return errors.New("csrf secret must be provided")
	}
	mode, err := quote.ParseMode(c.WebhookMode)
	if err != nil {
		return err
	}
	if mode == quote.ModeFixed && c.WebhookURL != "" {
		u, err := url.Parse(c.WebhookURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("WEBHOOK_URL must be an absolute http(s) URL, got %q", c.WebhookURL)
		}
	}
	if c.WebhookTimeout <= 0 {
		return errors.New("WEBHOOK_TIMEOUT must be positive")
	}
	if c.QuoteRateLimit <= 0 {
		return errors.New("QUOTE_RATE_LIMIT must be positive")
	}
	return nil
}

// Mode returns the parsed webhook mode. Validate has already rejected bad values.
func (c *Config) Mode() quote.Mode {
	mode, _ := quote.ParseMode(c.WebhookMode)
	return mode
}

// Endpoint returns the fixed webhook URL, falling back to the built-in default.
func (c *Config) Endpoint() string {
	if c.WebhookURL == "" {
		return quote.DefaultWebhookURL
	}
	return c.WebhookURL
}

// NotifiesLeads reports whether lead emails are enabled.
func (c *Config) NotifiesLeads() bool {
	return c != nil && c.LeadNotifyTo != ""
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
