// Package config loads server configuration from flags and SPLITLEDGER_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/mmynk/splitledger/pkg/logging"
)

// EnvPrefix is prepended to every flag name to form its environment variable,
// e.g. --db-path is read from SPLITLEDGER_DB_PATH.
const EnvPrefix = "SPLITLEDGER"

// Config holds everything the server needs to start.
type Config struct {
	Addr            string
	DBPath          string
	JWTSecret       string
	TokenTTL        time.Duration
	LogLevel        string
	LogFormat       string
	MetricsEnabled  bool
	ShutdownTimeout time.Duration
	AllowedOrigin   string
	DefaultCurrency string
	// RateLimit requests are allowed per client IP each RateWindow; 0 disables.
	RateLimit       int
	RateWindow      time.Duration
}

// ErrHelp is returned by Load when help was requested. The usage text has
// already been written to the error's message.
var ErrHelp = ff.ErrHelp

// Load parses args and the environment into a Config.
func Load(args []string) (*Config, error) {
	fs := ff.NewFlagSet("splitledger")
	var (
		addr            = fs.StringLong("addr", ":8080", "HTTP listen address")
		dbPath          = fs.StringLong("db-path", "./data/splitledger.db", "SQLite database file path")
		jwtSecret       = fs.StringLong("jwt-secret", "", "HMAC secret for signing session tokens (required)")
		tokenTTL        = fs.DurationLong("token-ttl", 24*time.Hour, "how long session tokens stay valid")
		logLevel        = fs.StringLong("log-level", "info", "log level: debug, info, warn, error")
		logFormat       = fs.StringLong("log-format", logging.FormatText, "log format: text or json")
		metrics         = fs.BoolLong("metrics", "serve Prometheus metrics on /metrics")
		shutdownTimeout = fs.DurationLong("shutdown-timeout", 10*time.Second, "grace period for in-flight requests on shutdown")
		allowedOrigin   = fs.StringLong("allowed-origin", "*", "value of Access-Control-Allow-Origin")
		defaultCurrency = fs.StringLong("default-currency", "USD", "ISO 4217 currency for expenses that omit one")
		rateLimit       = fs.IntLong("rate-limit", 100, "requests allowed per client IP each rate window (0 disables)")
		rateWindow      = fs.DurationLong("rate-window", 15*time.Minute, "window for --rate-limit")
	)

	if err := ff.Parse(fs, args, ff.WithEnvVarPrefix(EnvPrefix)); err != nil {
		if errors.Is(err, ff.ErrHelp) {
			return nil, fmt.Errorf("%s\n%w", ffhelp.Flags(fs), err)
		}
		return nil, fmt.Errorf("%s\nerror: %w", ffhelp.Flags(fs), err)
	}

	cfg := &Config{
		Addr:            *addr,
		DBPath:          *dbPath,
		JWTSecret:       *jwtSecret,
		TokenTTL:        *tokenTTL,
		LogLevel:        *logLevel,
		LogFormat:       *logFormat,
		MetricsEnabled:  *metrics,
		ShutdownTimeout: *shutdownTimeout,
		AllowedOrigin:   *allowedOrigin,
		DefaultCurrency: *defaultCurrency,
		RateLimit:       *rateLimit,
		RateWindow:      *rateWindow,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("jwt secret is required (--jwt-secret or SPLITLEDGER_JWT_SECRET)")
	}
	if len(c.JWTSecret) < 16 {
		return errors.New("jwt secret must be at least 16 characters")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("token ttl must be positive, got %s", c.TokenTTL)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit must not be negative, got %d", c.RateLimit)
	}
	if c.RateLimit > 0 && c.RateWindow <= 0 {
		return fmt.Errorf("rate window must be positive, got %s", c.RateWindow)
	}
	if c.LogFormat != logging.FormatText && c.LogFormat != logging.FormatJSON {
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}
