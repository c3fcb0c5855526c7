// Package config builds the process configuration once at startup.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Store backends.
const (
	StoreMemory    = "memory"
	StoreFirestore = "firestore"
	StoreSQLite    = "sqlite"
)

// Auth providers.
const (
	AuthNone     = "none"
	AuthFirebase = "firebase"
	AuthAuth0    = "auth0"
)

// Config holds everything the server needs. It is passed explicitly into
// component constructors; nothing below main reads the environment.
type Config struct {
	Port           string
	Env            string
	LogLevel       string
	MaxUploadBytes int64
	AllowedOrigins []string

	StoreBackend string
	SQLitePath   string
	ProjectID    string

	AuthProvider     string
	Auth0Domain      string
	Auth0APIAudience string

	Gemini    GeminiConfig
	Challenge ChallengePolicy

	Algolia         AlgoliaConfig
	StatementBucket string
}

// GeminiConfig configures the external reasoner.
type GeminiConfig struct {
	APIKey     string
	Model      string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

// ChallengePolicy holds the challenge generation constants.
type ChallengePolicy struct {
	PerCycle   int
	MaxTarget  decimal.Decimal
	PeriodDays int
}

// AlgoliaConfig configures the optional transaction search index.
type AlgoliaConfig struct {
	AppID     string
	APIKey    string
	IndexName string
}

// Enabled reports whether search indexing is configured.
func (a AlgoliaConfig) Enabled() bool {
	return a.AppID != "" && a.APIKey != ""
}

// IsLocal reports whether the server runs in local development mode.
func (c *Config) IsLocal() bool {
	return c.Env == "local"
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from an arbitrary key lookup.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	cfg := &Config{
		Port:             get("PORT", "8111"),
		Env:              get("ENV", "production"),
		LogLevel:         get("LOG_LEVEL", "info"),
		StoreBackend:     strings.ToLower(get("STORE_BACKEND", StoreFirestore)),
		SQLitePath:       get("SQLITE_PATH", "spendwise.db"),
		ProjectID:        get("GOOGLE_CLOUD_PROJECT", ""),
		AuthProvider:     strings.ToLower(get("AUTH_PROVIDER", AuthAuth0)),
		Auth0Domain:      get("AUTH0_DOMAIN", ""),
		Auth0APIAudience: get("AUTH0_API_AUDIENCE", ""),
		Gemini: GeminiConfig{
			APIKey:  get("GEMINI_API_KEY", ""),
			Model:   get("GEMINI_MODEL", "gemini-1.5-flash"),
			BaseURL: get("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		},
		Algolia: AlgoliaConfig{
			AppID:     get("ALGOLIA_APP_ID", ""),
			APIKey:    get("ALGOLIA_API_KEY", ""),
			IndexName: get("ALGOLIA_INDEX_NAME", "spendwise_transactions"),
		},
		StatementBucket: get("STATEMENT_BUCKET", ""),
	}

	for _, origin := range strings.Split(get("ALLOWED_ORIGINS", "http://localhost:3012"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	// Local development defaults to the in-memory store and mock auth.
	if cfg.IsLocal() {
		if _, ok := lookup("STORE_BACKEND"); !ok {
			cfg.StoreBackend = StoreMemory
		}
		if _, ok := lookup("AUTH_PROVIDER"); !ok {
			cfg.AuthProvider = AuthNone
		}
	}

	var err error
	if cfg.Gemini.Timeout, err = time.ParseDuration(get("ORACLE_TIMEOUT", "60s")); err != nil {
		return nil, fmt.Errorf("ORACLE_TIMEOUT: %w", err)
	}
	if cfg.Gemini.MaxRetries, err = strconv.Atoi(get("ORACLE_MAX_RETRIES", "0")); err != nil {
		return nil, fmt.Errorf("ORACLE_MAX_RETRIES: %w", err)
	}
	if cfg.Challenge.PerCycle, err = strconv.Atoi(get("CHALLENGES_PER_CYCLE", "3")); err != nil {
		return nil, fmt.Errorf("CHALLENGES_PER_CYCLE: %w", err)
	}
	if cfg.Challenge.MaxTarget, err = decimal.NewFromString(get("CHALLENGE_MAX_TARGET", "50")); err != nil {
		return nil, fmt.Errorf("CHALLENGE_MAX_TARGET: %w", err)
	}
	if cfg.Challenge.PeriodDays, err = strconv.Atoi(get("CHALLENGE_PERIOD_DAYS", "30")); err != nil {
		return nil, fmt.Errorf("CHALLENGE_PERIOD_DAYS: %w", err)
	}
	if cfg.MaxUploadBytes, err = strconv.ParseInt(get("MAX_UPLOAD_BYTES", "10485760"), 10, 64); err != nil {
		return nil, fmt.Errorf("MAX_UPLOAD_BYTES: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreBackend {
	case StoreMemory, StoreFirestore, StoreSQLite:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}

	switch c.AuthProvider {
	case AuthNone, AuthFirebase:
	case AuthAuth0:
		if c.Auth0Domain == "" || c.Auth0APIAudience == "" {
			return fmt.Errorf("AUTH0_DOMAIN and AUTH0_API_AUDIENCE are required for auth0")
		}
	default:
		return fmt.Errorf("unknown AUTH_PROVIDER %q", c.AuthProvider)
	}

	if c.Gemini.APIKey == "" && !c.IsLocal() {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	if c.Gemini.Timeout <= 0 {
		return fmt.Errorf("ORACLE_TIMEOUT must be positive")
	}
	if c.Gemini.MaxRetries < 0 {
		return fmt.Errorf("ORACLE_MAX_RETRIES must not be negative")
	}
	if c.Challenge.PerCycle <= 0 {
		return fmt.Errorf("CHALLENGES_PER_CYCLE must be positive")
	}
	if !c.Challenge.MaxTarget.IsPositive() {
		return fmt.Errorf("CHALLENGE_MAX_TARGET must be positive")
	}
	if c.Challenge.PeriodDays <= 0 {
		return fmt.Errorf("CHALLENGE_PERIOD_DAYS must be positive")
	}
	return nil
}
