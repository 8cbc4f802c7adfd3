package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultEnvFile          = ".env"
	defaultPort             = "8080"
	defaultReadTimeout      = 15 * time.Second
	defaultWriteTimeout     = 30 * time.Second
	defaultIdleTimeout      = 120 * time.Second
	defaultRoot             = "public"
	defaultSiteFile         = "site.yaml"
	defaultFetchTimeout     = 5 * time.Second
	defaultCacheTTL         = 5 * time.Minute
	defaultRelayEndpoint    = "https://api.emailjs.com"
	defaultRelayTimeout     = 10 * time.Second
	defaultContactPerMinute = 6
	defaultContactBurst     = 3
	defaultLogLevel         = "info"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server  ServerConfig
	Data    DataConfig
	Relay   RelayConfig
	Contact ContactConfig
	CORS    CORSConfig
	Log     LogConfig
	Dev     bool
	Site    SiteFile
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	Root         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DataConfig controls where datasets are read from.
// An empty Origin means datasets are served from Server.Root.
type DataConfig struct {
	Origin       string
	FetchTimeout time.Duration
	CacheTTL     time.Duration
	Watch        bool
}

// RelayConfig holds the email relay credentials. Service and template ids
// live in the site file.
type RelayConfig struct {
	Endpoint    string
	PublicKey   string
	AccessToken string
	Timeout     time.Duration
}

// ContactConfig tunes the per-client submission limiter.
type ContactConfig struct {
	PerMinute int
	Burst     int
}

// CORSConfig lists origins allowed to read /data/*.
type CORSConfig struct {
	AllowedOrigins []string
}

// LogConfig selects the zap level.
type LogConfig struct {
	Level string
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
	siteFile     *string
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from the process environment, relying only on provided maps and .env files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// WithSiteFile overrides SITE_CONFIG. An empty path skips the file and keeps defaults.
func WithSiteFile(path string) Option {
	return func(o *loaderOptions) {
		o.siteFile = &path
	}
}

// Load assembles the configuration from defaults, .env overrides, environment
// variables and the YAML site file.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if dotEnvValues != nil {
			if value, ok := dotEnvValues[key]; ok {
				return value, true
			}
		}
		return "", false
	}

	cfg := Config{
		Server: ServerConfig{
			Port:         stringWithDefault(lookup, "SITE_PORT", defaultPort),
			Root:         stringWithDefault(lookup, "SITE_ROOT", defaultRoot),
			ReadTimeout:  durationWithDefault(lookup, "SITE_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault(lookup, "SITE_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault(lookup, "SITE_IDLE_TIMEOUT", defaultIdleTimeout),
		},
		Data: DataConfig{
			Origin:       strings.TrimRight(stringWithDefault(lookup, "SITE_DATA_ORIGIN", ""), "/"),
			FetchTimeout: durationWithDefault(lookup, "SITE_FETCH_TIMEOUT", defaultFetchTimeout),
			CacheTTL:     durationWithDefault(lookup, "SITE_CACHE_TTL", defaultCacheTTL),
		},
		Relay: RelayConfig{
			Endpoint:    strings.TrimRight(stringWithDefault(lookup, "SITE_RELAY_ENDPOINT", defaultRelayEndpoint), "/"),
			PublicKey:   stringWithDefault(lookup, "SITE_RELAY_PUBLIC_KEY", ""),
			AccessToken: stringWithDefault(lookup, "SITE_RELAY_ACCESS_TOKEN", ""),
			Timeout:     durationWithDefault(lookup, "SITE_RELAY_TIMEOUT", defaultRelayTimeout),
		},
		Contact: ContactConfig{
			PerMinute: intWithDefault(lookup, "SITE_CONTACT_PER_MINUTE", defaultContactPerMinute),
			Burst:     intWithDefault(lookup, "SITE_CONTACT_BURST", defaultContactBurst),
		},
		CORS: CORSConfig{
			AllowedOrigins: csvWithDefault(lookup, "SITE_CORS_ORIGINS"),
		},
		Log: LogConfig{
			Level: stringWithDefault(lookup, "LOG_LEVEL", defaultLogLevel),
		},
		Dev: boolWithDefault(lookup, "SITE_DEV", false),
	}
	cfg.Data.Watch = boolWithDefault(lookup, "SITE_DATA_WATCH", cfg.Dev && cfg.Data.Origin == "")

	sitePath := stringWithDefault(lookup, "SITE_CONFIG", defaultSiteFile)
	if options.siteFile != nil {
		sitePath = *options.siteFile
	}
	site, err := LoadSiteFile(sitePath)
	if err != nil {
		return Config{}, err
	}
	cfg.Site = site

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config) error {
	var missing []string

	if cfg.Server.Port == "" {
		missing = append(missing, "Server.Port")
	}
	if strings.TrimSpace(cfg.Server.Root) == "" {
		missing = append(missing, "Server.Root")
	}
	if cfg.Data.FetchTimeout <= 0 {
		missing = append(missing, "Data.FetchTimeout")
	}
	if cfg.Relay.Timeout <= 0 {
		missing = append(missing, "Relay.Timeout")
	}
	if cfg.Contact.PerMinute <= 0 {
		missing = append(missing, "Contact.PerMinute")
	}
	if cfg.Contact.Burst <= 0 {
		missing = append(missing, "Contact.Burst")
	}
	missing = append(missing, cfg.Site.validate()...)

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	values, err := godotenv.Read(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && value != "" {
		return value
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}

func csvWithDefault(lookup func(string) (string, bool), key string) []string {
	raw, ok := lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
