package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates application configuration values.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Graph    GraphConfig    `yaml:"graph"`
	Logging  LoggingConfig  `yaml:"logging"`
	Auth     AuthConfig     `yaml:"auth"`
	Sessions SessionsConfig `yaml:"sessions"`
	// DefaultLanguage is used when a request carries no usable Accept-Language.
	DefaultLanguage string `yaml:"default_language"`
}

// HTTPConfig governs HTTP server behaviour.
type HTTPConfig struct {
	Host              string        `yaml:"host"`
	Port              int           `yaml:"port"`
	ReadTimeout       time.Duration `yaml:"read_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	IdleTimeout       time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
	AllowedOriginsCSV string        `yaml:"allowed_origins"`
}

// GraphConfig describes connectivity to the Neo4j database.
type GraphConfig struct {
	URI            string `yaml:"uri"`
	Database       string `yaml:"database"`
	Username       string `yaml:"username"`
	Password       string `yaml:"password"`
	MaxConnections int    `yaml:"max_connections"`
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level         string `yaml:"level"`
	Format        string `yaml:"format"` // text|json
	IncludeCaller bool   `yaml:"include_caller"`
}

// AuthConfig tunes credential and token handling.
type AuthConfig struct {
	SessionTTL     time.Duration `yaml:"session_ttl"`
	CodeTTL        time.Duration `yaml:"code_ttl"`
	ResetTTL       time.Duration `yaml:"reset_ttl"`
	MaxCodeAttempt int           `yaml:"max_code_attempts"`
	BcryptCost     int           `yaml:"bcrypt_cost"`
}

// SessionsConfig locates the SQLite database holding sessions and one-time codes.
type SessionsConfig struct {
	Path          string        `yaml:"path"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

const (
	defaultHost             = "0.0.0.0"
	defaultPort             = 8080
	defaultReadTimeout      = 10 * time.Second
	defaultWriteTimeout     = 15 * time.Second
	defaultIdleTimeout      = 60 * time.Second
	defaultShutdownTimeout  = 10 * time.Second
	defaultLoggingLevel     = "info"
	defaultLoggingFormat    = "text"
	defaultGraphMaxSessions = 10
	defaultSessionTTL       = 24 * time.Hour
	defaultCodeTTL          = 10 * time.Minute
	defaultResetTTL         = 15 * time.Minute
	defaultMaxCodeAttempts  = 5
	defaultBcryptCost       = 12
	defaultSessionDBPath    = "data/sessions.db"
	defaultSweepInterval    = 5 * time.Minute
	defaultLanguage         = "ar"
)

// Defaults returns a Config populated with built-in defaults only.
func Defaults() Config {
	return Config{
		HTTP: HTTPConfig{
			Host:            defaultHost,
			Port:            defaultPort,
			ReadTimeout:     defaultReadTimeout,
			WriteTimeout:    defaultWriteTimeout,
			IdleTimeout:     defaultIdleTimeout,
			ShutdownTimeout: defaultShutdownTimeout,
		},
		Graph: GraphConfig{
			MaxConnections: defaultGraphMaxSessions,
		},
		Logging: LoggingConfig{
			Level:  defaultLoggingLevel,
			Format: defaultLoggingFormat,
		},
		Auth: AuthConfig{
			SessionTTL:     defaultSessionTTL,
			CodeTTL:        defaultCodeTTL,
			ResetTTL:       defaultResetTTL,
			MaxCodeAttempt: defaultMaxCodeAttempts,
			BcryptCost:     defaultBcryptCost,
		},
		Sessions: SessionsConfig{
			Path:          defaultSessionDBPath,
			SweepInterval: defaultSweepInterval,
		},
		DefaultLanguage: defaultLanguage,
	}
}

// Load reads configuration from the optional WAKILI_CONFIG_FILE and then from
// environment variables, applying defaults for anything left unset.
func Load() (Config, error) {
	cfg := Defaults()

	if path := os.Getenv("WAKILI_CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot run with.
func (c Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("port %d is out of range", c.HTTP.Port)
	}
	if c.Auth.SessionTTL <= 0 {
		return errors.New("auth session ttl must be positive")
	}
	if c.Auth.CodeTTL <= 0 || c.Auth.ResetTTL <= 0 {
		return errors.New("auth code ttls must be positive")
	}
	if c.Auth.MaxCodeAttempt <= 0 {
		return errors.New("auth max code attempts must be positive")
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("bcrypt cost %d is out of range", c.Auth.BcryptCost)
	}
	if c.Sessions.Path == "" {
		return errors.New("session database path is required")
	}
	switch c.DefaultLanguage {
	case "ar", "en":
	default:
		return fmt.Errorf("unsupported default language %q", c.DefaultLanguage)
	}
	return nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.HTTP.Host = valueOrDefault("SERVER_HOST", cfg.HTTP.Host)
	cfg.HTTP.AllowedOriginsCSV = valueOrDefault("SERVER_ALLOWED_ORIGINS", cfg.HTTP.AllowedOriginsCSV)

	port, err := parsePort("SERVER_PORT", cfg.HTTP.Port)
	if err != nil {
		return err
	}
	cfg.HTTP.Port = port

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"SERVER_READ_TIMEOUT", &cfg.HTTP.ReadTimeout},
		{"SERVER_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout},
		{"SERVER_IDLE_TIMEOUT", &cfg.HTTP.IdleTimeout},
		{"SERVER_SHUTDOWN_TIMEOUT", &cfg.HTTP.ShutdownTimeout},
		{"AUTH_SESSION_TTL", &cfg.Auth.SessionTTL},
		{"AUTH_CODE_TTL", &cfg.Auth.CodeTTL},
		{"AUTH_RESET_TTL", &cfg.Auth.ResetTTL},
		{"SESSION_SWEEP_INTERVAL", &cfg.Sessions.SweepInterval},
	}
	for _, d := range durations {
		if v := os.Getenv(d.key); v != "" {
			parsed, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", d.key, err)
			}
			*d.dst = parsed
		}
	}

	cfg.Graph.URI = valueOrDefault("GRAPH_URI", cfg.Graph.URI)
	cfg.Graph.Database = valueOrDefault("GRAPH_DATABASE", cfg.Graph.Database)
	cfg.Graph.Username = valueOrDefault("GRAPH_USERNAME", cfg.Graph.Username)
	cfg.Graph.Password = valueOrDefault("GRAPH_PASSWORD", cfg.Graph.Password)
	cfg.Graph.MaxConnections = parseIntWithDefault("GRAPH_MAX_CONNECTIONS", cfg.Graph.MaxConnections)

	cfg.Logging.Level = valueOrDefault("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = valueOrDefault("LOG_FORMAT", cfg.Logging.Format)
	cfg.Logging.IncludeCaller = parseBoolWithDefault("LOG_INCLUDE_CALLER", cfg.Logging.IncludeCaller)

	cfg.Auth.MaxCodeAttempt = parseIntWithDefault("AUTH_MAX_CODE_ATTEMPTS", cfg.Auth.MaxCodeAttempt)
	cfg.Auth.BcryptCost = parseIntWithDefault("AUTH_BCRYPT_COST", cfg.Auth.BcryptCost)

	cfg.Sessions.Path = valueOrDefault("SESSION_DB_PATH", cfg.Sessions.Path)
	cfg.DefaultLanguage = valueOrDefault("DEFAULT_LANGUAGE", cfg.DefaultLanguage)
	return nil
}

func valueOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBoolWithDefault(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		val, err := strconv.ParseBool(v)
		if err != nil {
			return fallback
		}
		return val
	}
	return fallback
}

func parseIntWithDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if val, err := strconv.Atoi(v); err == nil {
			return val
		}
	}
	return fallback
}

func parsePort(key string, fallback int) (int, error) {
	if v := os.Getenv(key); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
		}
		if port <= 0 || port > 65535 {
			return 0, fmt.Errorf("port %d is out of range", port)
		}
		return port, nil
	}
	return fallback, nil
}
