package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Strategy names accepted by AUTH_STRATEGY.
const (
	StrategyPolicy = "policy"
	StrategyToken  = "token"
	StrategyMock   = "mock"
)

// Config is the single configuration structure for every entrypoint. It is built
// once by FromEnv and passed down explicitly.
type Config struct {
	Server    Server
	Auth      Auth
	Database  Database
	Secrets   Secrets
	Token     Token
	Directory Directory
	Redis     RedisConfig
	Audit     Audit
	LogLevel  string
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Auth selects the decision strategy and its per-deployment knobs.
type Auth struct {
	Strategy string
	// ValidateCPF overrides the strategy preset when non-nil.
	ValidateCPF    *bool
	RejectRepeated bool
	// DefaultResource is echoed in policies when the request carries no method ARN.
	DefaultResource string
}

// Database describes where customer existence is resolved.
type Database struct {
	Driver         string
	Host           string
	Port           int
	Name           string
	Table          string
	Column         string
	SSLMode        string
	ConnectTimeout time.Duration
}

// Secrets selects the credential backend.
type Secrets struct {
	Backend  string
	SecretID string
	Region   string
}

// Token configures issued access tokens.
type Token struct {
	SigningKey string
	Issuer     string
	TTL        time.Duration
}

// Directory configures the downstream customer lookup service.
type Directory struct {
	UserPoolID string
	Attribute  string
	CacheTTL   time.Duration
}

// RedisConfig configures the optional directory cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Audit configures decision audit publishing.
type Audit struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Config from environment variables so main stays lean.
// It never fails: malformed numbers fall back to defaults and missing required
// values are reported by Validate.
func FromEnv() Config {
	cfg := Config{
		Server: Server{
			Addr:            envString("CPFGATE_ADDR", ":8080"),
			ReadTimeout:     envDuration("HTTP_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    envDuration("HTTP_WRITE_TIMEOUT", 15*time.Second),
			ShutdownTimeout: envDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Auth: Auth{
			Strategy:        strings.ToLower(envString("AUTH_STRATEGY", StrategyPolicy)),
			ValidateCPF:     envOptionalBool("AUTH_VALIDATE_CPF"),
			RejectRepeated:  envBool("CPF_REJECT_REPEATED", false),
			DefaultResource: envString("AUTH_DEFAULT_RESOURCE", "*"),
		},
		Database: Database{
			Driver:         strings.ToLower(envString("DB_DRIVER", "pgx")),
			Host:           os.Getenv("DB_HOST"),
			Port:           envInt("DB_PORT", 5432),
			Name:           os.Getenv("DB_NAME"),
			Table:          os.Getenv("DB_TABLE"),
			Column:         os.Getenv("DB_CPF_COLUMN"),
			SSLMode:        envString("DB_SSLMODE", "require"),
			ConnectTimeout: envDuration("DB_CONNECT_TIMEOUT", 5*time.Second),
		},
		Secrets: Secrets{
			Backend:  strings.ToLower(envString("SECRET_BACKEND", "aws")),
			SecretID: os.Getenv("DB_SECRET_NAME"),
			Region:   os.Getenv("AWS_REGION"),
		},
		Token: Token{
			SigningKey: os.Getenv("JWT_SECRET"),
			Issuer:     envString("JWT_ISSUER", "cpfgate"),
			TTL:        envDuration("TOKEN_TTL", time.Hour),
		},
		Directory: Directory{
			UserPoolID: os.Getenv("USER_POOL_ID"),
			Attribute:  envString("DIRECTORY_CPF_ATTRIBUTE", "custom:cpf"),
			CacheTTL:   envDuration("DIRECTORY_CACHE_TTL", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 1),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 2*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", time.Second),
		},
		Audit: Audit{
			Brokers: splitList(os.Getenv("AUDIT_BROKERS")),
			Topic:   envString("AUDIT_TOPIC", "cpfgate.decisions"),
		},
		LogLevel: envString("LOG_LEVEL", "info"),
	}
	return cfg
}

// Validate reports every required setting missing for the selected strategy.
// Callers log the result and keep running; requests then resolve to a
// configuration-error decision instead of crashing the process.
func (c Config) Validate() error {
	var errs []error
	missing := func(name string) {
		errs = append(errs, fmt.Errorf("%s is required for strategy %q", name, c.Auth.Strategy))
	}

	switch c.Auth.Strategy {
	case StrategyPolicy, StrategyToken:
		if c.Database.Host == "" {
			missing("DB_HOST")
		}
		if c.Database.Name == "" {
			missing("DB_NAME")
		}
		if c.Database.Table == "" {
			missing("DB_TABLE")
		}
		if c.Database.Column == "" {
			missing("DB_CPF_COLUMN")
		}
		if c.Secrets.Backend == "aws" && c.Secrets.SecretID == "" {
			missing("DB_SECRET_NAME")
		}
		if c.Secrets.Backend != "aws" && c.Secrets.Backend != "env" {
			errs = append(errs, fmt.Errorf("SECRET_BACKEND must be aws or env, got %q", c.Secrets.Backend))
		}
		if c.Database.Driver != "pgx" && c.Database.Driver != "postgres" {
			errs = append(errs, fmt.Errorf("DB_DRIVER must be pgx or postgres, got %q", c.Database.Driver))
		}
		if c.Auth.Strategy == StrategyToken && c.Token.SigningKey == "" {
			missing("JWT_SECRET")
		}
	case StrategyMock:
	default:
		errs = append(errs, fmt.Errorf("AUTH_STRATEGY must be one of policy, token, mock, got %q", c.Auth.Strategy))
	}

	if c.Token.TTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	return errors.Join(errs...)
}

func envString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

func envBool(key string, fallback bool) bool {
	if b := envOptionalBool(key); b != nil {
		return *b
	}
	return fallback
}

func envOptionalBool(key string) *bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return nil
	}
	return &v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
