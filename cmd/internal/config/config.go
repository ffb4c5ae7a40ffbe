package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
)

type JoinPolicy string

const (
	// JoinPolicyApplication lets the host join directly and makes guests
	// apply for approval.
	JoinPolicyApplication JoinPolicy = "application"
	// JoinPolicyDirect lets every caller join immediately while there is room.
	JoinPolicyDirect JoinPolicy = "direct"
)

type Config struct {
	HTTPAddr string `env:"HTTP_ADDR,default=:6060"`
	LogLevel string `env:"LOG_LEVEL,default=info"`

	DBDriver string `env:"DB_DRIVER,default=sqlite"`
	DBDSN    string `env:"DB_DSN,default=file:./database.db?_foreign_keys=on"`

	JoinPolicy JoinPolicy `env:"JOIN_POLICY,default=application"`

	// Development only: verify HS256 tokens instead of Cognito JWKS.
	AuthTokenSecret string `env:"AUTH_TOKEN_SECRET"`

	CognitoRegion       string `env:"COGNITO_REGION"`
	CognitoUserPoolID   string `env:"COGNITO_USER_POOL_ID"`
	CognitoClientID     string `env:"COGNITO_CLIENT_ID"`
	CognitoClientSecret string `env:"COGNITO_CLIENT_SECRET"`
	CognitoDomain       string `env:"COGNITO_DOMAIN"`
	CognitoRedirectURL  string `env:"COGNITO_REDIRECT_URL"`

	RedisURL string `env:"REDIS_URL"`

	CORSOrigins []string `env:"CORS_ORIGINS,default=http://localhost:3000"`

	// Chat and comment posts per second, per client IP.
	ChatRateLimit float64 `env:"CHAT_RATE_LIMIT,default=5"`
}

// Load reads an optional .env file and decodes the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.JoinPolicy {
	case JoinPolicyApplication, JoinPolicyDirect:
	default:
		return fmt.Errorf("JOIN_POLICY must be %q or %q, got %q", JoinPolicyApplication, JoinPolicyDirect, c.JoinPolicy)
	}

	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("DB_DRIVER must be sqlite or postgres, got %q", c.DBDriver)
	}

	if c.AuthTokenSecret == "" && !c.CognitoEnabled() {
		return errors.New("either AUTH_TOKEN_SECRET or COGNITO_REGION and COGNITO_USER_POOL_ID must be set")
	}
	return nil
}

func (c *Config) CognitoEnabled() bool {
	return c.CognitoRegion != "" && c.CognitoUserPoolID != ""
}

// CognitoIssuer is the `iss` claim of tokens minted by the user pool.
func (c *Config) CognitoIssuer() string {
	if !c.CognitoEnabled() {
		return ""
	}
	return fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", c.CognitoRegion, c.CognitoUserPoolID)
}

func (c *Config) Level() log.Lvl {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return log.DEBUG
	case "warn":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	}
	return log.INFO
}
