package config

import (
	"testing"

	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTH_TOKEN_SECRET", "dev-secret")
	t.Setenv("CORS_ORIGINS", "http://localhost:3000;https://wemakedo.app")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":6060", cfg.HTTPAddr)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, JoinPolicyApplication, cfg.JoinPolicy)
	assert.InDelta(t, 5.0, cfg.ChatRateLimit, 1e-9)
	assert.Equal(t, []string{"http://localhost:3000", "https://wemakedo.app"}, cfg.CORSOrigins)
	assert.False(t, cfg.CognitoEnabled())
	assert.Empty(t, cfg.CognitoIssuer())
}

func TestLoadRejectsUnknownJoinPolicy(t *testing.T) {
	t.Setenv("AUTH_TOKEN_SECRET", "dev-secret")
	t.Setenv("JOIN_POLICY", "lottery")

	_, err := Load()
	assert.ErrorContains(t, err, "JOIN_POLICY")
}

func TestValidate(t *testing.T) {
	base := Config{DBDriver: "sqlite", JoinPolicy: JoinPolicyDirect, AuthTokenSecret: "s"}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "bad driver", mutate: func(c *Config) { c.DBDriver = "mysql" }, wantErr: "DB_DRIVER"},
		{name: "no identity", mutate: func(c *Config) { c.AuthTokenSecret = "" }, wantErr: "AUTH_TOKEN_SECRET"},
		{name: "cognito only", mutate: func(c *Config) {
			c.AuthTokenSecret = ""
			c.CognitoRegion = "ap-northeast-2"
			c.CognitoUserPoolID = "ap-northeast-2_abc"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestCognitoIssuer(t *testing.T) {
	cfg := Config{CognitoRegion: "ap-northeast-2", CognitoUserPoolID: "ap-northeast-2_abc"}
	assert.Equal(t, "https://cognito-idp.ap-northeast-2.amazonaws.com/ap-northeast-2_abc", cfg.CognitoIssuer())
}

func TestLevel(t *testing.T) {
	assert.Equal(t, log.DEBUG, (&Config{LogLevel: "DEBUG"}).Level())
	assert.Equal(t, log.WARN, (&Config{LogLevel: "warn"}).Level())
	assert.Equal(t, log.OFF, (&Config{LogLevel: "off"}).Level())
	assert.Equal(t, log.INFO, (&Config{LogLevel: "verbose"}).Level())
}
