package api

import (
	"os"
	"time"

	"github.com/marmos91/ecfs/internal/logger"
	"github.com/marmos91/ecfs/pkg/controlplane/api/auth"
)

// EnvControlPlaneSecret overrides controlplane.jwt.secret. Deployments keep
// the signing key out of the config file by setting it instead.
const EnvControlPlaneSecret = "ECFS_CONTROLPLANE_SECRET"

// APIConfig is the controlplane section of the ecfs server configuration.
//
// It serves the erasure coding policy endpoints that ecfsctl calls, the
// namespace endpoints behind `ecfs namespace`, and the health probes read by
// `ecfs status`.
type APIConfig struct {
	// Port the control plane listens on. ecfsctl reaches it through
	// ecfs://host:<port> paths and the client server_url.
	// Default: 8080
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`

	// ReadTimeout bounds reading a request. Policy requests are a few
	// hundred bytes, so the default is generous.
	// Default: 10s
	ReadTimeout time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`

	// WriteTimeout bounds writing a response.
	// Default: 10s
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`

	// IdleTimeout closes idle keep-alive connections.
	// Default: 60s
	IdleTimeout time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`

	// RequestTimeout cancels the context of a request whose namespace store
	// call has not returned. Slow PostgreSQL stores may need more.
	// Default: 30s
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`

	// JWT signs the bearer tokens sent by ecfsctl.
	JWT JWTConfig `mapstructure:"jwt" yaml:"jwt"`

	// Users may log in with `ecfs login` to obtain tokens. Without users,
	// tokens can only be minted offline with `ecfs token`.
	Users []auth.User `mapstructure:"users" yaml:"users,omitempty" validate:"dive"`
}

// JWTConfig holds the token signing settings.
type JWTConfig struct {
	// Secret is the HS256 signing key, at least 32 characters.
	// `ecfs config init` generates one. EnvControlPlaneSecret takes precedence.
	Secret string `mapstructure:"secret" yaml:"secret"`

	// AccessTokenDuration is the lifetime of tokens issued by login and
	// refresh, and of `ecfs token` tokens minted without --ttl.
	// Default: 15m
	AccessTokenDuration time.Duration `mapstructure:"access_token_duration" yaml:"access_token_duration"`

	// RefreshTokenDuration is how long `ecfs login --refresh` keeps working.
	// Default: 168h
	RefreshTokenDuration time.Duration `mapstructure:"refresh_token_duration" yaml:"refresh_token_duration"`
}

// ApplyDefaults fills in unset values.
func (c *APIConfig) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 10 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60 * time.Second
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 30 * time.Second
	}
	if c.JWT.AccessTokenDuration == 0 {
		c.JWT.AccessTokenDuration = 15 * time.Minute
	}
	if c.JWT.RefreshTokenDuration == 0 {
		c.JWT.RefreshTokenDuration = 7 * 24 * time.Hour
	}
}

// GetJWTSecret returns the signing secret, preferring EnvControlPlaneSecret
// over the config file. It is empty when neither is set.
func (c *APIConfig) GetJWTSecret() string {
	envSecret := os.Getenv(EnvControlPlaneSecret)
	if envSecret == "" {
		return c.JWT.Secret
	}
	if c.JWT.Secret != "" && c.JWT.Secret != envSecret {
		logger.Warn("JWT secret from environment variable overrides config file value",
			"env_var", EnvControlPlaneSecret)
	}
	return envSecret
}

// HasJWTSecret reports whether tokens can be signed.
func (c *APIConfig) HasJWTSecret() bool {
	return c.GetJWTSecret() != ""
}

// NewJWTService builds the token service shared by the server and
// `ecfs token`, so that offline tokens validate against the running server.
func (c *APIConfig) NewJWTService() (*auth.JWTService, error) {
	return auth.NewJWTService(auth.JWTConfig{
		Secret:               c.GetJWTSecret(),
		Issuer:               "ecfs",
		AccessTokenDuration:  c.JWT.AccessTokenDuration,
		RefreshTokenDuration: c.JWT.RefreshTokenDuration,
	})
}
