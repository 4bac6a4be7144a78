package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

type Config interface {
	EnvConfig
	CorsConfig
	APIConfig
	SessionConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetBaseURL() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

// APIConfig describes how the CareerGap backend is reached.
type APIConfig interface {
	GetAPIOrigin() string
	GetAPIPrefix() string
	GetDefaultTimeout() time.Duration
	GetUploadTimeout() time.Duration
	GetAudioTimeout() time.Duration
}

// SessionConfig describes where per-browser token state is kept.
type SessionConfig interface {
	GetSessionBackend() string
	GetSessionCookieName() string
	GetSessionTTL() time.Duration
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetRedisKeyPrefix() string
	GetDefaultLandingPath() string
}

type mainConfig struct {
	EnvVars
	Cors
}

// New reads the process environment into a Config.
func New() (Config, error) {
	var vars EnvVars
	if err := env.Parse(&vars); err != nil {
		return nil, fmt.Errorf("[config New] parse environment: %w", err)
	}
	return mainConfig{EnvVars: vars, Cors: Cors{origins: parseOrigins(vars.AllowedOrigins)}}, nil
}
