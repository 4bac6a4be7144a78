package config

import (
	"fmt"
	"strings"
	"time"
)

const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

// EnvVars holds every environment-driven setting. Field tags are read by
// caarlos0/env; defaults mirror a local development setup.
type EnvVars struct {
	Port           string `env:"PORT" envDefault:"8080"`
	AppName        string `env:"APP_NAME" envDefault:"CareerGap"`
	Environment    string `env:"ENV" envDefault:"DEV"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	BaseURL        string `env:"BASE_URL" envDefault:"http://localhost:8080"`
	AllowedOrigins string `env:"ALLOWED_ORIGINS" envDefault:""`

	APIOrigin      string        `env:"API_URL" envDefault:"http://127.0.0.1:8000"`
	APIPrefix      string        `env:"API_PREFIX" envDefault:"/api/"`
	DefaultTimeout time.Duration `env:"API_TIMEOUT" envDefault:"10s"`
	UploadTimeout  time.Duration `env:"API_UPLOAD_TIMEOUT" envDefault:"30s"`
	AudioTimeout   time.Duration `env:"API_AUDIO_TIMEOUT" envDefault:"60s"`

	SessionBackend    string        `env:"SESSION_BACKEND" envDefault:"memory"`
	SessionCookieName string        `env:"SESSION_COOKIE" envDefault:"careergap_sid"`
	SessionTTL        time.Duration `env:"SESSION_TTL" envDefault:"168h"`
	RedisAddr         string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword     string        `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB           int           `env:"REDIS_DB" envDefault:"0"`
	RedisKeyPrefix    string        `env:"REDIS_KEY_PREFIX" envDefault:"careergap:session:"`
	LandingPath       string        `env:"DEFAULT_LANDING_PATH" envDefault:"/dashboard"`
}

var _ EnvConfig = EnvVars{}
var _ APIConfig = EnvVars{}
var _ SessionConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	port := e.Port
	if port == "" {
		port = "8080"
	}
	if port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (e EnvVars) GetAppName() string {
	return e.AppName
}

func (e EnvVars) GetEnv() string {
	if e.Environment == "" {
		return "DEV"
	}
	return e.Environment
}

func (e EnvVars) GetLogLevel() string {
	return strings.ToLower(e.LogLevel)
}

// GetBaseURL returns the public URL of this web client (e.g., "https://app.careergap.io")
func (e EnvVars) GetBaseURL() string {
	return strings.TrimSuffix(e.BaseURL, "/")
}

func (e EnvVars) GetAPIOrigin() string {
	return strings.TrimSuffix(e.APIOrigin, "/")
}

func (e EnvVars) GetAPIPrefix() string {
	prefix := e.APIPrefix
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix
}

func (e EnvVars) GetDefaultTimeout() time.Duration {
	return e.DefaultTimeout
}

// GetUploadTimeout is the per-call timeout for résumé uploads
func (e EnvVars) GetUploadTimeout() time.Duration {
	return e.UploadTimeout
}

// GetAudioTimeout is the per-call timeout for speech assessment uploads
func (e EnvVars) GetAudioTimeout() time.Duration {
	return e.AudioTimeout
}

func (e EnvVars) GetSessionBackend() string {
	return strings.ToLower(e.SessionBackend)
}

func (e EnvVars) GetSessionCookieName() string {
	return e.SessionCookieName
}

func (e EnvVars) GetSessionTTL() time.Duration {
	return e.SessionTTL
}

func (e EnvVars) GetRedisAddr() string {
	return e.RedisAddr
}

func (e EnvVars) GetRedisPassword() string {
	return e.RedisPassword
}

func (e EnvVars) GetRedisDB() int {
	return e.RedisDB
}

func (e EnvVars) GetRedisKeyPrefix() string {
	return e.RedisKeyPrefix
}

func (e EnvVars) GetDefaultLandingPath() string {
	return e.LandingPath
}
