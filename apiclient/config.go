package apiclient

import (
	"time"

	"github.com/jrsteele09/careergap-web/internal/config"
)

const (
	DefaultTimeout = 10 * time.Second
	UploadTimeout  = 30 * time.Second
	AudioTimeout   = 60 * time.Second
)

// Config locates the backend and sets per-class request timeouts.
type Config struct {
	Origin         string // e.g. "http://127.0.0.1:8000"
	Prefix         string // e.g. "/api/"
	DefaultTimeout time.Duration
	UploadTimeout  time.Duration
	AudioTimeout   time.Duration
}

// ConfigFrom reads the backend settings from the application config
func ConfigFrom(c config.APIConfig) Config {
	return Config{
		Origin:         c.GetAPIOrigin(),
		Prefix:         c.GetAPIPrefix(),
		DefaultTimeout: c.GetDefaultTimeout(),
		UploadTimeout:  c.GetUploadTimeout(),
		AudioTimeout:   c.GetAudioTimeout(),
	}
}

func (c Config) withDefaults() Config {
	if c.Prefix == "" {
		c.Prefix = "/api/"
	}
	if c.DefaultTimeout <= 0 {
		c.DefaultTimeout = DefaultTimeout
	}
	if c.UploadTimeout <= 0 {
		c.UploadTimeout = UploadTimeout
	}
	if c.AudioTimeout <= 0 {
		c.AudioTimeout = AudioTimeout
	}
	return c
}
