package server

import (
	"fmt"
	"time"

	"github.com/Pranay-Dommati/FInAi-sub001/internal/common"
)

// Config controls the HTTP listener and middleware.
type Config struct {
	Address        string
	CertDir        string
	AllowedOrigins []string
	// RateLimit is the number of requests each client IP may make per minute.
	RateLimit       int
	MaxBodyBytes    int64
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	TLS             bool
}

// DefaultConfig listens on :8080 with 60 requests per minute per client.
func DefaultConfig() Config {
	return Config{
		Address:         ":8080",
		RateLimit:       60,
		MaxBodyBytes:    1 << 20,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Address == "" {
		return fmt.Errorf("%w: server.address", common.ErrMissingConfig)
	}
	if c.RateLimit <= 0 {
		return fmt.Errorf("%w: server.rate_limit must be positive, got %d", common.ErrInvalidConfig, c.RateLimit)
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("%w: max body size must be positive", common.ErrInvalidConfig)
	}
	if c.TLS && c.CertDir == "" {
		return fmt.Errorf("%w: server.cert_dir is required when TLS is enabled", common.ErrMissingConfig)
	}
	return nil
}
