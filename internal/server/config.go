package server

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = "FAIRPARITY"

// Config holds the HTTP service settings, read from FAIRPARITY_* variables.
type Config struct {
	Addr            string        `envconfig:"ADDR" default:":8080"`
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	ComputeTimeout  time.Duration `envconfig:"COMPUTE_TIMEOUT" default:"30s"`
	CacheTTL        time.Duration `envconfig:"CACHE_TTL" default:"5m"`
	MaxBodyBytes    int64         `envconfig:"MAX_BODY_BYTES" default:"10485760"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("load server config: %w", err)
	}
	return cfg, nil
}

// DefaultConfig returns the settings LoadConfig yields with an empty environment.
func DefaultConfig() Config {
	return Config{
		Addr:            ":8080",
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		ComputeTimeout:  30 * time.Second,
		CacheTTL:        5 * time.Minute,
		MaxBodyBytes:    10 * 1024 * 1024,
	}
}
