// Package config reads server settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// TCPAddr is the raw line-protocol listener for the native client.
	TCPAddr string `env:"BOSSRUSH_TCP_ADDR" envDefault:":6858"`
	// HTTPAddr serves the WebSocket endpoint and health checks.
	HTTPAddr string `env:"BOSSRUSH_HTTP_ADDR" envDefault:":8080"`

	// Version is announced to clients during the handshake.
	Version string `env:"BOSSRUSH_VERSION" envDefault:"0.2.0-MULTIPLAYER"`

	// Silence tolerated before the first liveness probe.
	KeepAliveInitial time.Duration `env:"BOSSRUSH_KEEPALIVE_INITIAL" envDefault:"5s"`
	// Interval between follow-up probes.
	KeepAliveRetry time.Duration `env:"BOSSRUSH_KEEPALIVE_RETRY" envDefault:"2500ms"`
	// Unanswered follow-ups before the connection is declared dead.
	KeepAliveRetries int `env:"BOSSRUSH_KEEPALIVE_RETRIES" envDefault:"3"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
