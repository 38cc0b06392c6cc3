package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	DefaultSettleDelay = 200 * time.Millisecond
	DefaultEnterDelay  = 16 * time.Millisecond
)

// Config is read from the environment at startup. CLI flags override Dir, Actor and Format.
type Config struct {
	Dir    string `env:"TASKLANE_DIR"`
	Actor  string `env:"TASKLANE_ACTOR"`
	Format string `env:"TASKLANE_FORMAT" envDefault:"json"`

	// SettleDelay is how long a closing overlay plays its exit transition
	// before close/navigation/refresh effects fire.
	SettleDelay time.Duration `env:"TASKLANE_SETTLE_DELAY" envDefault:"200ms"`
	// EnterDelay is the frame between mounting an overlay and showing it.
	EnterDelay time.Duration `env:"TASKLANE_ENTER_DELAY" envDefault:"16ms"`

	LogPath string `env:"TASKLANE_LOG"`
	Trace   bool   `env:"TASKLANE_TRACE"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	c.Dir = strings.TrimSpace(c.Dir)
	c.Actor = strings.TrimSpace(c.Actor)
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	if c.Format == "" {
		c.Format = "json"
	}
	if c.SettleDelay <= 0 {
		c.SettleDelay = DefaultSettleDelay
	}
	if c.EnterDelay <= 0 {
		c.EnterDelay = DefaultEnterDelay
	}
}
