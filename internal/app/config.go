package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"

	"copresence/internal/radio"
	"copresence/internal/services/anchor"
	"copresence/internal/services/session"
)

// Radio kinds accepted in Config.Radio.
const (
	RadioAir = "air"
	RadioBLE = "ble"
)

// Config holds runtime wiring options for building the app. Fields are
// read from the environment by LoadConfig; the CLI overrides them with
// flags.
type Config struct {
	Home       string `env:"COPRESENCE_HOME"`       // state directory, default $HOME/.copresence
	Passphrase string `env:"COPRESENCE_PASSPHRASE"` // seals the identity file when set

	Radio    string `env:"COPRESENCE_RADIO" envDefault:"air"`
	AirURL   string `env:"COPRESENCE_AIR_URL" envDefault:"http://127.0.0.1:8787"`
	Address  string `env:"COPRESENCE_ADDRESS"` // address on the air, default the hostname
	Position string `env:"COPRESENCE_POSITION"`

	ServiceID    string        `env:"COPRESENCE_SERVICE_UUID" envDefault:"0000feed-0000-1000-8000-00805f9b34fb"`
	TxPower      int8          `env:"COPRESENCE_TX_POWER" envDefault:"-59"`
	MaxPeers     int           `env:"COPRESENCE_MAX_PEERS" envDefault:"10"`
	Window       time.Duration `env:"COPRESENCE_WINDOW" envDefault:"30s"`
	RestartDelay time.Duration `env:"COPRESENCE_RESTART_DELAY" envDefault:"500ms"`
	RefreshEvery time.Duration `env:"COPRESENCE_REFRESH_EVERY"`
	MaxAge       time.Duration `env:"COPRESENCE_MAX_AGE"`

	DBPath   string  `env:"COPRESENCE_DB"` // default <Home>/attendance.db
	PathLoss float64 `env:"COPRESENCE_PATH_LOSS" envDefault:"2.7"`
}

// LoadConfig reads Config from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Resolve fills in the defaults that depend on the host and validates
// the radio settings.
func (c Config) Resolve() (Config, error) {
	if c.Home == "" {
		dir, err := os.UserHomeDir()
		if err != nil {
			return Config{}, err
		}
		c.Home = filepath.Join(dir, ".copresence")
	}
	if c.DBPath == "" {
		c.DBPath = filepath.Join(c.Home, "attendance.db")
	}
	if c.Address == "" {
		host, err := os.Hostname()
		if err != nil {
			return Config{}, err
		}
		c.Address = host
	}
	c.Radio = strings.ToLower(strings.TrimSpace(c.Radio))
	switch c.Radio {
	case RadioAir, RadioBLE:
	default:
		return Config{}, fmt.Errorf("unknown radio %q (want %s or %s)", c.Radio, RadioAir, RadioBLE)
	}
	if _, err := c.service(); err != nil {
		return Config{}, err
	}
	if _, err := radio.ParsePoint(c.Position); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) service() (uuid.UUID, error) {
	id, err := uuid.Parse(c.ServiceID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("service uuid %q: %w", c.ServiceID, err)
	}
	return id, nil
}

// Session returns the session controller settings.
func (c Config) Session() session.Config {
	id, _ := c.service()
	return session.Config{
		ServiceID:    id,
		TxPower:      c.TxPower,
		MaxPeers:     c.MaxPeers,
		Window:       c.Window,
		RestartDelay: c.RestartDelay,
		RefreshEvery: c.RefreshEvery,
		MaxAge:       c.MaxAge,
	}
}

// Anchor returns the anchor scanner settings.
func (c Config) Anchor() anchor.Config {
	id, _ := c.service()
	return anchor.Config{ServiceID: id, PathLoss: c.PathLoss}
}
