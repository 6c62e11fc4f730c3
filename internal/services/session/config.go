package session

import (
	"time"

	"github.com/google/uuid"
)

const (
	DefaultTxPower      int8 = -59
	DefaultMaxPeers          = 10
	DefaultWindow            = 30 * time.Second
	DefaultRestartDelay      = 500 * time.Millisecond
)

// DefaultServiceID is the service both advertisers and scanners filter on.
var DefaultServiceID = uuid.MustParse("0000feed-0000-1000-8000-00805f9b34fb")

// Config holds the fixed protocol parameters for a Service.
type Config struct {
	ServiceID uuid.UUID
	// TxPower is the calibrated RSSI at one metre written into every payload.
	TxPower  int8
	MaxPeers int
	// Window is how long a session advertises before it ends on its own.
	Window       time.Duration
	RestartDelay time.Duration
	// RefreshEvery, when positive, refreshes the digest periodically.
	RefreshEvery time.Duration
	// MaxAge, when positive, drops observations older than this before
	// each payload is encoded. Zero keeps every reading until the session ends.
	MaxAge time.Duration
}

// DefaultConfig returns the reference parameters.
func DefaultConfig() Config {
	return Config{
		ServiceID:    DefaultServiceID,
		TxPower:      DefaultTxPower,
		MaxPeers:     DefaultMaxPeers,
		Window:       DefaultWindow,
		RestartDelay: DefaultRestartDelay,
	}
}

func (c Config) withDefaults() Config {
	if c.ServiceID == uuid.Nil {
		c.ServiceID = DefaultServiceID
	}
	if c.MaxPeers < 0 {
		c.MaxPeers = 0
	}
	if c.Window <= 0 {
		c.Window = DefaultWindow
	}
	if c.RestartDelay < 0 {
		c.RestartDelay = 0
	}
	return c
}
