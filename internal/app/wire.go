package app

import (
	"fmt"
	"log"
	"os"
	"sync"

	"copresence/internal/domain"
	"copresence/internal/radio"
	"copresence/internal/services/anchor"
	identitysvc "copresence/internal/services/identity"
	sessionsvc "copresence/internal/services/session"
	"copresence/internal/store"
	"copresence/internal/store/sqlite"
)

// Wire bundles the stores, radio and services for the CLI.
type Wire struct {
	Config   Config
	Identity domain.IdentityService
	Log      *log.Logger

	ids domain.IdentityStore

	mu     sync.Mutex
	radio  domain.RadioAdapter
	ledger *sqlite.Store
}

// NewWire resolves cfg and constructs the dependency graph from it.
func NewWire(cfg Config, logger *log.Logger) (*Wire, error) {
	cfg, err := cfg.Resolve()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}
	if err := os.MkdirAll(cfg.Home, 0o700); err != nil {
		return nil, err
	}

	ids := store.NewIdentityFileStore(cfg.Home, cfg.Passphrase)
	return &Wire{
		Config:   cfg,
		Identity: identitysvc.New(ids),
		Log:      logger,
		ids:      ids,
	}, nil
}

// Radio returns the configured radio adapter, opening it on first use.
func (w *Wire) Radio() (domain.RadioAdapter, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.radio != nil {
		return w.radio, nil
	}
	switch w.Config.Radio {
	case RadioBLE:
		g, err := radio.NewGatt(w.Log)
		if err != nil {
			return nil, err
		}
		w.radio = g
	default:
		at, err := radio.ParsePoint(w.Config.Position)
		if err != nil {
			return nil, err
		}
		r := radio.NewRemote(w.Config.AirURL, w.Config.Address, at)
		r.Log = w.Log
		w.radio = r
	}
	return w.radio, nil
}

// Ledger returns the attendance store, opening it on first use.
func (w *Wire) Ledger() (domain.AttendanceStore, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ledger == nil {
		s, err := sqlite.Open(w.Config.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open attendance ledger: %w", err)
		}
		w.ledger = s
	}
	return w.ledger, nil
}

// Session builds a session controller reporting to sink.
func (w *Wire) Session(sink domain.StatusSink) (*sessionsvc.Service, error) {
	r, err := w.Radio()
	if err != nil {
		return nil, err
	}
	return sessionsvc.New(w.Config.Session(), r, w.ids, sink, sessionsvc.WithLogger(w.Log)), nil
}

// Anchor builds the anchor scanner, saving into the ledger.
func (w *Wire) Anchor() (*anchor.Service, error) {
	r, err := w.Radio()
	if err != nil {
		return nil, err
	}
	l, err := w.Ledger()
	if err != nil {
		return nil, err
	}
	return anchor.New(w.Config.Anchor(), r, l, anchor.WithLogger(w.Log)), nil
}

// Close releases the ledger. Sessions and scans stop their own radio use.
func (w *Wire) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ledger == nil {
		return nil
	}
	err := w.ledger.Close()
	w.ledger = nil
	return err
}
