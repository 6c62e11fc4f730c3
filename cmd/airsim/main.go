package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/sync/errgroup"

	"copresence/internal/radio"
)

type config struct {
	Addr     string        `env:"AIRSIM_ADDR" envDefault:":8787"`
	Tick     time.Duration `env:"AIRSIM_TICK" envDefault:"200ms"`
	PathLoss float64       `env:"AIRSIM_PATH_LOSS" envDefault:"2.7"`
}

func main() {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("parse env: %v", err)
	}
	logger := log.New(os.Stderr, "airsim: ", log.LstdFlags)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	air := radio.NewAir(cfg.PathLoss)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           logRequests(radio.NewHandler(air, logger), logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return air.Run(ctx, cfg.Tick) })
	g.Go(func() error {
		logger.Printf("listening on %s, tick %s", cfg.Addr, cfg.Tick)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal(err)
	}
}
