package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jask/warehousedash/internal/config"
	"github.com/jask/warehousedash/internal/devserver"
	"github.com/jask/warehousedash/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	// the dev server has no TUI, so it logs to stderr
	logger := logging.NewWithWriter(logging.Config{Env: cfg.Log.Env, Level: cfg.Log.Level}, os.Stderr)

	store := devserver.NewStore(0)
	if err := devserver.Seed(store); err != nil {
		log.Fatalf("seed: %v", err)
	}
	srv := devserver.New(devserver.Config{JWTSecret: cfg.DevServer.JWTSecret, Logger: logger}, store)

	fmt.Printf("Seeded accounts (export %s=<token> before starting warehousedash):\n\n", cfg.API.TokenEnv)
	for _, u := range devserver.SeedUsers {
		tok, err := srv.TokenFor(u.Email)
		if err != nil {
			log.Fatalf("token for %s: %v", u.Email, err)
		}
		fmt.Printf("%-8s %-24s password %-14s\n%s\n\n", u.Role, u.Email, u.Password, tok)
	}

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		logger.Info().Msg("shutting down")
		if err := srv.Shutdown(); err != nil {
			logger.Error().Err(err).Msg("shutdown")
		}
	}()

	if err := srv.Listen(cfg.DevServer.Addr); err != nil {
		log.Fatalf("listen: %v", err)
	}
}
