package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/text/language"

	"github.com/jask/warehousedash/internal/api"
	"github.com/jask/warehousedash/internal/config"
	"github.com/jask/warehousedash/internal/database"
	"github.com/jask/warehousedash/internal/database/repository"
	"github.com/jask/warehousedash/internal/logging"
	"github.com/jask/warehousedash/internal/session"
	"github.com/jask/warehousedash/internal/tui"
)

// journalRetention bounds the local mutation journal.
const journalRetention = 30 * 24 * time.Hour

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	// first run: write the defaults so they can be edited
	if _, err := os.Stat(config.Path()); os.IsNotExist(err) {
		if err := config.Save(cfg); err != nil {
			log.Printf("warn: could not write default config: %v", err)
		}
	}

	logger, closer, err := logging.New(logging.Config{Env: cfg.Log.Env, Level: cfg.Log.Level, Path: cfg.Log.Path})
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer closer.Close()

	sess, err := session.FromToken(cfg.ResolveToken())
	if err != nil {
		log.Fatalf("session: %v (set %s to a bearer token)", err, cfg.API.TokenEnv)
	}
	if sess.Expired(time.Now()) {
		log.Fatalf("session: token expired at %s", sess.ExpiresAt.Format(time.RFC3339))
	}

	db, err := database.OpenAndMigrate(cfg.Database.Path)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := database.SeedDefaults(ctx, db); err != nil {
		log.Fatalf("seed defaults: %v", err)
	}

	journal := repository.NewJournalRepo(db)
	if n, err := journal.Prune(ctx, time.Now().Add(-journalRetention)); err != nil {
		logger.Warn().Err(err).Msg("prune journal")
	} else if n > 0 {
		logger.Info().Int64("removed", n).Msg("pruned journal")
	}

	locale, err := language.Parse(cfg.UI.Locale)
	if err != nil {
		logger.Warn().Err(err).Str("locale", cfg.UI.Locale).Msg("unknown locale, using en")
		locale = language.English
	}

	client := api.NewClient(api.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
		Logger:  logger,
	})

	logger.Info().Str("user", sess.Email).Str("role", sess.Role.String()).Str("api", cfg.API.BaseURL).Msg("starting")
	p := tea.NewProgram(tui.New(ctx, sess, client,
		tui.Repos{Prefs: repository.NewViewPrefRepo(db), Journal: journal},
		tui.Options{
			PageSize:           cfg.UI.PageSize,
			Locale:             locale,
			PasswordCloseDelay: cfg.UI.PasswordCloseDelay,
			Logger:             logger,
		},
	), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("error: %v\n", err)
	}
}
