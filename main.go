package main

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kanjiguesser/go-server/internal/corpus"
	"github.com/kanjiguesser/go-server/internal/httpserver"
	"github.com/kanjiguesser/go-server/internal/lobby"
)

func main() {
	_ = godotenv.Load()
	cfg := &Config{}
	cobra.CheckErr(newCmd(cfg).Execute())
}

func serve(ctx context.Context, cfg *Config) error {
	if lvl, err := zerolog.ParseLevel(cfg.logLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	// Corpus is loaded once here and shared immutably by every lobby.
	corp, err := corpus.Load(cfg.wordsFile, cfg.kanjiFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load corpus")
	}
	words, kanji := corp.Stats()
	log.Info().Int("words", words).Int("kanji", kanji).Msg("corpus loaded")

	db, err := httpserver.OpenDB(cfg.dbPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()
	if err := httpserver.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	reg := lobby.NewRegistry(corp.Kanji(), cfg.lobbyTTL)
	go reg.Janitor(ctx, cfg.sweepInterval)

	srv := httpserver.New(reg, corp, db, httpserver.Options{
		ClientOrigin:  cfg.clientOrigin,
		JWTSecret:     cfg.jwtSecret,
		CookieName:    cfg.cookieName,
		SecureCookies: cfg.secureCookies,
	})

	addr := fmt.Sprintf("%s:%d", cfg.bind, cfg.port)
	log.Info().Str("addr", addr).Msg("starting kanji-guesser server")
	return srv.Start(addr)
}
