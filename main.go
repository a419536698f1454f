// apps/go-server/main.go
//
// Entry point for the Memory game server.
// Loads .env + config, prepares themes and the SQLite database, then serves HTTP.

package main

import (
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/memory/apps/go-server/internal/config"
	"github.com/robalobadob/memory/apps/go-server/internal/database"
	"github.com/robalobadob/memory/apps/go-server/internal/httpserver"
	"github.com/robalobadob/memory/apps/go-server/internal/store"
	"github.com/robalobadob/memory/apps/go-server/internal/symbols"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if lvl, err := zerolog.ParseLevel(cfg.Server.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	if err := symbols.Init(cfg.Game.SymbolsFile); err != nil {
		log.Fatal().Err(err).Msg("failed to load symbol themes")
	}
	if _, err := symbols.Default().Pool(cfg.Game.Theme); err != nil {
		log.Fatal().Err(err).Str("theme", cfg.Game.Theme).Msg("default theme missing")
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Database.Path).Msg("open database")
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	srv := httpserver.New(cfg, store.NewMemoryStore(), db, symbols.Default())
	port := strconv.Itoa(cfg.Server.Port)
	log.Info().Str("port", port).Str("origin", cfg.Server.ClientOrigin).Msg("starting go-server")
	if err := srv.Start(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
