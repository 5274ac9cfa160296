package main

import (
	"context"
	"database/sql"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"event_hotels/internal/adapters/auth"
	"event_hotels/internal/adapters/observability"
	redisad "event_hotels/internal/adapters/redis"
	"event_hotels/internal/app"
	"event_hotels/internal/shared"
	mysqlrepo "event_hotels/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	fx, err := app.ReadFixture(cfg.SeedFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.SeedFile).Msg("read seed file failed")
	}
	log.Info().
		Str("file", cfg.SeedFile).
		Int("workers", cfg.SeedWorkers).
		Int("hotels", len(fx.Hotels)).
		Int("users", len(fx.Users)).
		Msg("seeder starting")
	// users get signed tokens
	if len(fx.Users) > 0 {
		if err := cfg.RequireJWTSecret(); err != nil {
			log.Fatal().Err(err).Msg("cannot seed users")
		}
	}

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)
	sessions := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	tokens := auth.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer)
	loader := app.NewCatalogLoader(repo, repo, sessions, tokens)

	if err := loader.LoadHotels(ctx, fx.Hotels, cfg.SeedWorkers); err != nil {
		log.Error().Err(err).Msg("some hotels failed to load")
	}

	for _, u := range fx.Users {
		token, err := loader.LoadUser(ctx, u, cfg.SessionTTL)
		if err != nil {
			log.Warn().Str("email", u.Email).Err(err).Msg("load user failed")
			continue
		}
		log.Info().Str("email", u.Email).Str("token", token).Msg("user loaded")
	}

	log.Info().Msg("seeding completed")
}
