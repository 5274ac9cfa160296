package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"event_hotels/internal/adapters/auth"
	server "event_hotels/internal/adapters/http_server"
	"event_hotels/internal/adapters/observability"
	redisad "event_hotels/internal/adapters/redis"
	"event_hotels/internal/app"
	"event_hotels/internal/shared"
	mysqlrepo "event_hotels/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)
	if err := cfg.RequireJWTSecret(); err != nil {
		log.Fatal().Err(err).Msg("refusing to start")
	}

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr)

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// sessions
	sessions := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := sessions.Ping(pingCtx); err != nil {
		log.Fatal().Err(err).Msg("redis ping failed")
	}
	cancel()

	// deps
	repo := mysqlrepo.New(db)
	access := app.NewHotelAccessEvaluator(repo, repo, repo)
	tokens := auth.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer)

	// http
	srv := server.New(server.Options{
		Timeout:   cfg.RequestTimeout,
		RateRPS:   cfg.RateLimitRPS,
		RateBurst: cfg.RateLimitBurst,
	})
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Access: access, Tokens: tokens, Sessions: sessions})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
