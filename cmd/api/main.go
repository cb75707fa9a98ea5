package main

import (
	"database/sql"
	"net/http"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	googlead "flex_reviews/internal/adapters/google"
	server "flex_reviews/internal/adapters/http_server"
	"flex_reviews/internal/adapters/observability"
	redisad "flex_reviews/internal/adapters/redis"
	"flex_reviews/internal/app"
	"flex_reviews/internal/shared"
	mysqlrepo "flex_reviews/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	dash := app.NewDashboardService(repo, cache, cfg.CacheTTL)
	moderation := app.NewModerationService(repo)

	var googleSvc *app.GoogleReviewsService
	if cfg.GoogleKey != "" {
		places, err := googlead.New(cfg.GoogleBase, cfg.GoogleKey, 5)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize Places client")
		}
		googleSvc = app.NewGoogleReviewsService(places, cache, cfg.GoogleCacheTTL)
	}

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Dash:       dash,
		Moderation: moderation,
		Google:     googleSvc,
		AccountID:  cfg.HostawayAccountID,
		APIKey:     cfg.HostawayKey,
	})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
