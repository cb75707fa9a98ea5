package main

import (
	"context"
	"database/sql"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	googlead "flex_reviews/internal/adapters/google"
	"flex_reviews/internal/adapters/hostaway"
	"flex_reviews/internal/adapters/observability"
	redisad "flex_reviews/internal/adapters/redis"
	"flex_reviews/internal/app"
	"flex_reviews/internal/shared"
	mysqlrepo "flex_reviews/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Str("base", cfg.HostawayBase).
		Int("workers", cfg.Workers).
		Int("limit", cfg.ReviewLimit).
		Msg("ingestor starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// 1) Primary source. The sandbox account ships no review data, so an
	// empty (or unconfigured) feed falls back to the bundled seed set.
	synced := 0
	if cfg.HostawayKey != "" {
		client, err := hostaway.New(cfg.HostawayBase, cfg.HostawayKey, 5)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize Hostaway client")
		}
		syncer := app.NewSyncService(client, repo, cache)
		synced, err = syncer.SyncHostaway(ctx, cfg.HostawayAccountID, cfg.ReviewLimit)
		if err != nil {
			log.Fatal().Err(err).Msg("hostaway sync failed")
		}
		log.Info().Int("reviews", synced).Msg("hostaway sync ok")
	}
	if synced == 0 {
		syncer := app.NewSyncService(nil, repo, cache)
		n, err := syncer.SeedReviews(ctx, hostaway.SeedReviews())
		if err != nil {
			log.Fatal().Err(err).Msg("seed reviews failed")
		}
		log.Info().Int("reviews", n).Msg("seeded fixture reviews")
	}

	// 2) Google reviews: fetch per mapped listing concurrently and import
	// them unpublished for moderation.
	if cfg.GoogleKey == "" {
		log.Info().Msg("no Places key; skipping google sync")
		return
	}
	places, err := googlead.New(cfg.GoogleBase, cfg.GoogleKey, 5)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize Places client")
	}
	googleSvc := app.NewGoogleReviewsService(places, cache, cfg.GoogleCacheTTL)
	moderation := app.NewModerationService(repo)

	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup

	for _, id := range googlead.KnownListings() {
		id := id
		placeID := googlead.ResolvePlaceID(&id, "")
		if placeID == "" {
			continue
		}

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(listingID int64, placeID string) {
			defer wg.Done()
			defer sem.Release(1)

			payload, err := googleSvc.ReviewsForPlace(ctx, placeID, &listingID)
			if err != nil {
				log.Warn().Int64("listing_id", listingID).Err(err).Msg("google fetch failed")
				_ = repo.LogMiss(ctx, listingID, 502, "google reviews")
				return
			}
			if len(payload.Reviews) == 0 {
				log.Info().Int64("listing_id", listingID).Msg("no google reviews")
				return
			}
			if _, err := moderation.ImportGoogleReviews(ctx, listingID, placeID, payload.Reviews); err != nil {
				log.Warn().Int64("listing_id", listingID).Err(err).Msg("google import failed")
				return
			}
			log.Info().Int64("listing_id", listingID).Int("reviews", len(payload.Reviews)).Msg("google import ok")
		}(id, placeID)
	}

	wg.Wait()
	log.Info().Msg("ingestion completed")
}
