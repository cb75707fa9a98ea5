package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv            string
	HTTPAddr          string
	MetricsAddr       string
	MySQLDSN          string
	RedisAddr         string
	RedisDB           int
	RedisPass         string
	HostawayBase      string
	HostawayAccountID string
	HostawayKey       string
	GoogleBase        string
	GoogleKey         string
	Workers           int
	ReviewLimit       int
	CacheTTL          time.Duration
	GoogleCacheTTL    time.Duration
}

func Load() Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:            env("APP_ENV", "prod"),
		HTTPAddr:          env("HTTP_ADDR", ":8080"),
		MetricsAddr:       env("METRICS_ADDR", ":9100"),
		MySQLDSN:          env("MYSQL_DSN", "root:root@tcp(localhost:3306)/flexreviews?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:         env("REDIS_ADDR", "localhost:6379"),
		RedisDB:           atoi("REDIS_DB", 0),
		RedisPass:         env("REDIS_PASSWORD", ""),
		HostawayBase:      env("HOSTAWAY_BASE_URL", "https://api.hostaway.com/v1"),
		HostawayAccountID: env("HOSTAWAY_ACCOUNT_ID", ""),
		HostawayKey:       env("HOSTAWAY_API_KEY", ""),
		GoogleBase:        env("GOOGLE_PLACES_BASE_URL", "https://maps.googleapis.com/maps/api/place"),
		GoogleKey:         env("GOOGLE_PLACES_API_KEY", ""),
		Workers:           atoi("SYNC_WORKERS", 4),
		ReviewLimit:       atoi("SYNC_REVIEW_LIMIT", 500),
		CacheTTL:          time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
		GoogleCacheTTL:    time.Duration(atoi("GOOGLE_CACHE_TTL_SECONDS", 1800)) * time.Second,
	}
	if c.HostawayKey == "" {
		log.Warn().Msg("HOSTAWAY_API_KEY is empty; ingestor will fall back to seed data")
	}
	if c.GoogleKey == "" {
		log.Warn().Msg("GOOGLE_PLACES_API_KEY is empty; Google reviews will be mocked")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
