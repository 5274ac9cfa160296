package shared

import (
	"errors"
	"os"
	"strconv"
	"time"
)

var ErrNoJWTSecret = errors.New("JWT_SECRET is required")

type Config struct {
	AppEnv         string
	HTTPAddr       string
	MetricsAddr    string
	MySQLDSN       string
	RedisAddr      string
	RedisDB        int
	RedisPass      string
	JWTSecret      string
	JWTIssuer      string
	SessionTTL     time.Duration
	RequestTimeout time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
	SeedFile       string
	SeedWorkers    int
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	atof := func(k string, def float64) float64 {
		if v := os.Getenv(k); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f
			}
		}
		return def
	}
	c := Config{
		AppEnv:         env("APP_ENV", "prod"),
		HTTPAddr:       env("HTTP_ADDR", ":8080"),
		MetricsAddr:    env("METRICS_ADDR", ""),
		MySQLDSN:       env("MYSQL_DSN", "root:root@tcp(localhost:3306)/hotels?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:      env("REDIS_ADDR", "localhost:6379"),
		RedisPass:      env("REDIS_PASSWORD", ""),
		RedisDB:        atoi("REDIS_DB", 0),
		JWTSecret:      env("JWT_SECRET", ""),
		JWTIssuer:      env("JWT_ISSUER", "event-hotels"),
		SessionTTL:     time.Duration(atoi("SESSION_TTL_SECONDS", 86400)) * time.Second,
		RequestTimeout: time.Duration(atoi("REQUEST_TIMEOUT_SECONDS", 15)) * time.Second,
		RateLimitRPS:   atof("RATE_LIMIT_RPS", 20),
		RateLimitBurst: atoi("RATE_LIMIT_BURST", 40),
		SeedFile:       env("SEED_FILE", "seed/hotels.json"),
		SeedWorkers:    atoi("SEED_WORKERS", 4),
	}
	return c
}

// RequireJWTSecret fails when tokens would be signed with an empty HMAC key.
func (c Config) RequireJWTSecret() error {
	if c.JWTSecret == "" {
		return ErrNoJWTSecret
	}
	return nil
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
