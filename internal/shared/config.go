package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	LogLevel    string
	HTTPAddr    string
	MetricsAddr string
	Storage     string // mysql | memory
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	CacheTTL    time.Duration

	JWTSecret string
	JWTIssuer string
	// Location is the timezone used for date-only input and the stats day.
	Location *time.Location

	PaymentDelay   time.Duration
	SettleInterval time.Duration
	SettleBatch    int
	SettleWorkers  int
	SettleRPS      int
	SettleAttempts int
	SettleLease    time.Duration
	// InprocWorker runs settlement inside the API process.
	InprocWorker bool
	// Gateway settings; an empty URL keeps the simulated gateway.
	GatewayURL string
	GatewayKey string
	GatewayRPS int

	ReconcileSchedule string
	UnpaidAfter       time.Duration

	OTLPEndpoint string
}

// Load reads the environment, after an optional .env file.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg(".env not loaded")
	}
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("not an integer, using default")
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		LogLevel:    env("LOG_LEVEL", "info"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ""),
		Storage:     env("STORAGE", "mysql"),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/hotel?parseTime=true&charset=utf8mb4&loc=UTC"),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisPass:   env("REDIS_PASSWORD", ""),
		RedisDB:     atoi("REDIS_DB", 0),
		CacheTTL:    time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,

		JWTSecret: env("AUTH_JWT_SECRET", ""),
		JWTIssuer: env("AUTH_ISSUER", ""),
		Location:  location(env("APP_TIMEZONE", "UTC")),

		PaymentDelay:   time.Duration(atoi("PAYMENT_DELAY_MS", 2000)) * time.Millisecond,
		SettleInterval: time.Duration(atoi("SETTLE_INTERVAL_MS", 500)) * time.Millisecond,
		SettleBatch:    atoi("SETTLE_BATCH", 50),
		SettleWorkers:  atoi("SETTLE_WORKERS", 4),
		SettleRPS:      atoi("SETTLE_RPS", 20),
		SettleAttempts: atoi("SETTLE_MAX_ATTEMPTS", 5),
		SettleLease:    time.Duration(atoi("SETTLE_LEASE_SECONDS", 120)) * time.Second,
		InprocWorker:   env("INPROC_WORKER", "false") == "true",
		GatewayURL:     env("PAYMENT_GATEWAY_URL", ""),
		GatewayKey:     env("PAYMENT_GATEWAY_KEY", ""),
		GatewayRPS:     atoi("PAYMENT_GATEWAY_RPS", 5),

		ReconcileSchedule: env("RECONCILE_SCHEDULE", "@every 15m"),
		UnpaidAfter:       time.Duration(atoi("UNPAID_AFTER_MINUTES", 30)) * time.Minute,

		OTLPEndpoint: env("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}
	if c.JWTSecret == "" {
		log.Warn().Msg("AUTH_JWT_SECRET is empty; every request is anonymous")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func location(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Warn().Err(err).Str("tz", name).Msg("unknown timezone, using UTC")
		return time.UTC
	}
	return loc
}
