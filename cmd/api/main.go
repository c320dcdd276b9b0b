package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"hotel_booking/internal/adapters/auth"
	server "hotel_booking/internal/adapters/http_server"
	"hotel_booking/internal/adapters/gateway"
	"hotel_booking/internal/adapters/observability"
	redisad "hotel_booking/internal/adapters/redis"
	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
	"hotel_booking/internal/shared"
	"hotel_booking/internal/storage"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing := observability.InitTracing(ctx, "hotel-api", cfg.OTLPEndpoint)
	reg := observability.InitRegistry()
	metricsSrv := observability.Serve(cfg.MetricsAddr, reg)

	store, closeStore, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("open storage")
	}
	defer closeStore()

	rdb := redisad.NewClient(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer rdb.Close()
	var (
		cache domain.Cache
		idem  domain.IdempotencyStore
	)
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Msg("redis unavailable; caching and idempotency disabled")
	} else {
		cache = redisad.NewCache(rdb)
		idem = redisad.NewIdempotencyStore(rdb, redisad.DefaultReplayTTL)
	}

	deps := app.DepsFrom(store)
	deps.Cache = cache
	deps.CacheTTL = cfg.CacheTTL
	deps.PaymentDelay = cfg.PaymentDelay
	deps.Location = cfg.Location

	// http
	srv := server.New()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Catalog:     app.NewCatalogService(deps),
		Bookings:    app.NewBookingService(deps),
		Stats:       app.NewStatsService(deps),
		Identity:    app.NewIdentityService(deps.Users, nil),
		Verifier:    auth.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer),
		Idempotency: idem,
		UnpaidAfter: cfg.UnpaidAfter,
	})

	if cfg.InprocWorker {
		gw, err := gateway.Optional(cfg.GatewayURL, cfg.GatewayKey, cfg.GatewayRPS)
		if err != nil {
			log.Fatal().Err(err).Msg("payment gateway")
		}
		settler := app.NewSettlementService(deps.Payments, settlementConfig(cfg), nil, observability.ObserveSettlement).
			WithGateway(gw)
		go settler.Run(ctx, cfg.SettleInterval)
		log.Info().Msg("in-process settlement worker started")
	}

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("tracing shutdown")
	}
}

func settlementConfig(cfg shared.Config) app.SettlementConfig {
	return app.SettlementConfig{
		Batch:       cfg.SettleBatch,
		Workers:     cfg.SettleWorkers,
		RPS:         cfg.SettleRPS,
		MaxAttempts: cfg.SettleAttempts,
		Lease:       cfg.SettleLease,
	}
}
