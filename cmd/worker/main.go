package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"hotel_booking/internal/adapters/gateway"
	"hotel_booking/internal/adapters/observability"
	"hotel_booking/internal/app"
	"hotel_booking/internal/shared"
	"hotel_booking/internal/storage"
)

func main() {
	cfg := shared.Load()

	// initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := observability.InitRegistry()
	metricsSrv := observability.Serve(cfg.MetricsAddr, reg)

	store, closeStore, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("open storage")
	}
	defer closeStore()

	deps := app.DepsFrom(store)
	deps.Location = cfg.Location
	bookings := app.NewBookingService(deps)
	gw, err := gateway.Optional(cfg.GatewayURL, cfg.GatewayKey, cfg.GatewayRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("payment gateway")
	}
	settler := app.NewSettlementService(store, app.SettlementConfig{
		Batch:       cfg.SettleBatch,
		Workers:     cfg.SettleWorkers,
		RPS:         cfg.SettleRPS,
		MaxAttempts: cfg.SettleAttempts,
		Lease:       cfg.SettleLease,
	}, nil, observability.ObserveSettlement).WithGateway(gw)

	c := cron.New()
	if _, err := c.AddFunc(cfg.ReconcileSchedule, func() { reconcile(ctx, bookings, cfg.UnpaidAfter) }); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.ReconcileSchedule).Msg("invalid reconcile schedule")
	}
	c.Start()

	log.Info().
		Dur("interval", cfg.SettleInterval).
		Int("workers", cfg.SettleWorkers).
		Int("batch", cfg.SettleBatch).
		Str("reconcile", cfg.ReconcileSchedule).
		Bool("gateway", gw != nil).
		Msg("worker starting")

	settler.Run(ctx, cfg.SettleInterval)

	// wait for a running reconcile job before closing the store
	<-c.Stop().Done()
	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	log.Info().Msg("worker stopped")
}

// reconcile reports bookings left pending without any payment.
func reconcile(ctx context.Context, bookings *app.BookingService, age time.Duration) {
	unpaid, err := bookings.ListUnpaid(ctx, age)
	if err != nil {
		log.Error().Err(err).Msg("unpaid bookings report failed")
		return
	}
	if len(unpaid) == 0 {
		log.Debug().Msg("no unpaid bookings")
		return
	}
	ev := log.Warn().Int("count", len(unpaid)).Dur("older_than", age)
	ids := make([]string, 0, 10)
	for i, b := range unpaid {
		if i == 10 {
			break
		}
		ids = append(ids, b.ID)
	}
	ev.Strs("sample", ids).Msg("unpaid bookings need reconciliation")
}
