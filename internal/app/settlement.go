package app

import (
	"context"
	crand "crypto/rand"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"hotel_booking/internal/domain"
)

type SettlementConfig struct {
	Batch       int           // jobs claimed per poll
	Workers     int           // concurrent settlements
	RPS         int           // settlements per second across workers
	Lease       time.Duration // how long a claimed job stays invisible; a charge may use half of it
	MaxAttempts int           // after this many failures the payment is marked failed
}

func (c SettlementConfig) withDefaults() SettlementConfig {
	if c.Batch <= 0 {
		c.Batch = 50
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.RPS <= 0 {
		c.RPS = 20
	}
	if c.Lease <= 0 {
		c.Lease = 2 * time.Minute
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 5
	}
	return c
}

// SettleObserver receives one call per processed job: result is
// completed|retry|failed and lag is how late the job ran.
type SettleObserver func(result string, lag time.Duration)

type SettleResult struct {
	Completed, Retried, Failed int
}

// Gateway captures the money behind a payment and returns the provider's
// transaction id.
type Gateway interface {
	Charge(ctx context.Context, job domain.PaymentJob) (string, error)
}

// ErrDeclined marks a charge the provider refused outright; it is not retried.
var ErrDeclined = errors.New("payment declined")

type simulatedGateway struct{}

func (simulatedGateway) Charge(context.Context, domain.PaymentJob) (string, error) {
	return "txn_" + uuid.NewString(), nil
}

// SettlementService completes pending payments once their delay elapses.
// Unless WithGateway is used the gateway is simulated and every charge
// succeeds with a fresh transaction id.
type SettlementService struct {
	payments domain.PaymentRepository
	gateway  Gateway
	cfg      SettlementConfig
	sem      *semaphore.Weighted
	rl       *rate.Limiter
	now      func() time.Time
	observe  SettleObserver
}

func NewSettlementService(p domain.PaymentRepository, cfg SettlementConfig, now func() time.Time, observe SettleObserver) *SettlementService {
	cfg = cfg.withDefaults()
	if now == nil {
		now = time.Now
	}
	if observe == nil {
		observe = func(string, time.Duration) {}
	}
	return &SettlementService{
		payments: p,
		gateway:  simulatedGateway{},
		cfg:      cfg,
		sem:      semaphore.NewWeighted(int64(cfg.Workers)),
		rl:       rate.NewLimiter(rate.Limit(cfg.RPS), cfg.RPS),
		now:      now,
		observe:  observe,
	}
}

// WithGateway replaces the simulated gateway; nil keeps the current one.
func (s *SettlementService) WithGateway(g Gateway) *SettlementService {
	if g != nil {
		s.gateway = g
	}
	return s
}

// RunOnce claims one batch of due jobs and settles them concurrently.
func (s *SettlementService) RunOnce(ctx context.Context) (SettleResult, error) {
	jobs, err := s.payments.ClaimPaymentJobs(ctx, s.now(), s.cfg.Lease, s.cfg.Batch)
	if err != nil {
		return SettleResult{}, err
	}

	var completed, retried, failed atomic.Int64
	var wg sync.WaitGroup
	for _, job := range jobs {
		if err := s.rl.Wait(ctx); err != nil {
			break
		}
		// acquire before launching the goroutine; release inside it
		if err := s.sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(j domain.PaymentJob) {
			defer wg.Done()
			defer s.sem.Release(1)
			switch s.settle(ctx, j) {
			case "completed":
				completed.Add(1)
			case "retry":
				retried.Add(1)
			default:
				failed.Add(1)
			}
		}(job)
	}
	wg.Wait()

	return SettleResult{
		Completed: int(completed.Load()),
		Retried:   int(retried.Load()),
		Failed:    int(failed.Load()),
	}, ctx.Err()
}

func (s *SettlementService) settle(ctx context.Context, j domain.PaymentJob) string {
	now := s.now()
	lag := now.Sub(j.DueAt)
	l := log.With().Str("payment", j.PaymentID).Int("attempt", j.Attempts).Logger()

	// the charge must finish well inside the lease or another worker may claim the job again
	cctx, cancel := context.WithTimeout(ctx, s.cfg.Lease/2)
	txID, err := s.gateway.Charge(cctx, j)
	cancel()
	if err == nil {
		err = s.payments.CompletePayment(ctx, j, txID, now)
	}
	if err == nil {
		s.observe("completed", lag)
		l.Info().Dur("lag", lag).Msg("payment settled")
		return "completed"
	}

	if j.Attempts >= s.cfg.MaxAttempts || errors.Is(err, ErrDeclined) {
		if ferr := s.payments.FailPayment(ctx, j, err.Error(), now); ferr != nil {
			l.Error().Err(ferr).Msg("mark payment failed")
		}
		s.observe("failed", lag)
		l.Warn().Err(err).Msg("payment settlement abandoned")
		return "failed"
	}

	if rerr := s.payments.RetryPaymentJob(ctx, j.ID, now.Add(backoff(j.Attempts)), err.Error()); rerr != nil {
		// the lease expires on its own and the job is claimed again
		l.Error().Err(rerr).Msg("reschedule payment job")
	}
	s.observe("retry", lag)
	l.Warn().Err(err).Msg("payment settlement failed, retrying")
	return "retry"
}

// Run polls every interval until ctx is cancelled.
func (s *SettlementService) Run(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		res, err := s.RunOnce(ctx)
		if err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("settlement poll failed")
		}
		if res.Completed+res.Retried+res.Failed > 0 {
			log.Debug().Int("completed", res.Completed).Int("retried", res.Retried).Int("failed", res.Failed).Msg("settlement batch")
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

// backoff returns an exponential delay with up to +50% jitter.
func backoff(attempt int) time.Duration {
	if attempt > 10 {
		attempt = 10
	}
	base := time.Duration(1<<attempt) * 500 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
