package shared

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "x")
	c := Load()
	if c.HTTPAddr != ":8080" || c.Storage != "mysql" || c.PaymentDelay != 2*time.Second || c.SettleWorkers != 4 || c.InprocWorker {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.Location != time.UTC || c.UnpaidAfter != 30*time.Minute {
		t.Fatalf("unexpected defaults: %+v", c)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PAYMENT_DELAY_MS", "250")
	t.Setenv("SETTLE_BATCH", "7")
	t.Setenv("SETTLE_RPS", "fast")
	t.Setenv("INPROC_WORKER", "true")
	t.Setenv("APP_TIMEZONE", "Europe/Paris")
	t.Setenv("CACHE_TTL_SECONDS", "60")
	c := Load()
	if c.PaymentDelay != 250*time.Millisecond || c.SettleBatch != 7 || c.SettleRPS != 20 || !c.InprocWorker {
		t.Fatalf("overrides not applied: %+v", c)
	}
	if c.Location.String() != "Europe/Paris" || c.CacheTTL != time.Minute {
		t.Fatalf("overrides not applied: %+v", c)
	}
}
