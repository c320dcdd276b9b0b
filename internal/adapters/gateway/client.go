// Package gateway settles payments against an external HTTP payment provider.
package gateway

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"hotel_booking/internal/adapters/observability"
	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
)

const (
	maxTries = 4
	// maxRetryAfter bounds how long a provider may ask us to wait between tries.
	maxRetryAfter = 10 * time.Second
)

var ErrUnauthorized = errors.New("gateway: unauthorized")

type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
}

func New(base, key string, rps int) (*Client, error) {
	if base == "" {
		return nil, fmt.Errorf("gateway URL is required")
	}
	if key == "" {
		return nil, fmt.Errorf("gateway API key is required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 20 * time.Second},
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// Optional returns nil when base is empty so callers keep the simulated
// gateway.
func Optional(base, key string, rps int) (app.Gateway, error) {
	if base == "" {
		return nil, nil
	}
	c, err := New(base, key, rps)
	if err != nil {
		return nil, err
	}
	return c, nil
}

var _ app.Gateway = (*Client)(nil)

type chargeRequest struct {
	PaymentID     string  `json:"paymentId"`
	BookingID     string  `json:"bookingId"`
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"paymentMethod"`
	Attempt       int     `json:"attempt"`
}

type chargeResponse struct {
	TransactionID string `json:"transactionId"`
}

// Charge asks the provider to capture the payment behind job. The payment id
// doubles as the provider's idempotency key, so a retried job never charges
// twice.
func (c *Client) Charge(ctx context.Context, job domain.PaymentJob) (string, error) {
	if job.Amount <= 0 || job.PaymentMethod == "" {
		return "", fmt.Errorf("%w: payment %s has no amount or method", app.ErrDeclined, job.PaymentID)
	}
	body, err := json.Marshal(chargeRequest{
		PaymentID:     job.PaymentID,
		BookingID:     job.BookingID,
		Amount:        job.Amount,
		PaymentMethod: job.PaymentMethod,
		Attempt:       job.Attempts,
	})
	if err != nil {
		return "", err
	}
	var out chargeResponse
	if err := c.post(ctx, "/charges", job.PaymentID, body, &out); err != nil {
		return "", err
	}
	if out.TransactionID == "" {
		return "", errors.New("gateway: response without transactionId")
	}
	return out.TransactionID, nil
}

// post sends body with client-side rate limiting and retries on 429 and
// transient 5xx, honoring Retry-After when provided.
func (c *Client) post(ctx context.Context, endpoint, idemKey string, body []byte, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	var lastErr error
	for i := 0; i < maxTries; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+endpoint, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+c.key)
		req.Header.Set("Idempotency-Key", idemKey)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "hotel-booking/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal("gateway", endpoint, 0, time.Since(start))
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if i < maxTries-1 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}

		observability.ObserveExternal("gateway", endpoint, resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK, http.StatusCreated:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			return err

		case http.StatusUnauthorized, http.StatusForbidden:
			resp.Body.Close()
			return ErrUnauthorized

		case http.StatusPaymentRequired, http.StatusUnprocessableEntity:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("%w: %s", app.ErrDeclined, strings.TrimSpace(string(b)))

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("gateway %d", resp.StatusCode)
			if i < maxTries-1 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("gateway status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}
	return lastErr
}

// sleepCtx waits for d or returns false if ctx is done first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After in seconds or HTTP-date form, capped at
// maxRetryAfter; 0 if absent.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	var d time.Duration
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		d = time.Duration(secs) * time.Second
	} else if t, err := http.ParseTime(h); err == nil {
		d = time.Until(t)
	}
	if d < 0 {
		return 0
	}
	return min(d, maxRetryAfter)
}

// backoff doubles from 200ms with up to +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
