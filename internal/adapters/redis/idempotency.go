package redisad

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"hotel_booking/internal/domain"
)

const (
	idempotencyPrefix = "idempotency:"
	DefaultReplayTTL  = 24 * time.Hour

	stateProcessing = "processing"
	stateSuccess    = "success"
)

type idemState struct {
	Status   string                 `json:"status"`
	Response *domain.StoredResponse `json:"response,omitempty"`
}

// IdempotencyStore remembers the response to a keyed request so retries of
// the same POST replay it instead of creating a second record.
type IdempotencyStore struct {
	c   *redis.Client
	ttl time.Duration
}

func NewIdempotencyStore(c *redis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = DefaultReplayTTL
	}
	return &IdempotencyStore{c: c, ttl: ttl}
}

func (s *IdempotencyStore) key(k string) string { return idempotencyPrefix + k }

// Reserve claims key. It returns the stored response when the key already
// completed, (nil, nil) when the caller now owns it, and ErrConflict while
// another request holds it.
func (s *IdempotencyStore) Reserve(ctx context.Context, key string) (*domain.StoredResponse, error) {
	k := s.key(key)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raw, err := s.c.Get(ctx, k).Bytes()
		if errors.Is(err, redis.Nil) {
			b, _ := json.Marshal(idemState{Status: stateProcessing})
			_, err := s.c.SetArgs(ctx, k, b, redis.SetArgs{Mode: "NX", TTL: s.ttl}).Result()
			if errors.Is(err, redis.Nil) {
				// lost the race; read the winner's state
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("redis set: %w", err)
			}
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("redis get: %w", err)
		}

		var st idemState
		if err := json.Unmarshal(raw, &st); err != nil {
			return nil, fmt.Errorf("redis unmarshal: %w", err)
		}
		switch st.Status {
		case stateSuccess:
			return st.Response, nil
		case stateProcessing:
			return nil, domain.Conflict("request with this idempotency key is still in progress")
		default:
			if err := s.c.Del(ctx, k).Err(); err != nil {
				return nil, fmt.Errorf("redis del: %w", err)
			}
		}
	}
}

func (s *IdempotencyStore) Complete(ctx context.Context, key string, resp domain.StoredResponse) error {
	b, err := json.Marshal(idemState{Status: stateSuccess, Response: &resp})
	if err != nil {
		return err
	}
	return s.c.Set(ctx, s.key(key), b, s.ttl).Err()
}

// Release forgets key so a failed request can be retried.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.c.Del(ctx, s.key(key)).Err()
}
