package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/natours/booking-api/internal/core/domain"
)

const defaultSessionTTL = 24 * time.Hour

// CheckoutStore keeps pending checkout sessions until the payment provider
// confirms them. Key format: checkout:<session_id>
type CheckoutStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCheckoutStore(client *redis.Client, ttl time.Duration) *CheckoutStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &CheckoutStore{client: client, ttl: ttl}
}

func (s *CheckoutStore) Save(ctx context.Context, session *domain.CheckoutSession) error {
	b, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode checkout session: %w", err)
	}
	if err := s.client.Set(ctx, s.key(session.ID), b, s.ttl).Err(); err != nil {
		return fmt.Errorf("save checkout session: %w", err)
	}
	return nil
}

// Take returns and deletes the session in one GETDEL, so a confirmation can
// be applied only once.
func (s *CheckoutStore) Take(ctx context.Context, id string) (*domain.CheckoutSession, error) {
	b, err := s.client.GetDel(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrCheckoutSessionNotFound
		}
		return nil, fmt.Errorf("take checkout session: %w", err)
	}
	var session domain.CheckoutSession
	if err := json.Unmarshal(b, &session); err != nil {
		return nil, fmt.Errorf("decode checkout session: %w", err)
	}
	return &session, nil
}

func (s *CheckoutStore) key(id string) string {
	return "checkout:" + id
}
