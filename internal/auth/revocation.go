package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Revocations is a Redis-backed list of revoked token ids. Entries expire
// with the token they revoke.
type Revocations struct {
	client *redis.Client
	prefix string
}

func NewRevocations(client *redis.Client, prefix string) *Revocations {
	if prefix == "" {
		prefix = "revoked:jti:"
	}
	return &Revocations{client: client, prefix: prefix}
}

// Revoke blacklists jti for ttl; a non-positive ttl keeps it for a day.
func (r *Revocations) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return r.client.Set(ctx, r.prefix+jti, "1", ttl).Err()
}

func (r *Revocations) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, r.prefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
