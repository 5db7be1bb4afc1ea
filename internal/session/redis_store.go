package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "fidelipromo:session:"

// redisStore persists session records in Redis with the configured TTL so
// sessions survive service restarts and are shared between replicas.
type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(client *redis.Client, ttl time.Duration) Store {
	return &redisStore{client: client, ttl: ttl}
}

func (s *redisStore) Get(ctx context.Context, identityID string) (*Session, error) {
	raw, err := s.client.Get(ctx, keyPrefix+identityID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, err
	}
	if sess.Expired(time.Now()) {
		_ = s.client.Del(ctx, keyPrefix+identityID).Err()
		return nil, ErrNotFound
	}
	return &sess, nil
}

func (s *redisStore) Put(ctx context.Context, sess *Session) error {
	// Generation check and write are not atomic here; with one writer per
	// identity the window is acceptable.
	existing, err := s.Get(ctx, sess.IdentityID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if existing != nil && existing.Generation > sess.Generation {
		return ErrStaleWrite
	}

	raw, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, keyPrefix+sess.IdentityID, raw, s.ttl).Err()
}

func (s *redisStore) Delete(ctx context.Context, identityID string) error {
	return s.client.Del(ctx, keyPrefix+identityID).Err()
}
