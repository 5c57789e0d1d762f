package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when no snapshot exists for the journey ID.
var ErrNotFound = errors.New("snapshot not found")

// ErrRedisUnavailable is an exported constant or variable used by the journey engine.
var ErrRedisUnavailable = errors.New("redis unavailable")

// ErrCorrupt is returned when the stored snapshot blob cannot be decoded.
var ErrCorrupt = errors.New("snapshot corrupt")

// Store persists journey snapshots in Redis under a configurable key prefix.
type Store struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewStore describes the newstore operation and its observable behavior.
func NewStore(client redis.UniversalClient, prefix string, ttl time.Duration) *Store {
	return &Store{client: client, prefix: prefix, ttl: ttl}
}

func (s *Store) key(journeyID string) string {
	return s.prefix + ":" + journeyID
}

// Save writes the record and refreshes its TTL.
func (s *Store) Save(ctx context.Context, rec *Record) error {
	rec.SavedAt = time.Now().Unix()
	data, err := Encode(rec)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(rec.JourneyID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Load describes the load operation and its observable behavior.
func (s *Store) Load(ctx context.Context, journeyID string) (*Record, error) {
	data, err := s.client.Get(ctx, s.key(journeyID)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	rec, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return rec, nil
}

// Delete removes the snapshot. Missing keys are not an error.
func (s *Store) Delete(ctx context.Context, journeyID string) error {
	if err := s.client.Del(ctx, s.key(journeyID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}
