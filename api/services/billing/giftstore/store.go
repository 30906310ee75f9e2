// Package giftstore holds short-lived gift trial offers in Redis until the
// customer actually starts a subscription.
package giftstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"

	"github.com/peshal-hash/activepieces/api/services/billing/catalog"
)

const keyPrefix = "billing:gift-trial:"

// ErrNotFound is returned when no hold exists (never set, consumed or expired).
var ErrNotFound = errors.New("gift trial hold not found")

// Hold is a pending gift trial for a (platform, customer) pair.
type Hold struct {
	TrialEnd time.Time    `json:"trialEnd"`
	Plan     catalog.Plan `json:"plan"`
}

// RedisClient is the subset of go-redis used by Store.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	GetDel(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Store reads and writes gift trial holds. Every hold carries its own expiry.
type Store struct {
	client RedisClient
	ttl    time.Duration
}

// New returns a store whose holds expire after ttl.
func New(client RedisClient, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// Connect parses a redis:// URL and returns a client that has answered PING.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "parse redis url")
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "redis ping failed")
	}
	return client, nil
}

// Key builds the composite key for a platform and provider customer.
func Key(platformID, customerID string) string {
	return keyPrefix + platformID + ":" + customerID
}

// Put stores or supersedes the hold for the pair.
func (s *Store) Put(ctx context.Context, platformID, customerID string, hold Hold) error {
	raw, err := json.Marshal(hold)
	if err != nil {
		return errors.Wrap(err, "encode gift trial hold")
	}
	if err := s.client.Set(ctx, Key(platformID, customerID), raw, s.ttl).Err(); err != nil {
		return errors.Wrapf(err, "store gift trial hold for platform %s", platformID)
	}
	return nil
}

// Get returns the hold without consuming it.
func (s *Store) Get(ctx context.Context, platformID, customerID string) (Hold, error) {
	return decode(s.client.Get(ctx, Key(platformID, customerID)))
}

// Consume returns the hold and removes it atomically.
func (s *Store) Consume(ctx context.Context, platformID, customerID string) (Hold, error) {
	return decode(s.client.GetDel(ctx, Key(platformID, customerID)))
}

// Discard removes a hold if present.
func (s *Store) Discard(ctx context.Context, platformID, customerID string) error {
	return s.client.Del(ctx, Key(platformID, customerID)).Err()
}

func decode(cmd *redis.StringCmd) (Hold, error) {
	raw, err := cmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return Hold{}, ErrNotFound
	}
	if err != nil {
		return Hold{}, errors.Wrap(err, "read gift trial hold")
	}
	var hold Hold
	if err := json.Unmarshal(raw, &hold); err != nil {
		return Hold{}, errors.Wrap(err, "decode gift trial hold")
	}
	return hold, nil
}
