// Package redis provides a redis-backed store, useful when several client
// processes on the same device should share one session and ledger cache.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"bank-ledger/pkg/store"
)

// RedisStore satisfies store.Store on top of a rueidis client.
type RedisStore struct {
	client rueidis.Client
	name   string
	config RedisStoreConfig
}

// RedisStoreConfig holds connection settings for the redis store.
type RedisStoreConfig struct {
	Name string
	// Addr is the redis server address, e.g. "localhost:6379".
	Addr     string
	Username string
	Password string
	// DB is the redis database number.
	DB int
	// KeyPrefix namespaces every key written by this store.
	KeyPrefix    string
	DialTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultRedisStoreConfig returns settings for a local redis instance.
func DefaultRedisStoreConfig() RedisStoreConfig {
	return RedisStoreConfig{
		Name:         "redis",
		Addr:         "localhost:6379",
		KeyPrefix:    "bank:",
		DialTimeout:  5 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// NewRedisStore connects to redis and verifies the connection with a ping.
func NewRedisStore(config RedisStoreConfig) (*RedisStore, error) {
	if config.Name == "" {
		config.Name = "redis"
	}
	if config.Addr == "" {
		return nil, fmt.Errorf("redis store: no address configured")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:      []string{config.Addr},
		Username:         config.Username,
		Password:         config.Password,
		SelectDB:         config.DB,
		ConnWriteTimeout: config.WriteTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("redis store: create client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.DialTimeout)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis store: ping: %w", err)
	}

	return &RedisStore{client: client, name: config.Name, config: config}, nil
}

// Get retrieves the value for key, or store.ErrKeyNotFound when absent.
func (r *RedisStore) Get(ctx context.Context, key string) (string, error) {
	if err := store.ValidateKey(key); err != nil {
		return "", err
	}

	cmd := r.client.B().Get().Key(r.config.KeyPrefix + key).Build()
	resp := r.client.Do(ctx, cmd)
	if err := resp.Error(); err != nil {
		if rueidis.IsRedisNil(err) {
			return "", store.ErrKeyNotFound
		}
		return "", store.WrapError(err, r.name, "get")
	}

	value, err := resp.ToString()
	if err != nil {
		return "", store.WrapError(err, r.name, "get")
	}
	return value, nil
}

// Set stores value under key without expiry; session and ledger entries
// live until removed.
func (r *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := store.ValidateKey(key); err != nil {
		return err
	}

	cmd := r.client.B().Set().Key(r.config.KeyPrefix + key).Value(value).Build()
	if err := r.client.Do(ctx, cmd).Error(); err != nil {
		return store.WrapError(err, r.name, "set")
	}
	return nil
}

// Remove deletes key. Absent keys are not an error.
func (r *RedisStore) Remove(ctx context.Context, key string) error {
	if err := store.ValidateKey(key); err != nil {
		return err
	}

	cmd := r.client.B().Del().Key(r.config.KeyPrefix + key).Build()
	if err := r.client.Do(ctx, cmd).Error(); err != nil {
		return store.WrapError(err, r.name, "remove")
	}
	return nil
}

// Keys returns all keys under this store's prefix, with the prefix removed.
func (r *RedisStore) Keys(ctx context.Context) ([]string, error) {
	cmd := r.client.B().Keys().Pattern(r.config.KeyPrefix + "*").Build()
	resp := r.client.Do(ctx, cmd)
	if err := resp.Error(); err != nil {
		return nil, store.WrapError(err, r.name, "keys")
	}

	raw, err := resp.AsStrSlice()
	if err != nil {
		return nil, store.WrapError(err, r.name, "keys")
	}

	prefixLen := len(r.config.KeyPrefix)
	keys := make([]string, len(raw))
	for i, k := range raw {
		if len(k) >= prefixLen {
			keys[i] = k[prefixLen:]
		} else {
			keys[i] = k
		}
	}
	return keys, nil
}

// Ping checks the connection.
func (r *RedisStore) Ping(ctx context.Context) error {
	if err := r.client.Do(ctx, r.client.B().Ping().Build()).Error(); err != nil {
		return store.WrapError(err, r.name, "ping")
	}
	return nil
}

// Name returns the store identifier.
func (r *RedisStore) Name() string {
	return r.name
}

// Close closes the redis client.
func (r *RedisStore) Close() error {
	r.client.Close()
	return nil
}
