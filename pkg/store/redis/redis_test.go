package redis

import (
	"context"
	"testing"
	"time"

	"bank-ledger/pkg/store"
)

func setupTestRedis(t *testing.T) *RedisStore {
	t.Helper()

	config := DefaultRedisStoreConfig()
	config.Name = "test-redis"
	config.KeyPrefix = "test:bank:"

	r, err := NewRedisStore(config)
	if err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		keys, _ := r.Keys(ctx)
		for _, k := range keys {
			_ = r.Remove(ctx, k)
		}
		r.Close()
	})
	return r
}

func TestRedisStore_GetSetRemove(t *testing.T) {
	r := setupTestRedis(t)
	ctx := context.Background()

	if _, err := r.Get(ctx, "bankUser"); !store.IsNotFound(err) {
		t.Errorf("Expected ErrKeyNotFound, got %v", err)
	}

	if err := r.Set(ctx, "bankUser", `{"accountId":1}`); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	value, err := r.Get(ctx, "bankUser")
	if err != nil || value != `{"accountId":1}` {
		t.Errorf("Get = %q, %v", value, err)
	}

	if err := r.Remove(ctx, "bankUser"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := r.Get(ctx, "bankUser"); !store.IsNotFound(err) {
		t.Errorf("Expected ErrKeyNotFound after remove, got %v", err)
	}
}

func TestRedisStore_KeysStripPrefix(t *testing.T) {
	r := setupTestRedis(t)
	ctx := context.Background()

	for _, key := range []string{store.SessionKey(), store.LedgerKey(1)} {
		if err := r.Set(ctx, key, "v"); err != nil {
			t.Fatal(err)
		}
	}

	keys, err := r.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	found := make(map[string]bool, len(keys))
	for _, k := range keys {
		found[k] = true
	}
	if !found[store.SessionKey()] || !found[store.LedgerKey(1)] {
		t.Errorf("Keys missing expected entries: %v", keys)
	}
}

func TestNewRedisStore_RequiresAddr(t *testing.T) {
	if _, err := NewRedisStore(RedisStoreConfig{}); err == nil {
		t.Error("Expected error without an address")
	}
}
