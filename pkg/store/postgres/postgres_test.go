package postgres

import (
	"context"
	"os"
	"testing"

	"bank-ledger/pkg/store"
)

func setupTestPostgres(t *testing.T) *PostgresStore {
	t.Helper()

	cfg := DefaultConfig()
	if host := os.Getenv("POSTGRES_HOST"); host != "" {
		cfg.Host = host
	}
	if db := os.Getenv("POSTGRES_DB"); db != "" {
		cfg.Database = db
	}

	p, err := NewPostgresStore(cfg)
	if err != nil {
		t.Skipf("Postgres not available: %v", err)
	}
	t.Cleanup(func() {
		ctx := context.Background()
		keys, _ := p.Keys(ctx)
		for _, k := range keys {
			_ = p.Remove(ctx, k)
		}
		p.Close()
	})
	return p
}

func TestPostgresStore_GetSetRemove(t *testing.T) {
	p := setupTestPostgres(t)
	ctx := context.Background()

	if _, err := p.Get(ctx, "bankUser"); !store.IsNotFound(err) {
		t.Errorf("Expected ErrKeyNotFound, got %v", err)
	}

	if err := p.Set(ctx, "bankUser", `{"accountId":1}`); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	value, err := p.Get(ctx, "bankUser")
	if err != nil || value != `{"accountId":1}` {
		t.Errorf("Get = %q, %v", value, err)
	}

	// Set on an existing key is an upsert.
	if err := p.Set(ctx, "bankUser", `{"accountId":2}`); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	value, _ = p.Get(ctx, "bankUser")
	if value != `{"accountId":2}` {
		t.Errorf("Upsert not applied: %q", value)
	}

	if err := p.Remove(ctx, "bankUser"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := p.Get(ctx, "bankUser"); !store.IsNotFound(err) {
		t.Errorf("Expected ErrKeyNotFound after remove, got %v", err)
	}
}

func TestPostgresStore_Keys(t *testing.T) {
	p := setupTestPostgres(t)
	ctx := context.Background()

	for _, key := range []string{store.SessionKey(), store.LedgerKey(1)} {
		if err := p.Set(ctx, key, "v"); err != nil {
			t.Fatal(err)
		}
	}

	keys, err := p.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(keys) != 2 {
		t.Errorf("Expected 2 keys, got %d: %v", len(keys), keys)
	}
}
