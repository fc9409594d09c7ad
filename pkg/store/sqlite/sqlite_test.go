package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"bank-ledger/pkg/store"
)

func openStore(t *testing.T, path string) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore_GetSetRemove(t *testing.T) {
	s := openStore(t, filepath.Join(t.TempDir(), "bank.db"))
	ctx := context.Background()

	if _, err := s.Get(ctx, "bankUser"); !store.IsNotFound(err) {
		t.Errorf("Expected ErrKeyNotFound, got %v", err)
	}

	if err := s.Set(ctx, "bankUser", `{"accountId":1}`); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	value, err := s.Get(ctx, "bankUser")
	if err != nil || value != `{"accountId":1}` {
		t.Errorf("Get = %q, %v", value, err)
	}

	// Set on an existing key is an upsert.
	if err := s.Set(ctx, "bankUser", `{"accountId":2}`); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	value, _ = s.Get(ctx, "bankUser")
	if value != `{"accountId":2}` {
		t.Errorf("Upsert not applied: %q", value)
	}

	if err := s.Remove(ctx, "bankUser"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := s.Get(ctx, "bankUser"); !store.IsNotFound(err) {
		t.Errorf("Expected ErrKeyNotFound after remove, got %v", err)
	}
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Set(ctx, store.LedgerKey(1), `[{"id":1}]`); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	reopened := openStore(t, path)
	value, err := reopened.Get(ctx, store.LedgerKey(1))
	if err != nil || value != `[{"id":1}]` {
		t.Errorf("Get after reopen = %q, %v", value, err)
	}
}

func TestSQLiteStore_Keys(t *testing.T) {
	s := openStore(t, filepath.Join(t.TempDir(), "bank.db"))
	ctx := context.Background()

	for _, key := range []string{store.SessionKey(), store.LedgerKey(1), store.LedgerKey(2)} {
		if err := s.Set(ctx, key, "v"); err != nil {
			t.Fatal(err)
		}
	}

	keys, err := s.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(keys) != 3 {
		t.Errorf("Expected 3 keys, got %d: %v", len(keys), keys)
	}
}

func TestSQLiteStore_RemoveAbsent(t *testing.T) {
	s := openStore(t, filepath.Join(t.TempDir(), "bank.db"))
	if err := s.Remove(context.Background(), "bankUser"); err != nil {
		t.Errorf("Remove of absent key failed: %v", err)
	}
}
