package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"bank-ledger/pkg/store"
)

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.json")
	fs, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	ctx := context.Background()

	if _, err := fs.Get(ctx, "bankUser"); !store.IsNotFound(err) {
		t.Errorf("Expected ErrKeyNotFound, got %v", err)
	}

	if err := fs.Set(ctx, "bankUser", `{"accountId":1}`); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	value, err := fs.Get(ctx, "bankUser")
	if err != nil || value != `{"accountId":1}` {
		t.Errorf("Get = %q, %v", value, err)
	}

	if err := fs.Remove(ctx, "bankUser"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := fs.Get(ctx, "bankUser"); !store.IsNotFound(err) {
		t.Errorf("Expected ErrKeyNotFound after remove, got %v", err)
	}
}

func TestFileStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.json")
	ctx := context.Background()

	fs, err := NewFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := fs.Set(ctx, store.LedgerKey(1), `[{"id":1}]`); err != nil {
		t.Fatal(err)
	}
	if err := fs.Set(ctx, store.SessionKey(), `{"accountId":1}`); err != nil {
		t.Fatal(err)
	}
	if err := fs.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	value, err := reopened.Get(ctx, store.LedgerKey(1))
	if err != nil || value != `[{"id":1}]` {
		t.Errorf("Get after reopen = %q, %v", value, err)
	}

	keys, err := reopened.Keys(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 2 {
		t.Errorf("Expected 2 keys after reopen, got %d", len(keys))
	}
}

func TestFileStore_CorruptFileRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileStore(path); err == nil {
		t.Error("Expected error opening a corrupt file")
	}
}

func TestFileStore_NoTempFilesLeftBehind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bank.json")
	fs, err := NewFileStore(path)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := fs.Set(ctx, "bankUser", "v"); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected only the snapshot file, found %d entries", len(entries))
	}
}

func TestFileStore_RemoveAbsentDoesNotFlush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.json")
	fs, err := NewFileStore(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := fs.Remove(context.Background(), "bankUser"); err != nil {
		t.Fatalf("Remove of absent key failed: %v", err)
	}
	// Nothing was ever written, so the snapshot must not exist.
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("Expected no snapshot on disk, stat err = %v", err)
	}
}
