package bank

import (
	"context"
	"testing"

	"bank-ledger/pkg/money"
	"bank-ledger/pkg/store"
	"bank-ledger/pkg/store/memory"
	"bank-ledger/pkg/store/mock"
)

func TestPersistLedger_WritesLegacyMirror(t *testing.T) {
	svc := statefulService(1, "Alice", "11122233344", money.FromFloat(0))
	st := memory.NewMemoryStore("memory")
	m := newTestManager(t, svc, st)
	ctx := context.Background()

	mustLogin(t, m, "1")
	if err := m.Deposit(ctx, money.FromFloat(10), ""); err != nil {
		t.Fatal(err)
	}

	primary, err := st.Get(ctx, store.LedgerKey(1))
	if err != nil {
		t.Fatalf("Primary ledger key not written: %v", err)
	}
	legacy, err := st.Get(ctx, store.LegacyLedgerKey())
	if err != nil {
		t.Fatalf("Legacy ledger key not written: %v", err)
	}
	if primary != legacy {
		t.Errorf("Legacy mirror diverged from primary:\n%s\n%s", primary, legacy)
	}
}

func TestPersistLedger_LegacyMirrorFailureTolerated(t *testing.T) {
	svc := statefulService(1, "Alice", "11122233344", money.FromFloat(0))
	st := mock.NewMockStore("flaky")

	inner := memory.NewMemoryStore("memory")
	st.GetFunc = inner.Get
	st.RemoveFunc = inner.Remove
	st.SetFunc = func(ctx context.Context, key, value string) error {
		if key == store.LegacyLedgerKey() {
			return store.ErrUnavailable
		}
		return inner.Set(ctx, key, value)
	}

	m := newTestManager(t, svc, st)
	ctx := context.Background()
	mustLogin(t, m, "1")

	// Only the per-account write matters; the mirror failing is invisible.
	if err := m.Deposit(ctx, money.FromFloat(10), ""); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}
	if m.LastError() != nil {
		t.Errorf("Mirror failure surfaced: %v", m.LastError())
	}
	if _, err := inner.Get(ctx, store.LedgerKey(1)); err != nil {
		t.Errorf("Primary ledger key not written: %v", err)
	}
}

func TestLoadLedger_CorruptBlobDegradesToEmpty(t *testing.T) {
	svc := statefulService(1, "Alice", "11122233344", money.FromFloat(50))
	st := memory.NewMemoryStore("memory")
	if err := st.Set(context.Background(), store.LedgerKey(1), "{not json"); err != nil {
		t.Fatal(err)
	}

	m := newTestManager(t, svc, st)
	mustLogin(t, m, "1")

	// Login succeeds; the unreadable ledger loads as empty.
	if got := len(m.Ledger()); got != 0 {
		t.Errorf("Expected empty ledger, got %d entries", got)
	}
	if m.State() != StateAuthenticated {
		t.Errorf("Expected authenticated state, got %s", m.State())
	}
}
