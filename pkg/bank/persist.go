package bank

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"bank-ledger/pkg/store"
)

// decodeSession parses a persisted session blob. A blob without a positive
// account id is treated as corrupt.
func decodeSession(raw string) (*Session, error) {
	var session Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, fmt.Errorf("bank: decode session: %w", err)
	}
	if session.AccountID <= 0 {
		return nil, fmt.Errorf("bank: decode session: missing account id")
	}
	return &session, nil
}

// persistSession writes the session blob under the session key.
func (m *Manager) persistSession(ctx context.Context, session *Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("bank: encode session: %w", err)
	}
	if err := m.store.Set(ctx, store.SessionKey(), string(data)); err != nil {
		return store.WrapError(err, m.store.Name(), "persist session")
	}
	return nil
}

// persistLedger writes the full ledger snapshot under the account's key and
// mirrors it to the legacy aggregate key. Only the per-account write matters
// for correctness; the legacy mirror exists for older readers and its
// failure is logged, not surfaced.
func (m *Manager) persistLedger(ctx context.Context, accountID int64, ledger []Transaction) error {
	data, err := json.Marshal(ledger)
	if err != nil {
		return fmt.Errorf("bank: encode ledger: %w", err)
	}
	if err := m.store.Set(ctx, store.LedgerKey(accountID), string(data)); err != nil {
		return store.WrapError(err, m.store.Name(), "persist ledger")
	}
	if err := m.store.Set(ctx, store.LegacyLedgerKey(), string(data)); err != nil {
		m.logger.Debug("legacy ledger mirror failed", zap.Error(err))
	}
	return nil
}

// loadLedger reads the ledger for accountID. A missing key is an empty
// ledger; read or decode failures degrade to an empty ledger with a warning
// rather than blocking login.
func (m *Manager) loadLedger(ctx context.Context, accountID int64) []Transaction {
	raw, err := m.store.Get(ctx, store.LedgerKey(accountID))
	if err != nil {
		if !store.IsNotFound(err) {
			m.logger.Warn("ledger load failed",
				zap.Int64("account_id", accountID),
				zap.Error(err),
			)
		}
		return nil
	}
	var ledger []Transaction
	if err := json.Unmarshal([]byte(raw), &ledger); err != nil {
		m.logger.Warn("corrupt ledger discarded",
			zap.Int64("account_id", accountID),
			zap.Error(err),
		)
		return nil
	}
	return ledger
}
