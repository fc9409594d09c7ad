package store

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Keys used by the session manager. The session and per-account ledger keys
// match the layout the browser client left behind, so an upgraded install
// picks up its existing data.
const (
	sessionKey      = "bankUser"
	ledgerKeyPrefix = "transactions_"
	legacyLedgerKey = "bankTransactions"
)

// SessionKey returns the key holding the serialized active session.
func SessionKey() string {
	return sessionKey
}

// LedgerKey returns the key holding the ledger for one account.
func LedgerKey(accountID int64) string {
	return ledgerKeyPrefix + strconv.FormatInt(accountID, 10)
}

// LegacyLedgerKey returns the unscoped ledger key older clients wrote. It is
// kept for display continuity only and is never authoritative.
func LegacyLedgerKey() string {
	return legacyLedgerKey
}

// ValidateKey checks a key against the store's rules: non-empty, at most
// 250 characters, no control characters, no leading or trailing whitespace.
func ValidateKey(key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	if len(key) > 250 {
		return fmt.Errorf("%w: key too long (max 250 characters)", ErrInvalidKey)
	}
	for _, r := range key {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: key contains control character", ErrInvalidKey)
		}
	}
	if strings.TrimSpace(key) != key {
		return fmt.Errorf("%w: key has leading or trailing whitespace", ErrInvalidKey)
	}
	return nil
}
