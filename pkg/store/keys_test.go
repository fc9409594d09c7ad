package store

import (
	"errors"
	"strings"
	"testing"
)

func TestKeyLayout(t *testing.T) {
	if SessionKey() != "bankUser" {
		t.Errorf("SessionKey = %q", SessionKey())
	}
	if LedgerKey(42) != "transactions_42" {
		t.Errorf("LedgerKey(42) = %q", LedgerKey(42))
	}
	if LegacyLedgerKey() != "bankTransactions" {
		t.Errorf("LegacyLedgerKey = %q", LegacyLedgerKey())
	}
}

func TestValidateKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{"valid key", "bankUser", false},
		{"valid ledger key", "transactions_1", false},
		{"empty", "", true},
		{"too long", strings.Repeat("k", 251), true},
		{"max length", strings.Repeat("k", 250), false},
		{"control character", "bank\x00user", true},
		{"newline", "bank\nuser", true},
		{"leading space", " bankUser", true},
		{"trailing space", "bankUser ", true},
		{"interior space", "bank user", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateKey(tt.key)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidKey) {
					t.Errorf("Expected ErrInvalidKey, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}
