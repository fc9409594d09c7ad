package bank

import (
	"context"

	"github.com/shopspring/decimal"

	"bank-ledger/pkg/remote"
)

// AccountService is the slice of the remote account client the manager
// needs. *remote.Client satisfies it; tests substitute their own.
type AccountService interface {
	GetAccount(ctx context.Context, id int64) (remote.Account, error)
	ListAccounts(ctx context.Context) ([]remote.Account, error)
	CreateAccount(ctx context.Context, name, taxID string, initialBalance decimal.Decimal) (remote.Account, error)
	Deposit(ctx context.Context, id int64, amount decimal.Decimal) (remote.Account, error)
	Withdraw(ctx context.Context, id int64, amount decimal.Decimal) (remote.Account, error)
	Transfer(ctx context.Context, fromID, toID int64, amount decimal.Decimal) error
}

var _ AccountService = (*remote.Client)(nil)
