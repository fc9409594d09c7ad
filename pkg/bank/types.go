package bank

import (
	"time"

	"github.com/shopspring/decimal"
)

// State is the session manager's lifecycle state.
type State int

const (
	// StateAnonymous means no session exists.
	StateAnonymous State = iota
	// StateAuthenticating means a login or session restore is in flight.
	StateAuthenticating
	// StateAuthenticated means a session with authoritative balance is live.
	StateAuthenticated
	// StateOperating means a money-movement call is in flight; balance and
	// ledger are locked against mutation until it resolves.
	StateOperating
	// StateDegraded means a restored session whose authoritative balance
	// could not be fetched. Cached data is shown read-only; money movement
	// is rejected until a successful login.
	StateDegraded
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	case StateOperating:
		return "operating"
	case StateDegraded:
		return "degraded"
	default:
		return "unknown"
	}
}

// Session is the authenticated identity and account binding for the
// current process. Fields are immutable for the session's lifetime.
type Session struct {
	AccountID int64  `json:"accountId"`
	Name      string `json:"name"`
	TaxID     string `json:"taxId"`
}

// Kind classifies a transaction.
type Kind string

const (
	// KindDeposit credits the account.
	KindDeposit Kind = "deposit"
	// KindWithdraw debits the account.
	KindWithdraw Kind = "withdraw"
	// KindTransfer debits the account in favor of another.
	KindTransfer Kind = "transfer"
)

// defaultDescription is used when the caller omits one.
func (k Kind) defaultDescription() string {
	switch k {
	case KindDeposit:
		return "Deposit"
	case KindWithdraw:
		return "Withdrawal"
	default:
		return "Transfer"
	}
}

// Transaction is an immutable record of one completed money-movement
// event. Amount is always positive; Signed derives the display sign.
// The JSON shape matches what earlier clients persisted, so existing
// ledgers load unchanged.
type Transaction struct {
	ID          int64           `json:"id"`
	Kind        Kind            `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Timestamp   time.Time       `json:"date"`
}

// Signed returns the amount with the sign implied by the kind: positive
// for deposits, negative for withdrawals and transfers.
func (t Transaction) Signed() decimal.Decimal {
	if t.Kind == KindDeposit {
		return t.Amount
	}
	return t.Amount.Neg()
}
