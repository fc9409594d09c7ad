// Package bank implements the session and ledger state manager: it owns
// authentication state, the account balance, and the local transaction
// ledger, and keeps all three consistent across the remote account service
// and the persistent store.
//
// The manager serializes operations: while a login or money movement is in
// flight every other mutating call is rejected with ErrBusy, never queued,
// so a remote side effect can never be issued twice. Balance is only ever
// set to a value the remote service returned; a balance change and its
// ledger entry are applied in the same critical section, and the store is
// written after memory (write-behind), so a crash between the two can lose
// the newest durable ledger entry but never show a balance without its
// transaction.
package bank

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bank-ledger/pkg/logging"
	"bank-ledger/pkg/metrics"
	"bank-ledger/pkg/money"
	"bank-ledger/pkg/remote"
	"bank-ledger/pkg/store"
)

// Manager is the session and ledger state manager. Construct one per
// process with NewManager and share it; all methods are safe for
// concurrent use.
type Manager struct {
	mu       sync.Mutex
	state    State
	session  *Session
	balance  decimal.Decimal
	ledger   []Transaction // newest first
	lastErr  error
	lastTxID int64

	remote   AccountService
	store    store.Store
	logger   *logging.Logger
	metrics  metrics.Collector
	onChange func()
}

// Config wires the manager's collaborators.
type Config struct {
	// Remote is the account service client. Required.
	Remote AccountService

	// Store persists the session and per-account ledgers. Required.
	Store store.Store

	// Logger defaults to the process global.
	Logger *logging.Logger

	// Metrics receives per-operation instrumentation. Defaults to no-op.
	Metrics metrics.Collector

	// OnChange, when set, is invoked after every observable state change.
	// The presentation layer binds redraws to it. It is called without
	// internal locks held, so it may freely read the manager.
	OnChange func()
}

// NewManager builds a manager in the Anonymous state.
func NewManager(config Config) (*Manager, error) {
	if config.Remote == nil {
		return nil, fmt.Errorf("bank: account service is required")
	}
	if config.Store == nil {
		return nil, fmt.Errorf("bank: store is required")
	}
	logger := config.Logger
	if logger == nil {
		logger = logging.L()
	}
	collector := config.Metrics
	if collector == nil {
		collector = metrics.NoOpCollector{}
	}

	return &Manager{
		state:    StateAnonymous,
		balance:  decimal.Zero,
		remote:   config.Remote,
		store:    config.Store,
		logger:   logger.Named("bank"),
		metrics:  collector,
		onChange: config.OnChange,
	}, nil
}

// RestoreSession restores a persisted session at startup and returns the
// resulting state. A remembered session is only considered live once the
// account service confirms it with an authoritative balance; if that call
// fails the cached session and ledger stay visible in StateDegraded.
// Failures are absorbed into state, never raised.
func (m *Manager) RestoreSession(ctx context.Context) State {
	start := time.Now()

	m.mu.Lock()
	if m.state != StateAnonymous {
		state := m.state
		m.mu.Unlock()
		return state
	}
	m.lastErr = nil
	m.mu.Unlock()

	raw, err := m.store.Get(ctx, store.SessionKey())
	if err != nil {
		if !store.IsNotFound(err) {
			m.logger.Warn("session restore: store read failed", zap.Error(err))
			m.setError(err)
		}
		m.metrics.RecordOperation("restore", false, time.Since(start))
		return StateAnonymous
	}

	session, err := decodeSession(raw)
	if err != nil {
		// A corrupt session blob is unrecoverable; drop it.
		m.logger.Warn("session restore: corrupt session discarded", zap.Error(err))
		_ = m.store.Remove(ctx, store.SessionKey())
		m.metrics.RecordOperation("restore", false, time.Since(start))
		return StateAnonymous
	}

	m.mu.Lock()
	m.session = session
	m.state = StateAuthenticating
	m.mu.Unlock()
	m.notify()

	ledger := m.loadLedger(ctx, session.AccountID)

	account, err := m.remote.GetAccount(ctx, session.AccountID)

	m.mu.Lock()
	m.ledger = ledger
	if err != nil {
		// The one place stale data is tolerated: cached session and ledger
		// stay visible, but the session is not live and the balance is
		// unknown until the service answers.
		m.balance = decimal.Zero
		m.state = StateDegraded
		m.lastErr = err
	} else {
		m.balance = account.Balance
		m.state = StateAuthenticated
	}
	state := m.state
	m.mu.Unlock()
	m.notify()

	m.metrics.RecordOperation("restore", state == StateAuthenticated, time.Since(start))
	m.logger.Info("session restored",
		zap.Int64("account_id", session.AccountID),
		zap.String("state", state.String()),
	)
	return state
}

// Login resolves identifier to an account and opens a session. A positive
// integer string is treated as an account id; anything else matches
// case-insensitively as a substring of account name or tax id, first match
// wins. Returns false when no account matches; remote failures are also
// reported as false with the error held in LastError, never raised.
func (m *Manager) Login(ctx context.Context, identifier string) (ok bool, err error) {
	start := time.Now()
	defer func() {
		m.metrics.RecordOperation("login", ok, time.Since(start))
	}()

	m.mu.Lock()
	if m.state == StateAuthenticating || m.state == StateOperating {
		m.mu.Unlock()
		return false, ErrBusy
	}
	m.lastErr = nil
	prev := m.state
	m.state = StateAuthenticating
	m.mu.Unlock()
	m.notify()

	account, found, lookupErr := m.resolveAccount(ctx, strings.TrimSpace(identifier))
	if lookupErr != nil || !found {
		m.mu.Lock()
		m.state = prev
		if lookupErr != nil {
			m.lastErr = lookupErr
		} else {
			m.lastErr = fmt.Errorf("bank: no account matches %q", identifier)
		}
		m.mu.Unlock()
		m.notify()
		return false, nil
	}

	session := &Session{AccountID: account.ID, Name: account.Name, TaxID: account.TaxID}

	// Still StateAuthenticating here: the busy guard must hold until the
	// ledger is installed, or a movement could slip in and have its entry
	// overwritten by the load below.
	m.mu.Lock()
	m.session = session
	m.balance = account.Balance
	m.ledger = nil
	m.mu.Unlock()

	if err := m.persistSession(ctx, session); err != nil {
		// The session is live in memory; it just won't survive a restart.
		m.logger.Error("login: session persist failed", zap.Error(err))
		m.setError(err)
	}

	// Ledgers are keyed per account: a previous account's entries are
	// never inherited.
	ledger := m.loadLedger(ctx, account.ID)
	m.mu.Lock()
	m.ledger = ledger
	m.state = StateAuthenticated
	m.mu.Unlock()
	m.notify()

	m.logger.Info("logged in", zap.Int64("account_id", account.ID))
	return true, nil
}

// resolveAccount maps a login identifier to an account.
func (m *Manager) resolveAccount(ctx context.Context, identifier string) (remote.Account, bool, error) {
	if id, err := strconv.ParseInt(identifier, 10, 64); err == nil && id > 0 {
		account, err := m.remote.GetAccount(ctx, id)
		if err != nil {
			if remote.IsNotFound(err) {
				return remote.Account{}, false, nil
			}
			return remote.Account{}, false, err
		}
		return account, true, nil
	}

	accounts, err := m.remote.ListAccounts(ctx)
	if err != nil {
		return remote.Account{}, false, err
	}
	needle := strings.ToLower(identifier)
	for _, account := range accounts {
		if strings.Contains(strings.ToLower(account.TaxID), needle) ||
			strings.Contains(strings.ToLower(account.Name), needle) {
			return account, true, nil
		}
	}
	return remote.Account{}, false, nil
}

// Logout tears the session down: memory is cleared and the session key is
// removed from the store. The per-account ledger key is kept so the ledger
// reappears on the next login to the same account.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	if m.state == StateAuthenticating || m.state == StateOperating {
		m.mu.Unlock()
		return ErrBusy
	}
	m.lastErr = nil
	m.session = nil
	m.balance = decimal.Zero
	m.ledger = nil
	m.state = StateAnonymous
	m.mu.Unlock()
	m.notify()

	if err := m.store.Remove(ctx, store.SessionKey()); err != nil {
		m.logger.Error("logout: session remove failed", zap.Error(err))
		m.setError(err)
		return store.WrapError(err, m.store.Name(), "logout")
	}
	m.logger.Info("logged out")
	return nil
}

// Deposit credits amount to the active account.
func (m *Manager) Deposit(ctx context.Context, amount decimal.Decimal, description string) error {
	return m.mutate(ctx, KindDeposit, amount, description)
}

// Withdraw debits amount from the active account. The amount must not
// exceed the local balance; this guard never reaches the service, which
// stays authoritative and may still reject.
func (m *Manager) Withdraw(ctx context.Context, amount decimal.Decimal, description string) error {
	return m.mutate(ctx, KindWithdraw, amount, description)
}

// mutate runs a deposit or withdrawal end to end.
func (m *Manager) mutate(ctx context.Context, kind Kind, amount decimal.Decimal, description string) (err error) {
	start := time.Now()
	defer func() {
		m.metrics.RecordOperation(string(kind), err == nil, time.Since(start))
	}()

	accountID, err := m.beginMovement(kind, amount)
	if err != nil {
		return err
	}
	m.notify()

	var account remote.Account
	if kind == KindDeposit {
		account, err = m.remote.Deposit(ctx, accountID, amount)
	} else {
		account, err = m.remote.Withdraw(ctx, accountID, amount)
	}
	if err != nil {
		m.abortMovement(err)
		return err
	}

	if description == "" {
		description = kind.defaultDescription()
	}
	m.commitMovement(ctx, accountID, kind, amount, description, account.Balance)
	return nil
}

// Transfer moves amount to the account named by recipientIdentifier (a
// positive integer id). The recipient's display name is resolved best
// effort; a failed lookup falls back to a generic label and never aborts
// the transfer. The transfer endpoint returns no balance, so the sender's
// account is re-fetched afterward.
func (m *Manager) Transfer(ctx context.Context, amount decimal.Decimal, recipientIdentifier, description string) (err error) {
	start := time.Now()
	defer func() {
		m.metrics.RecordOperation("transfer", err == nil, time.Since(start))
	}()

	accountID, err := m.beginMovement(KindTransfer, amount)
	if err != nil {
		return err
	}
	m.notify()

	recipientID, parseErr := strconv.ParseInt(strings.TrimSpace(recipientIdentifier), 10, 64)
	if parseErr != nil || recipientID <= 0 {
		m.abortMovement(ErrInvalidRecipient)
		return ErrInvalidRecipient
	}

	recipientName := fmt.Sprintf("Account %d", recipientID)
	if recipient, lookupErr := m.remote.GetAccount(ctx, recipientID); lookupErr == nil {
		recipientName = recipient.Name
	} else {
		m.logger.Debug("recipient lookup failed, using generic label",
			zap.Int64("recipient_id", recipientID),
			zap.Error(lookupErr),
		)
	}

	if err = m.remote.Transfer(ctx, accountID, recipientID, amount); err != nil {
		m.abortMovement(err)
		return err
	}

	account, err := m.remote.GetAccount(ctx, accountID)
	if err != nil {
		// The transfer landed but the refreshed balance is unknown; keep
		// the last confirmed value and surface the failure.
		err = fmt.Errorf("bank: transfer completed but balance refresh failed: %w", err)
		m.abortMovement(err)
		return err
	}

	if description == "" {
		description = KindTransfer.defaultDescription()
	}
	description = fmt.Sprintf("%s to %s", description, recipientName)
	m.commitMovement(ctx, accountID, KindTransfer, amount, description, account.Balance)
	return nil
}

// CreateAccount creates an account at the service. It does not open a
// session; callers typically follow it with Login using the returned id.
func (m *Manager) CreateAccount(ctx context.Context, name, taxID string, initialBalance decimal.Decimal) (remote.Account, error) {
	m.mu.Lock()
	m.lastErr = nil
	m.mu.Unlock()

	if strings.TrimSpace(name) == "" {
		m.setError(ErrInvalidName)
		return remote.Account{}, ErrInvalidName
	}
	if !validTaxID(taxID) {
		m.setError(ErrInvalidTaxID)
		return remote.Account{}, ErrInvalidTaxID
	}
	if initialBalance.IsNegative() {
		m.setError(ErrNegativeBalance)
		return remote.Account{}, ErrNegativeBalance
	}

	account, err := m.remote.CreateAccount(ctx, strings.TrimSpace(name), taxID, initialBalance)
	if err != nil {
		m.setError(err)
		return remote.Account{}, err
	}
	m.logger.Info("account created", zap.Int64("account_id", account.ID))
	return account, nil
}

// beginMovement validates a money movement locally and moves the manager
// into StateOperating. Every local failure surfaces before any remote
// call. The previous error is cleared unconditionally, except when the
// call is rejected for overlapping an in-flight operation.
func (m *Manager) beginMovement(kind Kind, amount decimal.Decimal) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateAuthenticating || m.state == StateOperating {
		return 0, ErrBusy
	}
	m.lastErr = nil

	if m.state == StateDegraded {
		return 0, m.failLocked(ErrReadOnly)
	}
	if m.session == nil || m.state != StateAuthenticated {
		return 0, m.failLocked(ErrNotAuthenticated)
	}
	if !money.IsPositive(amount) {
		return 0, m.failLocked(ErrInvalidAmount)
	}
	if kind != KindDeposit && !money.LTE(amount, m.balance) {
		return 0, m.failLocked(ErrInsufficientBalance)
	}

	m.state = StateOperating
	return m.session.AccountID, nil
}

// abortMovement returns to StateAuthenticated with the failure recorded.
// Balance and ledger are untouched; no partial transaction exists.
func (m *Manager) abortMovement(err error) {
	m.mu.Lock()
	m.state = StateAuthenticated
	m.lastErr = err
	m.mu.Unlock()
	m.notify()
}

// commitMovement applies a confirmed movement: the balance becomes the
// value the service returned and exactly one transaction is appended, in
// the same critical section. The ledger is then persisted write-behind
// while still in StateOperating, so no later operation can interleave.
func (m *Manager) commitMovement(ctx context.Context, accountID int64, kind Kind, amount decimal.Decimal, description string, newBalance decimal.Decimal) {
	m.mu.Lock()
	m.balance = newBalance
	tx := Transaction{
		ID:          m.nextTxIDLocked(),
		Kind:        kind,
		Amount:      amount,
		Description: description,
		Timestamp:   time.Now(),
	}
	m.ledger = append([]Transaction{tx}, m.ledger...)
	snapshot := make([]Transaction, len(m.ledger))
	copy(snapshot, m.ledger)
	m.mu.Unlock()

	if err := m.persistLedger(ctx, accountID, snapshot); err != nil {
		// Memory is already updated and stays authoritative for this
		// process; only durability of the newest entry is at risk.
		m.logger.Error("ledger persist failed", zap.Error(err))
		m.setError(err)
	}

	m.mu.Lock()
	m.state = StateAuthenticated
	m.mu.Unlock()
	m.notify()

	m.logger.Info("movement applied",
		zap.String("kind", string(kind)),
		zap.String("amount", money.Format(amount)),
		zap.String("balance", money.Format(newBalance)),
	)
}

// nextTxIDLocked derives a creation-time transaction id, bumped past the
// previous one so ids stay strictly monotonic even within a millisecond.
func (m *Manager) nextTxIDLocked() int64 {
	id := time.Now().UnixMilli()
	if id <= m.lastTxID {
		id = m.lastTxID + 1
	}
	m.lastTxID = id
	return id
}

func (m *Manager) failLocked(err error) error {
	m.lastErr = err
	return err
}

func (m *Manager) setError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

func (m *Manager) notify() {
	if m.onChange != nil {
		m.onChange()
	}
}

// validTaxID reports whether s is an 11-digit numeric string.
func validTaxID(s string) bool {
	if len(s) != 11 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Session returns a copy of the active session, or nil when anonymous.
func (m *Manager) Session() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil
	}
	session := *m.session
	return &session
}

// Balance returns the last balance confirmed by the account service.
func (m *Manager) Balance() decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balance
}

// Ledger returns a copy of the transaction list, newest first.
func (m *Manager) Ledger() []Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	ledger := make([]Transaction, len(m.ledger))
	copy(ledger, m.ledger)
	return ledger
}

// LastError returns the failure of the most recent action, or nil. It is
// cleared at the start of every new action.
func (m *Manager) LastError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// Busy reports whether a login or money movement is in flight.
func (m *Manager) Busy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == StateAuthenticating || m.state == StateOperating
}
