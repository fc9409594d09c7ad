// Package remote is the HTTP JSON client for the remote account service,
// the system of record for accounts and money movement. Each operation
// issues exactly one request and either returns a typed result or an
// *Error; there are no retries and no client-imposed timeout beyond what
// the injected http.Client provides.
//
// The wire protocol uses Portuguese field names (id, nome, cpf, saldo,
// valor, mensagem); they are mapped to typed Go values here so nothing
// downstream handles raw JSON.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bank-ledger/pkg/logging"
	"bank-ledger/pkg/metrics"
)

// Account is the typed view of one remote account.
type Account struct {
	ID      int64
	Name    string
	TaxID   string
	Balance decimal.Decimal
}

// wireAccount is the service's JSON shape for an account.
type wireAccount struct {
	ID    int64           `json:"id"`
	Nome  string          `json:"nome"`
	CPF   string          `json:"cpf"`
	Saldo decimal.Decimal `json:"saldo"`
}

func (w wireAccount) account() Account {
	return Account{
		ID:      w.ID,
		Name:    w.Nome,
		TaxID:   w.CPF,
		Balance: w.Saldo.Round(2),
	}
}

// Config holds client settings.
type Config struct {
	// BaseURL is the service origin, e.g. "http://localhost:8081".
	BaseURL string

	// BasePath is prepended to every endpoint (default "/api").
	BasePath string

	// HTTPClient defaults to http.DefaultClient. Set a client with a
	// Timeout to bound calls; the package itself imposes none.
	HTTPClient *http.Client

	// Logger defaults to the process global.
	Logger *logging.Logger

	// Metrics receives per-call instrumentation. Defaults to no-op.
	Metrics metrics.Collector
}

// Client talks to the remote account service.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *logging.Logger
	metrics metrics.Collector
}

// NewClient builds a client from config.
func NewClient(config Config) *Client {
	basePath := config.BasePath
	if basePath == "" {
		basePath = "/api"
	}
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := config.Logger
	if logger == nil {
		logger = logging.L()
	}
	collector := config.Metrics
	if collector == nil {
		collector = metrics.NoOpCollector{}
	}

	return &Client{
		baseURL: strings.TrimRight(config.BaseURL, "/") + basePath,
		http:    httpClient,
		logger:  logger.Named("remote"),
		metrics: collector,
	}
}

// GetAccount fetches one account by id.
func (c *Client) GetAccount(ctx context.Context, id int64) (Account, error) {
	var w wireAccount
	if err := c.do(ctx, "get_account", http.MethodGet, fmt.Sprintf("/contas/%d", id), nil, &w); err != nil {
		return Account{}, err
	}
	return w.account(), nil
}

// ListAccounts fetches every account.
func (c *Client) ListAccounts(ctx context.Context) ([]Account, error) {
	var ws []wireAccount
	if err := c.do(ctx, "list_accounts", http.MethodGet, "/contas", nil, &ws); err != nil {
		return nil, err
	}
	accounts := make([]Account, len(ws))
	for i, w := range ws {
		accounts[i] = w.account()
	}
	return accounts, nil
}

// CreateAccount creates an account and returns the created record.
func (c *Client) CreateAccount(ctx context.Context, name, taxID string, initialBalance decimal.Decimal) (Account, error) {
	body := map[string]interface{}{
		"nome":  name,
		"cpf":   taxID,
		"saldo": initialBalance,
	}
	var w wireAccount
	if err := c.do(ctx, "create_account", http.MethodPost, "/contas", body, &w); err != nil {
		return Account{}, err
	}
	return w.account(), nil
}

// Deposit credits amount to the account and returns its updated record.
func (c *Client) Deposit(ctx context.Context, id int64, amount decimal.Decimal) (Account, error) {
	body := map[string]interface{}{"valor": amount}
	var w wireAccount
	if err := c.do(ctx, "deposit", http.MethodPost, fmt.Sprintf("/contas/%d/deposito", id), body, &w); err != nil {
		return Account{}, err
	}
	return w.account(), nil
}

// Withdraw debits amount from the account and returns its updated record.
func (c *Client) Withdraw(ctx context.Context, id int64, amount decimal.Decimal) (Account, error) {
	body := map[string]interface{}{"valor": amount}
	var w wireAccount
	if err := c.do(ctx, "withdraw", http.MethodPost, fmt.Sprintf("/contas/%d/saque", id), body, &w); err != nil {
		return Account{}, err
	}
	return w.account(), nil
}

// Transfer moves amount between two accounts. The endpoint does not return
// the sender's updated balance; callers re-fetch it with GetAccount.
func (c *Client) Transfer(ctx context.Context, fromID, toID int64, amount decimal.Decimal) error {
	body := map[string]interface{}{
		"contaOrigemId":  fromID,
		"contaDestinoId": toID,
		"valor":          amount,
	}
	return c.do(ctx, "transfer", http.MethodPost, "/contas/transferencia", body, nil)
}

// DeleteAccount removes an account by id.
func (c *Client) DeleteAccount(ctx context.Context, id int64) error {
	return c.do(ctx, "delete_account", http.MethodDelete, fmt.Sprintf("/contas/%d", id), nil, nil)
}

// do executes one request and decodes the response into out (when non-nil).
func (c *Client) do(ctx context.Context, op, method, path string, body, out interface{}) error {
	requestID := uuid.NewString()
	start := time.Now()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("remote: encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("remote: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.RecordRemoteCall(op, 0, time.Since(start))
		c.logger.Debug("request failed",
			zap.String("request_id", requestID),
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return fmt.Errorf("remote: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	duration := time.Since(start)
	c.metrics.RecordRemoteCall(op, resp.StatusCode, duration)
	c.logger.Debug("request completed",
		zap.String("request_id", requestID),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", duration),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{
			StatusCode: resp.StatusCode,
			Message:    decodeErrorMessage(resp.Body),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("remote: decode response: %w", err)
	}
	return nil
}

// decodeErrorMessage extracts the service's {mensagem} error text, falling
// back to a generic message when the body is absent or unparsable.
func decodeErrorMessage(body io.Reader) string {
	var payload struct {
		Mensagem string `json:"mensagem"`
	}
	if err := json.NewDecoder(body).Decode(&payload); err != nil || payload.Mensagem == "" {
		return genericErrorMessage
	}
	return payload.Mensagem
}
