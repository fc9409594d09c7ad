package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"bank-ledger/pkg/logging"
	"bank-ledger/pkg/money"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewClient(Config{
		BaseURL: server.URL,
		Logger:  logging.NewNop(),
	})
	return client, server
}

func TestClient_GetAccount(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Expected GET, got %s", r.Method)
		}
		if r.URL.Path != "/api/contas/42" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":42,"nome":"Alice","cpf":"11122233344","saldo":10.5}`))
	}))

	account, err := client.GetAccount(context.Background(), 42)
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if account.ID != 42 || account.Name != "Alice" || account.TaxID != "11122233344" {
		t.Errorf("Unexpected account %+v", account)
	}
	if got := money.Format(account.Balance); got != "10.50" {
		t.Errorf("Expected balance 10.50, got %s", got)
	}
}

func TestClient_ListAccounts(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/contas" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`[{"id":1,"nome":"A","cpf":"1","saldo":1},{"id":2,"nome":"B","cpf":"2","saldo":2}]`))
	}))

	accounts, err := client.ListAccounts(context.Background())
	if err != nil {
		t.Fatalf("ListAccounts failed: %v", err)
	}
	if len(accounts) != 2 || accounts[0].ID != 1 || accounts[1].Name != "B" {
		t.Errorf("Unexpected accounts %+v", accounts)
	}
}

func TestClient_CreateAccount(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/contas" {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("Bad request body: %v", err)
		}
		for _, field := range []string{"nome", "cpf", "saldo"} {
			if _, ok := body[field]; !ok {
				t.Errorf("Request body missing %q", field)
			}
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":7,"nome":"Alice","cpf":"11122233344","saldo":100}`))
	}))

	account, err := client.CreateAccount(context.Background(), "Alice", "11122233344", money.FromFloat(100))
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	if account.ID != 7 {
		t.Errorf("Expected id 7, got %d", account.ID)
	}
}

func TestClient_DepositAndWithdrawPaths(t *testing.T) {
	tests := []struct {
		name     string
		call     func(c *Client) error
		wantPath string
	}{
		{
			name: "deposit",
			call: func(c *Client) error {
				_, err := c.Deposit(context.Background(), 3, money.FromFloat(10))
				return err
			},
			wantPath: "/api/contas/3/deposito",
		},
		{
			name: "withdraw",
			call: func(c *Client) error {
				_, err := c.Withdraw(context.Background(), 3, money.FromFloat(10))
				return err
			},
			wantPath: "/api/contas/3/saque",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath string
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				var body map[string]json.Number
				if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
					t.Fatalf("Bad request body: %v", err)
				}
				if body["valor"].String() != "10" {
					t.Errorf("Expected valor 10, got %s", body["valor"])
				}
				w.Write([]byte(`{"id":3,"nome":"A","cpf":"1","saldo":90}`))
			}))

			if err := tt.call(client); err != nil {
				t.Fatalf("Call failed: %v", err)
			}
			if gotPath != tt.wantPath {
				t.Errorf("Expected path %s, got %s", tt.wantPath, gotPath)
			}
		})
	}
}

func TestClient_Transfer(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/contas/transferencia" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		var body map[string]json.Number
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("Bad request body: %v", err)
		}
		if body["contaOrigemId"].String() != "1" || body["contaDestinoId"].String() != "2" {
			t.Errorf("Unexpected transfer body %+v", body)
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	if err := client.Transfer(context.Background(), 1, 2, money.FromFloat(5)); err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}
}

func TestClient_DeleteAccount(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("Expected DELETE, got %s", r.Method)
		}
		if r.URL.Path != "/api/contas/42" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	if err := client.DeleteAccount(context.Background(), 42); err != nil {
		t.Fatalf("DeleteAccount failed: %v", err)
	}

	client, _ = newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"mensagem":"Conta não encontrada"}`))
	}))

	err := client.DeleteAccount(context.Background(), 99)
	if !IsNotFound(err) {
		t.Fatalf("Expected not-found error, got %v", err)
	}
}

func TestClient_ErrorDecoding(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{
			name:        "service message",
			status:      400,
			body:        `{"mensagem":"Saldo insuficiente"}`,
			wantMessage: "Saldo insuficiente",
		},
		{
			name:        "empty message field",
			status:      500,
			body:        `{"mensagem":""}`,
			wantMessage: genericErrorMessage,
		},
		{
			name:        "garbage body",
			status:      502,
			body:        `<html>bad gateway</html>`,
			wantMessage: genericErrorMessage,
		},
		{
			name:        "empty body",
			status:      500,
			body:        "",
			wantMessage: genericErrorMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))

			_, err := client.GetAccount(context.Background(), 1)
			if err == nil {
				t.Fatal("Expected an error")
			}
			apiErr, ok := AsError(err)
			if !ok {
				t.Fatalf("Expected *Error, got %T: %v", err, err)
			}
			if apiErr.StatusCode != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, apiErr.StatusCode)
			}
			if apiErr.Message != tt.wantMessage {
				t.Errorf("Expected message %q, got %q", tt.wantMessage, apiErr.Message)
			}
		})
	}
}

func TestClient_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := NewClient(Config{BaseURL: url, Logger: logging.NewNop()})
	_, err := client.GetAccount(context.Background(), 1)
	if err == nil {
		t.Fatal("Expected a transport error")
	}
	if _, ok := AsError(err); ok {
		t.Errorf("Transport failure must not be a typed service error: %v", err)
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(&Error{StatusCode: 404, Message: "x"}) {
		t.Error("Expected 404 to be not-found")
	}
	if IsNotFound(&Error{StatusCode: 500, Message: "x"}) {
		t.Error("500 must not be not-found")
	}
	if IsNotFound(errors.New("other")) {
		t.Error("Plain errors must not be not-found")
	}
}

func TestClient_BasePathOverride(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"id":1,"nome":"A","cpf":"1","saldo":0}`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL + "/", BasePath: "/v1", Logger: logging.NewNop()})
	if _, err := client.GetAccount(context.Background(), 1); err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if gotPath != "/v1/contas/1" {
		t.Errorf("Expected /v1/contas/1, got %s", gotPath)
	}
}
