// Package postgres provides a postgres-backed store for deployments where
// the client state should live in a shared database rather than on the
// device.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"bank-ledger/pkg/store"
)

// PostgresStore satisfies store.Store on top of a key/value table.
type PostgresStore struct {
	db   *sql.DB
	name string
}

// Config holds postgres connection configuration.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// DefaultConfig returns settings for a local postgres instance.
func DefaultConfig() Config {
	return Config{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "postgres",
		Database: "bank_client",
		SSLMode:  "disable",
	}
}

// NewPostgresStore connects, pings and creates the key/value table.
func NewPostgresStore(cfg Config) (*PostgresStore, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("postgres store: open: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres store: ping: %w", err)
	}

	query := `CREATE TABLE IF NOT EXISTS kv_entries (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMP WITH TIME ZONE NOT NULL
	)`
	if _, err := db.ExecContext(ctx, query); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres store: init table: %w", err)
	}

	return &PostgresStore{db: db, name: "postgres"}, nil
}

// Get retrieves the value for key, or store.ErrKeyNotFound when absent.
func (p *PostgresStore) Get(ctx context.Context, key string) (string, error) {
	if err := store.ValidateKey(key); err != nil {
		return "", err
	}

	var value string
	err := p.db.QueryRowContext(ctx,
		`SELECT value FROM kv_entries WHERE key = $1`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", store.ErrKeyNotFound
	}
	if err != nil {
		return "", store.WrapError(err, p.name, "get")
	}
	return value, nil
}

// Set stores value under key with an upsert.
func (p *PostgresStore) Set(ctx context.Context, key, value string) error {
	if err := store.ValidateKey(key); err != nil {
		return err
	}

	_, err := p.db.ExecContext(ctx,
		`INSERT INTO kv_entries (key, value, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (key) DO UPDATE SET value = $2, updated_at = $3`,
		key, value, time.Now())
	if err != nil {
		return store.WrapError(err, p.name, "set")
	}
	return nil
}

// Remove deletes key. Absent keys are not an error.
func (p *PostgresStore) Remove(ctx context.Context, key string) error {
	if err := store.ValidateKey(key); err != nil {
		return err
	}

	_, err := p.db.ExecContext(ctx, `DELETE FROM kv_entries WHERE key = $1`, key)
	if err != nil {
		return store.WrapError(err, p.name, "remove")
	}
	return nil
}

// Keys returns all stored keys.
func (p *PostgresStore) Keys(ctx context.Context) ([]string, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT key FROM kv_entries`)
	if err != nil {
		return nil, store.WrapError(err, p.name, "keys")
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, store.WrapError(err, p.name, "keys")
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Name returns the store identifier.
func (p *PostgresStore) Name() string {
	return p.name
}

// Close closes the database connection pool.
func (p *PostgresStore) Close() error {
	return p.db.Close()
}
