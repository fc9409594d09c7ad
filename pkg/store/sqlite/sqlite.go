// Package sqlite provides a sqlite-backed durable store. It is the default
// durable layer for a single-device client: one file, no server to run.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"bank-ledger/pkg/store"
)

// entry is the key/value row schema.
type entry struct {
	Key       string `gorm:"primaryKey;column:key"`
	Value     string `gorm:"column:value"`
	UpdatedAt time.Time
}

func (entry) TableName() string {
	return "kv_entries"
}

// SQLiteStore persists key/value pairs in a sqlite database file.
type SQLiteStore struct {
	db   *gorm.DB
	name string
}

// NewSQLiteStore opens (or creates) the database at path and migrates the
// key/value schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Discard,
	})
	if err != nil {
		return nil, fmt.Errorf("sqlite store: open %s: %w", path, err)
	}
	if err := db.AutoMigrate(&entry{}); err != nil {
		return nil, fmt.Errorf("sqlite store: migrate: %w", err)
	}
	return &SQLiteStore{db: db, name: "sqlite"}, nil
}

// Get retrieves the value for key, or store.ErrKeyNotFound when absent.
func (s *SQLiteStore) Get(ctx context.Context, key string) (string, error) {
	if err := store.ValidateKey(key); err != nil {
		return "", err
	}

	var e entry
	err := s.db.WithContext(ctx).First(&e, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", store.ErrKeyNotFound
	}
	if err != nil {
		return "", store.WrapError(err, s.name, "get")
	}
	return e.Value, nil
}

// Set stores value under key, inserting or updating the row.
func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	if err := store.ValidateKey(key); err != nil {
		return err
	}

	e := entry{Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).Save(&e).Error
	if err != nil {
		return store.WrapError(err, s.name, "set")
	}
	return nil
}

// Remove deletes key. Absent keys are not an error.
func (s *SQLiteStore) Remove(ctx context.Context, key string) error {
	if err := store.ValidateKey(key); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Delete(&entry{}, "key = ?", key).Error
	if err != nil {
		return store.WrapError(err, s.name, "remove")
	}
	return nil
}

// Keys returns all stored keys.
func (s *SQLiteStore) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	err := s.db.WithContext(ctx).Model(&entry{}).Pluck("key", &keys).Error
	if err != nil {
		return nil, store.WrapError(err, s.name, "keys")
	}
	return keys, nil
}

// Name returns the store identifier.
func (s *SQLiteStore) Name() string {
	return s.name
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
