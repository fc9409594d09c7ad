// Package file provides a JSON-file-backed durable store. The whole map is
// loaded at open and rewritten on every mutation using a temp file plus
// rename, so a crash mid-write never corrupts the previous snapshot.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"bank-ledger/pkg/store"
)

// FileStore persists a string map as one JSON document on disk.
type FileStore struct {
	mu   sync.Mutex
	path string
	data map[string]string
	name string
}

// NewFileStore opens (or creates) the store at path.
func NewFileStore(path string) (*FileStore, error) {
	fs := &FileStore{
		path: path,
		data: make(map[string]string),
		name: "file",
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fs, nil
		}
		return nil, fmt.Errorf("file store: open %s: %w", path, err)
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(&fs.data); err != nil {
		return nil, fmt.Errorf("file store: decode %s: %w", path, err)
	}
	return fs, nil
}

// Get retrieves the value for key, or store.ErrKeyNotFound when absent.
func (fs *FileStore) Get(ctx context.Context, key string) (string, error) {
	if err := store.ValidateKey(key); err != nil {
		return "", err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	value, ok := fs.data[key]
	if !ok {
		return "", store.ErrKeyNotFound
	}
	return value, nil
}

// Set stores value under key and flushes the snapshot to disk.
func (fs *FileStore) Set(ctx context.Context, key, value string) error {
	if err := store.ValidateKey(key); err != nil {
		return err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.data[key] = value
	return fs.flush()
}

// Remove deletes key and flushes the snapshot to disk.
func (fs *FileStore) Remove(ctx context.Context, key string) error {
	if err := store.ValidateKey(key); err != nil {
		return err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	if _, ok := fs.data[key]; !ok {
		return nil
	}
	delete(fs.data, key)
	return fs.flush()
}

// Keys returns all stored keys.
func (fs *FileStore) Keys(ctx context.Context) ([]string, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	keys := make([]string, 0, len(fs.data))
	for k := range fs.data {
		keys = append(keys, k)
	}
	return keys, nil
}

// flush writes the snapshot atomically: temp file in the same directory,
// then rename over the target. Caller holds fs.mu.
func (fs *FileStore) flush() error {
	dir := filepath.Dir(fs.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(fs.path)+".tmp")
	if err != nil {
		return fmt.Errorf("file store: create temp: %w", err)
	}

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(fs.data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("file store: encode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("file store: close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), fs.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("file store: rename: %w", err)
	}
	return nil
}

// Name returns the store identifier.
func (fs *FileStore) Name() string {
	return fs.name
}

// Close is a no-op; every mutation is already flushed.
func (fs *FileStore) Close() error {
	return nil
}
