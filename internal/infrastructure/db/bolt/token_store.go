// Package bolt persists client state in a local bbolt file.
package bolt

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/superdelivery/storefront/internal/core/ports"
)

const openTimeout = time.Second

var bucket = []byte("storefront")

// TokenStore keeps the bearer credential in a bbolt database.
type TokenStore struct {
	db *bolt.DB
}

var _ ports.TokenStore = (*TokenStore)(nil)

// Open opens (or creates) the database at path and ensures the bucket exists.
func Open(path string) (*TokenStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("bolt: create dir: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("bolt: open %s: %w", path, err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bolt: create bucket: %w", err)
	}

	return &TokenStore{db: db}, nil
}

// Close releases the database file lock.
func (s *TokenStore) Close() error {
	return s.db.Close()
}

func (s *TokenStore) Load(context.Context) (string, error) {
	var token string
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucket).Get([]byte(ports.TokenKey)); v != nil {
			token = string(v)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}
	return token, nil
}

func (s *TokenStore) Save(_ context.Context, token string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(ports.TokenKey), []byte(token))
	})
	if err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

func (s *TokenStore) Delete(context.Context) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Delete([]byte(ports.TokenKey))
	})
	if err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}
