package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// KVRepository stores string values by key in the storage table.
type KVRepository struct {
	db *sql.DB
}

// NewKVRepository creates a new [KVRepository] with the given database connection
func NewKVRepository(db *sql.DB) *KVRepository {
	return &KVRepository{db: db}
}

// Get returns the value stored under key. The boolean is false when the key is absent.
func (r *KVRepository) Get(key string) (string, bool, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM storage WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read key %s: %w", key, err)
	}
	return value, true, nil
}

// Set writes value under key, replacing any previous value.
func (r *KVRepository) Set(key, value string) error {
	query := `
		INSERT INTO storage (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`

	if _, err := r.db.Exec(query, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}
	return nil
}

// Delete removes the given keys. Missing keys are not an error.
func (r *KVRepository) Delete(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	return withTx(r.db, func(tx *sql.Tx) error {
		for _, key := range keys {
			if _, err := tx.Exec(`DELETE FROM storage WHERE key = ?`, key); err != nil {
				return fmt.Errorf("failed to delete key %s: %w", key, err)
			}
		}
		return nil
	})
}

// Keys lists stored keys starting with prefix in lexical order.
func (r *KVRepository) Keys(prefix string) ([]string, error) {
	query := `SELECT key FROM storage WHERE substr(key, 1, ?) = ? ORDER BY key ASC`

	rows, err := r.db.Query(query, len(prefix), prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to query keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return keys, nil
}
