// Package cache provides best-effort counters for rate limiting and
// attempt tracking, backed by an embedded badger store. Every caller must
// tolerate a disabled or failing cache: when counting is unavailable the
// product keeps working without limits rather than failing closed.
package cache

import (
	"errors"
	"log/slog"
	"strconv"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

type Cache struct {
	db *badger.DB
}

// New opens (or creates) the counter store at dir. On failure a disabled
// cache is returned alongside the error so callers can keep the nil-safe
// handle and degrade gracefully.
func New(dir string) (*Cache, error) {
	opts := badger.DefaultOptions(dir).
		WithLogger(nil).
		WithNumVersionsToKeep(1)
	db, err := badger.Open(opts)
	if err != nil {
		return &Cache{}, err
	}
	return &Cache{db: db}, nil
}

// NewInMemory opens a volatile store, used in tests.
func NewInMemory() (*Cache, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return &Cache{}, err
	}
	return &Cache{db: db}, nil
}

// Enabled reports whether the underlying store opened successfully.
func (c *Cache) Enabled() bool {
	return c != nil && c.db != nil
}

// Incr increments the counter at key and returns the new value. The TTL is
// set when the key is first created and preserved on subsequent increments,
// giving a fixed window per key.
func (c *Cache) Incr(key string, ttl time.Duration) (int64, error) {
	if !c.Enabled() {
		return 0, nil
	}

	var n int64
	err := c.db.Update(func(txn *badger.Txn) error {
		remaining := ttl
		item, err := txn.Get([]byte(key))
		switch {
		case err == nil:
			if err := item.Value(func(val []byte) error {
				n, _ = strconv.ParseInt(string(val), 10, 64)
				return nil
			}); err != nil {
				return err
			}
			if exp := item.ExpiresAt(); exp > 0 {
				remaining = time.Until(time.Unix(int64(exp), 0))
				if remaining <= 0 {
					n = 0
					remaining = ttl
				}
			}
		case errors.Is(err, badger.ErrKeyNotFound):
			n = 0
		default:
			return err
		}

		n++
		entry := badger.NewEntry([]byte(key), []byte(strconv.FormatInt(n, 10))).WithTTL(remaining)
		return txn.SetEntry(entry)
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Get returns the current counter value, or 0 when absent or on error.
func (c *Cache) Get(key string) int64 {
	if !c.Enabled() {
		return 0
	}

	var n int64
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			n, _ = strconv.ParseInt(string(val), 10, 64)
			return nil
		})
	})
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		slog.Warn("cache read failed", "key", key, "error", err)
	}
	return n
}

// Delete removes a counter. Used when an attempt window should reset early,
// for example after a successful login.
func (c *Cache) Delete(key string) {
	if !c.Enabled() {
		return
	}
	if err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	}); err != nil {
		slog.Warn("cache delete failed", "key", key, "error", err)
	}
}

// Close releases the underlying store.
func (c *Cache) Close() {
	if c.Enabled() {
		_ = c.db.Close()
	}
}
