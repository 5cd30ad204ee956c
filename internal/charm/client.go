// ABOUTME: Charm KV client wrapper for daily health log storage.
// ABOUTME: Provides thread-safe initialization and automatic cloud sync.
package charm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/charm/client"
	"github.com/charmbracelet/charm/kv"
)

const (
	// DBName is the Charm KV database holding daily logs.
	DBName = "healthtrends"

	// DefaultHost is the Charm server used when no host is configured.
	DefaultHost = "charm.2389.dev"

	LogPrefix = "daylog:"
)

var errReadOnly = errors.New("cannot write: database is locked by another process (MCP or API server?)")

var (
	globalClient *Client
	clientOnce   sync.Once
	clientErr    error
)

// store is the subset of *kv.KV the client uses.
type store interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Delete(key []byte) error
	Keys() ([][]byte, error)
	Sync() error
	Reset() error
	Close() error
	IsReadOnly() bool
}

type Client struct {
	kv       store
	autoSync bool
	mu       sync.RWMutex
}

func newClient(s store) *Client {
	return &Client{kv: s, autoSync: true}
}

// InitClient initializes the global Charm client against host.
// Thread-safe; can be called multiple times. Only the first host is used.
func InitClient(host string) (*Client, error) {
	clientOnce.Do(func() {
		if host == "" {
			host = DefaultHost
		}
		// Set server before opening KV
		if err := os.Setenv("CHARM_HOST", host); err != nil {
			clientErr = err
			return
		}

		db, err := kv.OpenWithDefaultsFallback(DBName)
		if err != nil {
			clientErr = err
			return
		}

		globalClient = newClient(db)

		// Pull remote data on startup (skip in read-only mode)
		if !db.IsReadOnly() {
			_ = db.Sync()
		}
	})

	return globalClient, clientErr
}

// GetClient returns the global client, initializing against DefaultHost if needed.
func GetClient() (*Client, error) {
	return InitClient("")
}

// Close closes the KV database connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.kv != nil {
		return c.kv.Close()
	}
	return nil
}

// IsReadOnly returns true if the database is open in read-only mode.
// This happens when another process (like an MCP server) holds the lock.
func (c *Client) IsReadOnly() bool {
	return c.kv.IsReadOnly()
}

// Sync synchronizes local state with Charm Cloud.
func (c *Client) Sync() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.kv.IsReadOnly() {
		return nil
	}
	return c.kv.Sync()
}

// syncIfEnabled calls Sync if autoSync is enabled.
func (c *Client) syncIfEnabled() {
	if c.autoSync && !c.kv.IsReadOnly() {
		_ = c.kv.Sync()
	}
}

// SetAutoSync enables or disables automatic sync after writes.
func (c *Client) SetAutoSync(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.autoSync = enabled
}

// ID returns the Charm user ID for the current account.
func (c *Client) ID() (string, error) {
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return "", fmt.Errorf("create charm client: %w", err)
	}
	return cc.ID()
}

// Reset drops the local database and rebuilds it from Charm Cloud.
func (c *Client) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.kv.IsReadOnly() {
		return errReadOnly
	}
	return c.kv.Reset()
}

// update reads key and writes fn's result under one write lock.
// fn receives ok=false when the key is absent.
func (c *Client) update(key string, fn func(existing []byte, ok bool) ([]byte, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.kv.IsReadOnly() {
		return errReadOnly
	}

	existing, ok, err := c.lookup(key)
	if err != nil {
		return err
	}
	data, err := fn(existing, ok)
	if err != nil {
		return err
	}
	if err := c.kv.Set([]byte(key), data); err != nil {
		return err
	}
	c.syncIfEnabled()
	return nil
}

// remove deletes key, reporting ok=false when it was already absent.
func (c *Client) remove(key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.kv.IsReadOnly() {
		return false, errReadOnly
	}

	if _, ok, err := c.lookup(key); err != nil || !ok {
		return false, err
	}
	if err := c.kv.Delete([]byte(key)); err != nil {
		return false, err
	}
	c.syncIfEnabled()
	return true, nil
}

// removeByPrefix deletes every key with the given prefix and syncs once.
func (c *Client) removeByPrefix(prefix string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.kv.IsReadOnly() {
		return 0, errReadOnly
	}

	keys, err := c.kv.Keys()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, key := range keys {
		if !bytes.HasPrefix(key, []byte(prefix)) {
			continue
		}
		if err := c.kv.Delete(key); err != nil {
			return removed, err
		}
		removed++
	}
	if removed > 0 {
		c.syncIfEnabled()
	}
	return removed, nil
}

// listByPrefix returns all values with keys matching the given prefix.
func (c *Client) listByPrefix(prefix string) ([][]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var results [][]byte
	prefixBytes := []byte(prefix)

	keys, err := c.kv.Keys()
	if err != nil {
		return nil, err
	}

	for _, key := range keys {
		if bytes.HasPrefix(key, prefixBytes) {
			val, err := c.kv.Get(key)
			if err != nil {
				return nil, err
			}
			results = append(results, val)
		}
	}

	return results, nil
}

// get returns the value stored at key, or ok=false when the key is absent.
func (c *Client) get(key string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lookup(key)
}

// lookup is get without locking; callers hold c.mu.
func (c *Client) lookup(key string) ([]byte, bool, error) {
	val, err := c.kv.Get([]byte(key))
	if errors.Is(err, kv.ErrMissingKey) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// unmarshalJSON is a helper to unmarshal JSON data.
func unmarshalJSON[T any](data []byte) (*T, error) {
	var result T
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// marshalJSON is a helper to marshal data to JSON.
func marshalJSON(v any) ([]byte, error) {
	return json.Marshal(v)
}
