// ABOUTME: Charm KV backend client for wander records
// ABOUTME: Opens the database per operation so the CLI and the MCP server can share it

package charm

import (
	"fmt"
	"os"

	"github.com/charmbracelet/charm/kv"
)

const (
	// DBName is the name of the Charm KV database for wander data.
	DBName = "wander"

	// DefaultCharmHost is the default Charm server to use.
	DefaultCharmHost = "charm.2389.dev"

	// keySeparator joins a collection name and record id into a key.
	keySeparator = ":"
)

// Client is a storage backend over Charm KV. It holds no open connection;
// every call opens the database, runs one session and closes it again.
type Client struct {
	dbName   string
	autoSync bool
}

// Config holds client configuration options.
type Config struct {
	// CharmHost is the Charm server used for sync. Empty means CHARM_HOST or the default.
	CharmHost string
	// AutoSync pushes to the server after every write session.
	AutoSync bool
}

// NewClient creates a client for the wander database.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = &Config{AutoSync: true}
	}
	host := cfg.CharmHost
	if host == "" {
		host = os.Getenv("CHARM_HOST")
	}
	if host == "" {
		host = DefaultCharmHost
	}

	// kv reads the host from the environment when it first connects.
	if err := os.Setenv("CHARM_HOST", host); err != nil {
		return nil, fmt.Errorf("set charm host: %w", err)
	}

	return &Client{dbName: DBName, autoSync: cfg.AutoSync}, nil
}

// NewTestClient creates a client on its own database without network sync.
func NewTestClient(dbName string) (*Client, error) {
	return &Client{dbName: dbName}, nil
}

// read runs fn in a read-only session, which takes no write lock.
func (c *Client) read(fn func(k *kv.KV) error) error {
	return kv.DoReadOnly(c.dbName, fn)
}

// write runs fn in a write session and syncs afterwards when enabled.
func (c *Client) write(fn func(k *kv.KV) error) error {
	return kv.Do(c.dbName, func(k *kv.KV) error {
		if err := fn(k); err != nil {
			return err
		}
		if c.autoSync {
			return k.Sync()
		}
		return nil
	})
}

// Sync pushes and pulls with the charm server.
func (c *Client) Sync() error {
	return kv.Do(c.dbName, func(k *kv.KV) error {
		return k.Sync()
	})
}

// Close is a no-op; sessions close themselves.
func (c *Client) Close() error {
	return nil
}

// IsReadOnly reports false: every write opens its own short-lived
// connection, so lock contention surfaces as a write error instead.
func (c *Client) IsReadOnly() bool {
	return false
}
