// Package kv provides the key-value persistence adapter behind the rule
// store. Backends must tolerate absent keys and never surface malformed
// content as a fatal error to the caller.
package kv

import "fmt"

// Store is the persistence contract. Get reports absence through the second
// return value rather than an error.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	// Durable reports whether values survive process restarts. Demo seeding
	// only runs against durable backends.
	Durable() bool
	Close() error
}

// Config selects and parameterizes the persistence backend.
type Config struct {
	// Backend is one of "memory", "file" or "sqlite".
	Backend string `json:"backend"`
	// Path locates the file or database for durable backends.
	Path string `json:"path"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "file"
	}
	if c.Path == "" {
		c.Path = "autobid.json"
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	switch c.Backend {
	case "memory":
		return nil
	case "file", "sqlite":
		if c.Path == "" {
			return fmt.Errorf("kv: path is required for backend %s", c.Backend)
		}
		return nil
	default:
		return fmt.Errorf("kv: unknown backend %s", c.Backend)
	}
}

// Open constructs the configured backend.
func Open(cfg Config) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case "memory":
		return NewMemory(), nil
	case "file":
		return NewFileStore(cfg.Path)
	case "sqlite":
		return NewSQLiteStore(cfg.Path)
	default:
		return nil, fmt.Errorf("kv: unknown backend %s", cfg.Backend)
	}
}
