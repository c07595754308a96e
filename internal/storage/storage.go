// Package storage persists the widget's current session id.
// Backends: in-memory, a YAML key file, SQLite and Redis. All of them hold a
// single slot under SessionKey plus the handoff flag of that session under
// HandoffKey.
package storage

import (
	"fmt"
	"strings"

	"hainzelman/pkg/widgettypes"
)

// SessionKey is the key under which the current session id is stored.
const SessionKey = "HAINZELMAN_CHAT_ID"

// HandoffKey is the key of the handoff flag of the stored session.
const HandoffKey = "HAINZELMAN_HANDOFF"

// handoffValue marks an active handoff; an absent key means none.
const handoffValue = "true"

// Driver names accepted by Open.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// Config selects and configures a backend.
type Config struct {
	Driver    string
	Path      string // file and sqlite backends
	RedisAddr string
	// Namespace separates widget instances sharing one backend. Empty means SessionKey only.
	Namespace string
}

// Open creates the backend described by cfg.
func Open(cfg Config) (widgettypes.SessionStore, error) {
	key := Key(cfg.Namespace)
	switch strings.ToLower(cfg.Driver) {
	case "", DriverFile:
		if cfg.Path == "" {
			return nil, fmt.Errorf("file storage requires a path")
		}
		return NewFile(cfg.Path, key), nil
	case DriverMemory:
		return NewMemory(), nil
	case DriverSQLite:
		if cfg.Path == "" {
			return nil, fmt.Errorf("sqlite storage requires a path")
		}
		return NewSQLite(cfg.Path, key)
	case DriverRedis:
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("redis storage requires an address")
		}
		return NewRedis(cfg.RedisAddr, key), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// handoffKey derives the handoff flag key from a session key, keeping the namespace.
func handoffKey(key string) string {
	return HandoffKey + strings.TrimPrefix(key, SessionKey)
}

// Key returns the storage key for a namespace.
func Key(namespace string) string {
	if namespace == "" {
		return SessionKey
	}
	return SessionKey + ":" + namespace
}
