// Package store implements warchest's local durable storage: a BadgerDB
// key-value store holding one JSON blob per domain entity, plus a SQLite
// archive for locally generated content history.
//
// The KV layer uses fixed string keys with whole-record JSON values.
// Malformed stored JSON is treated as absent, never surfaced as an error.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

// Fixed entity keys. One blob per key; values are JSON-serialized records.
const (
	KeyDNA      = "warchest_dna"
	KeyBriefing = "warchest_briefing"
	KeyAssets   = "warchest_assets"
	KeyPolling  = "warchest_polling"
	KeyIntel    = "warchest_intel"
	KeyTasks    = "warchest_tasks"
	KeySocial   = "warchest_social_accounts"

	// Session keys owned by the remote gateway.
	KeyAuthToken = "auth_token"
	KeyUserInfo  = "user_info"
)

// Config holds options for opening a Local store.
type Config struct {
	// Path is the directory for the Badger files. Ignored when InMemory.
	Path string

	// InMemory opens a non-persistent store. Used by tests.
	InMemory bool

	// Logger receives store-level diagnostics. Defaults to a no-op.
	Logger *zap.Logger
}

// Local is a durable single-user key-value store shared by every entity.
// Safe for concurrent use.
type Local struct {
	db     *badger.DB
	logger *zap.Logger
}

// badgerLogger adapts zap to Badger's internal logger interface.
type badgerLogger struct {
	logger *zap.SugaredLogger
}

func (l badgerLogger) Errorf(format string, args ...interface{})   { l.logger.Errorf(format, args...) }
func (l badgerLogger) Warningf(format string, args ...interface{}) { l.logger.Warnf(format, args...) }
func (l badgerLogger) Infof(format string, args ...interface{})    { l.logger.Debugf(format, args...) }
func (l badgerLogger) Debugf(format string, args ...interface{})   { l.logger.Debugf(format, args...) }

// Open creates or opens a Local store.
func Open(cfg Config) (*Local, error) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, errors.New("store: path is required for a persistent store")
		}
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("store: create data directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path).WithSyncWrites(true)
	}
	opts = opts.WithLogger(badgerLogger{logger: cfg.Logger.Sugar()})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("store: open badger: %w", err)
	}
	return &Local{db: db, logger: cfg.Logger}, nil
}

// Close releases the underlying database.
func (l *Local) Close() error {
	return l.db.Close()
}

// GetRaw returns the raw bytes stored under key. The second return is false
// when the key is absent.
func (l *Local) GetRaw(key string) ([]byte, bool, error) {
	var val []byte
	err := l.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store: get %s: %w", key, err)
	}
	return val, true, nil
}

// PutRaw stores val under key, replacing any prior value.
func (l *Local) PutRaw(key string, val []byte) error {
	err := l.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), val)
	})
	if err != nil {
		return fmt.Errorf("store: put %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (l *Local) Delete(key string) error {
	err := l.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("store: delete %s: %w", key, err)
	}
	return nil
}

// GetJSON decodes the record stored under key into v. A missing key returns
// (false, nil). A record that fails to parse is treated as absent: it is
// logged and reported as (false, nil), never as an error.
func (l *Local) GetJSON(key string, v any) (bool, error) {
	raw, ok, err := l.GetRaw(key)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		l.logger.Warn("discarding malformed stored record",
			zap.String("key", key), zap.Error(err))
		return false, nil
	}
	return true, nil
}

// PutJSON serializes v and stores it under key.
func (l *Local) PutJSON(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store: marshal %s: %w", key, err)
	}
	return l.PutRaw(key, raw)
}

// GetString returns the string stored under key, or "" when absent.
// Used for the session token and user-info keys.
func (l *Local) GetString(key string) (string, error) {
	raw, ok, err := l.GetRaw(key)
	if err != nil || !ok {
		return "", err
	}
	return string(raw), nil
}

// PutString stores s under key.
func (l *Local) PutString(key, s string) error {
	return l.PutRaw(key, []byte(s))
}
