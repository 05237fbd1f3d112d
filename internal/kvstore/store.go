// Package kvstore persists JSON values under string keys. The clock only
// needs get/set of whole documents, so every backend stores a value as one
// JSON blob.
package kvstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"regexp"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// DefaultSQLiteFile is the database file name inside the data directory.
const DefaultSQLiteFile = "pomodoro.db"

var (
	ErrInvalidKey     = errors.New("invalid key")
	ErrUnknownBackend = errors.New("unknown store backend")
	ErrClosed         = errors.New("store closed")
)

// Store is a JSON key-value store. It satisfies pomodoro.Store.
type Store interface {
	GetJSON(ctx context.Context, key string, v any) (found bool, err error)
	SetJSON(ctx context.Context, key string, v any) error
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Backend string
	DataDir string
	// SQLitePath overrides DataDir/pomodoro.db.
	SQLitePath string
	Logger     *slog.Logger
}

// Open returns the configured backend. An empty backend means file.
func Open(opts Options) (Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	switch opts.Backend {
	case "", BackendFile:
		return NewFileStore(opts.DataDir, logger)
	case BackendSQLite:
		path := opts.SQLitePath
		if path == "" {
			path = filepath.Join(opts.DataDir, DefaultSQLiteFile)
		}
		return OpenSQLite(path)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,128}$`)

// ValidateKey rejects keys that could escape a directory or clash with the
// file store's own suffixes.
func ValidateKey(key string) error {
	if !keyPattern.MatchString(key) || key[0] == '.' {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
