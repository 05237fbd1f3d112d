package kvstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"pomodoro/internal/fsutil"
)

// FileStore keeps each key in DataDir/<key>.json. Writes are atomic and the
// previous content is kept as <key>.json.bak, which is used to recover from a
// damaged file.
type FileStore struct {
	dir    string
	logger *slog.Logger
	now    func() time.Time

	mu     sync.Mutex
	closed bool
}

// NewFileStore creates dir if needed.
func NewFileStore(dir string, logger *slog.Logger) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("file store: data directory is required")
	}
	if err := os.MkdirAll(dir, fsutil.DirPerm); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &FileStore{dir: dir, logger: logger, now: time.Now}, nil
}

// Dir returns the data directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// Path returns the file that holds key.
func (s *FileStore) Path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// GetJSON decodes the value stored under key into v.
//
// A file that is empty or does not parse is moved aside. If the backup
// decodes, it is used and written back; otherwise the key reads as absent so
// the caller falls back to its default.
func (s *FileStore) GetJSON(ctx context.Context, key string, v any) (bool, error) {
	if err := ValidateKey(key); err != nil {
		return false, err
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, ErrClosed
	}

	path := s.Path(key)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return s.recover(path, v, fmt.Errorf("%s is empty", filepath.Base(path)))
	}
	if err := json.Unmarshal(data, v); err != nil {
		return s.recover(path, v, fmt.Errorf("parse %s: %w", filepath.Base(path), err))
	}
	return true, nil
}

// SetJSON replaces the value stored under key.
func (s *FileStore) SetJSON(ctx context.Context, key string, v any) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	if err := fsutil.WriteJSONAtomic(s.Path(key), v); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// Close makes later calls fail with ErrClosed.
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *FileStore) recover(path string, v any, cause error) (bool, error) {
	bak, err := os.ReadFile(path + ".bak")
	if err == nil && len(bytes.TrimSpace(bak)) > 0 && json.Unmarshal(bak, v) == nil {
		moved, _ := fsutil.MoveAside(path, s.now())
		_ = fsutil.WriteFileAtomic(path, bak, fsutil.FilePerm)
		s.logger.Warn("recovered damaged file from backup",
			"file", filepath.Base(path), "cause", cause, "moved_to", moved)
		return true, nil
	}

	moved, err := fsutil.MoveAside(path, s.now())
	if err != nil {
		return false, fmt.Errorf("%v (could not move damaged file aside: %w)", cause, err)
	}
	s.logger.Warn("damaged file reset to defaults",
		"file", filepath.Base(path), "cause", cause, "moved_to", moved)
	return false, nil
}
