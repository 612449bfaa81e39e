package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

// Compile-time check that FileStore implements Store.
var _ Store = (*FileStore)(nil)

const lockRetryDelay = 25 * time.Millisecond

// FileStore persists the session as a single JSON object on disk.
// Every operation holds a flock on a sibling ".lock" file so separate
// processes never observe a half-written file; concurrent writers still
// race with last-write-wins semantics.
type FileStore struct {
	path string
	// mu serializes goroutines sharing this handle; flock treats a lock the
	// handle already holds as acquired.
	mu     sync.RWMutex
	lock   *flock.Flock
	logger *slog.Logger
}

// NewFileStore creates a store backed by path, creating its directory.
func NewFileStore(path string, logger *slog.Logger) (*FileStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("session: create state directory: %w", err)
	}
	return &FileStore{
		path:   path,
		lock:   flock.New(path + ".lock"),
		logger: logger,
	}, nil
}

// Path returns the session file location.
func (s *FileStore) Path() string {
	return s.path
}

// Get returns the value stored under key.
func (s *FileStore) Get(ctx context.Context, key Key) (string, bool, error) {
	var (
		v  string
		ok bool
	)
	err := s.withLock(ctx, true, func() error {
		values, err := s.read()
		if err != nil {
			return err
		}
		v, ok = values[key]
		return nil
	})
	return v, ok, err
}

// Set stores value under key.
func (s *FileStore) Set(ctx context.Context, key Key, value string) error {
	return s.withLock(ctx, false, func() error {
		values, err := s.read()
		if err != nil {
			return err
		}
		values[key] = value
		return s.write(values)
	})
}

// Delete removes the given keys.
func (s *FileStore) Delete(ctx context.Context, keys ...Key) error {
	return s.withLock(ctx, false, func() error {
		values, err := s.read()
		if err != nil {
			return err
		}
		for _, k := range keys {
			delete(values, k)
		}
		return s.write(values)
	})
}

// Keys returns the present keys in lexical order.
func (s *FileStore) Keys(ctx context.Context) ([]Key, error) {
	var out []Key
	err := s.withLock(ctx, true, func() error {
		values, err := s.read()
		if err != nil {
			return err
		}
		out = make([]Key, 0, len(values))
		for k := range values {
			out = append(out, k)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, err
}

func (s *FileStore) withLock(ctx context.Context, shared bool, fn func() error) error {
	var (
		ok  bool
		err error
	)
	if shared {
		s.mu.RLock()
		defer s.mu.RUnlock()
		ok, err = s.lock.TryRLockContext(ctx, lockRetryDelay)
	} else {
		s.mu.Lock()
		defer s.mu.Unlock()
		ok, err = s.lock.TryLockContext(ctx, lockRetryDelay)
	}
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %w", ErrLockTimeout, ctx.Err())
		}
		return fmt.Errorf("session: acquire lock: %w", err)
	}
	if !ok {
		return ErrLockTimeout
	}
	defer func() { _ = s.lock.Unlock() }()
	return fn()
}

// read loads the file. A missing file is an empty session; a corrupt file
// is logged and also treated as empty.
func (s *FileStore) read() (map[Key]string, error) {
	values := make(map[Key]string)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return values, nil
		}
		return nil, fmt.Errorf("session: read %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return values, nil
	}

	if err := json.Unmarshal(data, &values); err != nil {
		s.logger.Warn("session file is corrupt, treating as empty",
			slog.String("path", s.path),
			slog.String("error", err.Error()),
		)
		return make(map[Key]string), nil
	}
	return values, nil
}

// write replaces the file atomically via a temp file and rename.
func (s *FileStore) write(values map[Key]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("session: encode: %w", err)
	}

	f, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("session: create temp file: %w", err)
	}
	tmp := f.Name()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("session: write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("session: close temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("session: replace %s: %w", s.path, err)
	}
	return nil
}
