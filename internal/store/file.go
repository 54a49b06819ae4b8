package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	apierrors "licensed/internal/errors"
	"licensed/internal/license"
)

// FileStore persists the license snapshot as one JSON document mapping
// license key to record.
//
// Save writes the full content to a temporary file in the same directory,
// syncs it, then renames it over the target, so a Load never observes a
// partially written snapshot and a failed save leaves the existing file
// untouched. The last decoded snapshot is cached and reused while the
// file's modification time and size are unchanged.
type FileStore struct {
	path   string
	logger *slog.Logger

	mu         sync.Mutex
	cached     license.Snapshot
	cachedMod  time.Time
	cachedSize int64
	cacheValid bool
}

// NewFileStore creates a file store at the given path. The file does not
// need to exist yet; a missing file loads as an empty snapshot.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	return &FileStore{
		path:   path,
		logger: logger.With(slog.String("component", "file_store"), slog.String("path", path)),
	}
}

// Load implements license.Store. A missing or malformed backing file is
// treated as an empty store, not an error.
func (s *FileStore) Load(ctx context.Context) (license.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fi, err := os.Stat(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.WarnContext(ctx, "store file unreadable, treating as empty",
				slog.String("error", err.Error()))
		}
		return license.Snapshot{}, nil
	}

	if s.cacheValid && fi.ModTime().Equal(s.cachedMod) && fi.Size() == s.cachedSize {
		return s.cached.Clone(), nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		s.logger.WarnContext(ctx, "store file read failed, treating as empty",
			slog.String("error", err.Error()))
		return license.Snapshot{}, nil
	}

	var snapshot license.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		s.logger.WarnContext(ctx, "store file corrupt, treating as empty",
			slog.String("error", err.Error()))
		return license.Snapshot{}, nil
	}
	if snapshot == nil {
		snapshot = license.Snapshot{}
	}

	s.cached = snapshot
	s.cachedMod = fi.ModTime()
	s.cachedSize = fi.Size()
	s.cacheValid = true

	return snapshot.Clone(), nil
}

// Save implements license.Store using the write-then-rename discipline.
func (s *FileStore) Save(ctx context.Context, snapshot license.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal snapshot: %v", apierrors.ErrStoreWrite, err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("%w: create store directory: %v", apierrors.ErrStoreWrite, err)
		}
	}

	tmp := s.path + ".tmp"
	if err := s.writeFileSync(tmp, data); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: write temp file: %v", apierrors.ErrStoreWrite, err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: rename temp file: %v", apierrors.ErrStoreWrite, err)
	}

	s.cached = snapshot.Clone()
	s.cacheValid = false
	if fi, err := os.Stat(s.path); err == nil {
		s.cachedMod = fi.ModTime()
		s.cachedSize = fi.Size()
		s.cacheValid = true
	}

	s.logger.DebugContext(ctx, "snapshot persisted",
		slog.Int("records", len(snapshot)),
		slog.Int("bytes", len(data)),
	)
	return nil
}

// Close implements license.Store.
func (s *FileStore) Close() error {
	return nil
}

// writeFileSync writes data to path and flushes it to stable storage
// before returning.
func (s *FileStore) writeFileSync(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
