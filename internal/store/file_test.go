package store

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "licensed/internal/errors"
	"licensed/internal/license"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSnapshot() license.Snapshot {
	return license.Snapshot{
		"KEY-001": {
			AgencyName:   "Acme",
			ContactEmail: "ops@acme.test",
			Password:     "pw",
			Active:       true,
			ExpiresAt:    "2030-01-01",
			Seats:        3,
			MachineIDs:   "M1,M2",
			CreatedAt:    time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		},
		"KEY-002": {
			Active: false,
			Seats:  1,
		},
	}
}

func TestFileStoreLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "licenses.json")
	fs := NewFileStore(path, testLogger())

	snapshot, err := fs.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snapshot)
	assert.NotNil(t, snapshot)
}

func TestFileStoreSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "licenses.json")
	fs := NewFileStore(path, testLogger())

	want := testSnapshot()
	require.NoError(t, fs.Save(context.Background(), want))

	got, err := fs.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// A fresh store reading the same file sees the same content
	fresh := NewFileStore(path, testLogger())
	got, err = fresh.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFileStoreLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "licenses.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	fs := NewFileStore(path, testLogger())
	snapshot, err := fs.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snapshot)
}

func TestFileStoreSaveLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "licenses.json")
	fs := NewFileStore(path, testLogger())

	require.NoError(t, fs.Save(context.Background(), testSnapshot()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "licenses.json", entries[0].Name())
}

func TestFileStoreSaveCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data", "licenses.json")
	fs := NewFileStore(path, testLogger())

	require.NoError(t, fs.Save(context.Background(), testSnapshot()))

	_, err := os.Stat(path)
	require.NoError(t, err)
}

func TestFileStoreSaveFailureReportsStoreWrite(t *testing.T) {
	dir := t.TempDir()
	// Make the directory itself the target so rename cannot succeed
	fs := NewFileStore(dir, testLogger())

	err := fs.Save(context.Background(), testSnapshot())
	require.Error(t, err)
	assert.ErrorIs(t, err, apierrors.ErrStoreWrite)
}

func TestFileStoreLoadIsolatesCallers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "licenses.json")
	fs := NewFileStore(path, testLogger())
	require.NoError(t, fs.Save(context.Background(), testSnapshot()))

	first, err := fs.Load(context.Background())
	require.NoError(t, err)

	// Mutating one caller's snapshot must not leak into later loads
	rec := first["KEY-001"]
	rec.Seats = 99
	first["KEY-001"] = rec
	delete(first, "KEY-002")

	second, err := fs.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, second["KEY-001"].Seats)
	assert.Contains(t, second, "KEY-002")
}

func TestFileStorePicksUpExternalEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "licenses.json")
	fs := NewFileStore(path, testLogger())
	require.NoError(t, fs.Save(context.Background(), testSnapshot()))

	_, err := fs.Load(context.Background())
	require.NoError(t, err)

	// Rewrite the file behind the store's back with a different size so
	// the snapshot cache is invalidated
	require.NoError(t, os.WriteFile(path, []byte(`{"KEY-EXT": {"active": true, "seats": 2}}`), 0600))

	got, err := fs.Load(context.Background())
	require.NoError(t, err)
	require.Contains(t, got, "KEY-EXT")
	assert.Equal(t, 2, got["KEY-EXT"].Seats)
	assert.NotContains(t, got, "KEY-001")
}

func TestConcurrentCreateAgainstFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "licenses.json")
	fs := NewFileStore(path, testLogger())
	service := license.NewService(fs, testLogger())

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			errs[idx] = service.Create(context.Background(), license.CreateInput{LicenseKey: "KEY-001"})
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		}
	}
	assert.Equal(t, 1, successes)

	snapshot, err := fs.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, snapshot, 1)
}
