package storage

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var samplePDF = []byte("%PDF-1.7\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := New(t.TempDir(), nil)
	require.NoError(t, err)
	return s
}

func TestFileStore_PutAndOpen(t *testing.T) {
	s := newTestStore(t)

	file, err := s.Put(samplePDF)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, file.ID)
	assert.Equal(t, int64(len(samplePDF)), file.Size)
	assert.False(t, file.CreatedAt.IsZero())

	r, got, err := s.Open(file.ID)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, file.ID, got.ID)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, samplePDF, data)
}

func TestFileStore_PutRejectsEmpty(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Put(nil)
	assert.Error(t, err)
}

func TestFileStore_OpenUnknown(t *testing.T) {
	s := newTestStore(t)
	_, _, err := s.Open(uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStore_DeleteIsIdempotent(t *testing.T) {
	s := newTestStore(t)

	file, err := s.Put(samplePDF)
	require.NoError(t, err)

	require.NoError(t, s.Delete(file.ID))
	_, _, err = s.Open(file.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// already gone is not an error
	assert.NoError(t, s.Delete(file.ID))
	assert.NoError(t, s.Delete(uuid.New()))
}

func TestFileStore_OpenSurvivesConcurrentDelete(t *testing.T) {
	s := newTestStore(t)

	file, err := s.Put(samplePDF)
	require.NoError(t, err)

	r, _, err := s.Open(file.ID)
	require.NoError(t, err)
	defer r.Close()

	// Unlink while the handle is open; the in-flight read keeps its bytes
	require.NoError(t, s.Delete(file.ID))

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, samplePDF, data)
}

func TestFileStore_ConcurrentPutsYieldDistinctIDs(t *testing.T) {
	s := newTestStore(t)

	const n = 100
	ids := make(chan uuid.UUID, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			file, err := s.Put(samplePDF)
			assert.NoError(t, err)
			ids <- file.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[uuid.UUID]bool, n)
	for id := range ids {
		assert.False(t, seen[id], "identifier %s issued twice", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
	assert.Equal(t, n, s.Len())
}

func TestFileStore_ListSnapshot(t *testing.T) {
	s := newTestStore(t)
	assert.Empty(t, s.List())

	a, err := s.Put(samplePDF)
	require.NoError(t, err)
	b, err := s.Put(samplePDF)
	require.NoError(t, err)

	list := s.List()
	assert.Len(t, list, 2)
	got := map[uuid.UUID]bool{}
	for _, f := range list {
		got[f.ID] = true
	}
	assert.True(t, got[a.ID])
	assert.True(t, got[b.ID])
}

func TestFileStore_RehydrateFromDisk(t *testing.T) {
	dir := t.TempDir()

	s, err := New(dir, nil)
	require.NoError(t, err)
	file, err := s.Put(samplePDF)
	require.NoError(t, err)

	// Files from a previous run keep their on-disk age
	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, file.Filename()), old, old))

	// Stale temp files and foreign files are not indexed
	require.NoError(t, os.WriteFile(filepath.Join(dir, uuid.NewString()+".pdf.tmp"), []byte("partial"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0o644))

	reopened, err := New(dir, nil)
	require.NoError(t, err)

	list := reopened.List()
	require.Len(t, list, 1)
	assert.Equal(t, file.ID, list[0].ID)
	assert.WithinDuration(t, old, list[0].CreatedAt, time.Minute)

	// The interrupted write was cleaned up
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp")
	}
}

func TestFileStore_TempFilesNeverVisibleInList(t *testing.T) {
	s := newTestStore(t)
	for i := 0; i < 10; i++ {
		_, err := s.Put(samplePDF)
		require.NoError(t, err)
	}
	for _, f := range s.List() {
		assert.NotContains(t, f.Filename(), ".tmp")
	}
}
