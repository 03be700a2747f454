// Package storage owns the flat directory of generated PDF files.
//
// Writes are atomic-visible (temp file, fsync, rename), deletes are
// idempotent, and enumeration returns a snapshot of the in-memory index.
// A reader holding an open handle keeps its bytes even if the retention
// sweeper unlinks the file mid-transfer; a lookup after the unlink gets
// ErrNotFound. Partial bytes are never observable.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/pdfgen/backend/internal/domain/pdf"
)

// ErrNotFound is returned when an identifier is absent or already swept
var ErrNotFound = errors.New("file not found")

// storedFiles tracks the number of PDFs currently in the store
var storedFiles = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "pdfgen_stored_files",
	Help: "Number of generated PDF files currently on disk",
})

// FileStore manages the PDF directory and an in-memory index of
// identifier to creation time. Safe for concurrent use.
type FileStore struct {
	dir    string
	logger *zap.Logger

	mu    sync.RWMutex
	index map[uuid.UUID]pdf.GeneratedFile
}

// New creates a FileStore rooted at dir, creating the directory if needed
// and rebuilding the index from files surviving a previous run.
func New(dir string, logger *zap.Logger) (*FileStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", dir, err)
	}

	s := &FileStore{
		dir:    dir,
		logger: logger.Named("storage"),
		index:  make(map[uuid.UUID]pdf.GeneratedFile),
	}
	if err := s.rehydrate(); err != nil {
		return nil, err
	}
	return s, nil
}

// rehydrate rebuilds the index from directory contents using file mtime
// as the creation time, so retention survives a restart. Leftover temp
// files from an interrupted write are removed.
func (s *FileStore) rehydrate() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("failed to read storage directory %s: %w", s.dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()

		if strings.HasSuffix(name, ".tmp") {
			if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
				s.logger.Warn("failed to remove stale temp file",
					zap.String("name", name), zap.Error(err))
			}
			continue
		}

		id, err := uuid.Parse(strings.TrimSuffix(name, ".pdf"))
		if !strings.HasSuffix(name, ".pdf") || err != nil {
			s.logger.Warn("ignoring foreign file in storage directory", zap.String("name", name))
			continue
		}

		info, err := entry.Info()
		if err != nil {
			s.logger.Warn("failed to stat file", zap.String("name", name), zap.Error(err))
			continue
		}

		s.index[id] = pdf.GeneratedFile{
			ID:        id,
			CreatedAt: info.ModTime().UTC(),
			Size:      info.Size(),
		}
	}

	storedFiles.Set(float64(len(s.index)))
	if len(s.index) > 0 {
		s.logger.Info("rehydrated file index", zap.Int("files", len(s.index)))
	}
	return nil
}

// Put writes data under a fresh identifier and returns the stored file.
// The write is temp-file + fsync + rename, so a concurrent List, Open or
// sweep never observes a half-written PDF. Identifiers are never reused.
func (s *FileStore) Put(data []byte) (pdf.GeneratedFile, error) {
	if len(data) == 0 {
		return pdf.GeneratedFile{}, fmt.Errorf("refusing to store empty PDF")
	}

	id := s.freshID()
	finalPath := filepath.Join(s.dir, id.String()+".pdf")
	tmpPath := finalPath + ".tmp"

	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return pdf.GeneratedFile{}, fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return pdf.GeneratedFile{}, fmt.Errorf("failed to write PDF data: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return pdf.GeneratedFile{}, fmt.Errorf("failed to sync PDF data: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return pdf.GeneratedFile{}, fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return pdf.GeneratedFile{}, fmt.Errorf("failed to publish PDF file: %w", err)
	}

	file := pdf.GeneratedFile{
		ID:        id,
		CreatedAt: time.Now().UTC(),
		Size:      int64(len(data)),
	}

	s.mu.Lock()
	s.index[id] = file
	storedFiles.Set(float64(len(s.index)))
	s.mu.Unlock()

	s.logger.Debug("PDF stored",
		zap.String("id", id.String()),
		zap.Int64("size", file.Size),
	)
	return file, nil
}

// Open returns a reader over the stored bytes. The returned handle stays
// valid even if the file is deleted while the caller is still reading.
func (s *FileStore) Open(id uuid.UUID) (io.ReadCloser, pdf.GeneratedFile, error) {
	s.mu.RLock()
	file, ok := s.index[id]
	s.mu.RUnlock()
	if !ok {
		return nil, pdf.GeneratedFile{}, ErrNotFound
	}

	f, err := os.Open(filepath.Join(s.dir, file.Filename()))
	if err != nil {
		if os.IsNotExist(err) {
			// Swept between the index lookup and the open
			return nil, pdf.GeneratedFile{}, ErrNotFound
		}
		return nil, pdf.GeneratedFile{}, fmt.Errorf("failed to open PDF file: %w", err)
	}
	return f, file, nil
}

// Delete removes the entry and its file. Already-gone is not an error.
func (s *FileStore) Delete(id uuid.UUID) error {
	s.mu.Lock()
	_, existed := s.index[id]
	delete(s.index, id)
	storedFiles.Set(float64(len(s.index)))
	s.mu.Unlock()

	err := os.Remove(filepath.Join(s.dir, id.String()+".pdf"))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete PDF file: %w", err)
	}
	if existed {
		s.logger.Debug("PDF deleted", zap.String("id", id.String()))
	}
	return nil
}

// List returns a snapshot of the store's current view. It is not
// guaranteed to be live-consistent with concurrent writes.
func (s *FileStore) List() []pdf.GeneratedFile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	files := make([]pdf.GeneratedFile, 0, len(s.index))
	for _, f := range s.index {
		files = append(files, f)
	}
	return files
}

// Len returns the number of indexed files
func (s *FileStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.index)
}

// Dir returns the managed directory
func (s *FileStore) Dir() string {
	return s.dir
}

// freshID returns an identifier not present in the index; identifiers
// are never reused within a process lifetime.
func (s *FileStore) freshID() uuid.UUID {
	for {
		id := uuid.New()
		s.mu.RLock()
		_, exists := s.index[id]
		s.mu.RUnlock()
		if !exists {
			return id
		}
	}
}
