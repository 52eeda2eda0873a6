package storage

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/pdf2deck/backend/internal/models"
)

// Store defines the interface for file storage. Returned FileInfo values
// are copies: the conversion pipeline updates stored entries concurrently
// with API reads.
type Store interface {
	Save(name string, r io.Reader) (*models.FileInfo, error)
	SaveBytes(name string, data []byte) (*models.FileInfo, error)
	Get(id string) (*models.FileInfo, error)
	List(limit int) ([]*models.FileInfo, error)
	Delete(id string) error
	GetFilePath(id string) (string, error)
	SetStatus(id string, status string) error
	AllocateOutput(name string) (*models.FileInfo, string, error)
	FinalizeOutput(id string) (*models.FileInfo, error)
	CleanupOlderThan(maxAge time.Duration) int
}

// indexFile is the msgpack snapshot of file metadata, written next to the
// uploads so the registry survives restarts.
const indexFile = "index.msgpack"

// LocalStore implements Store using the local filesystem. Uploaded PDFs
// live in uploadDir, generated decks in outputDir, both keyed by uuid.
type LocalStore struct {
	mu        sync.RWMutex
	uploadDir string
	outputDir string
	indexPath string
	files     map[string]*models.FileInfo
}

// NewLocalStore creates a LocalStore. An empty indexDir disables metadata
// persistence across restarts.
func NewLocalStore(uploadDir, outputDir, indexDir string) (*LocalStore, error) {
	for _, dir := range []string{uploadDir, outputDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating storage directory: %w", err)
		}
	}

	s := &LocalStore{
		uploadDir: uploadDir,
		outputDir: outputDir,
		files:     make(map[string]*models.FileInfo),
	}
	if indexDir != "" {
		s.indexPath = filepath.Join(indexDir, indexFile)
		if err := s.loadIndex(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Save saves an uploaded file to the local filesystem.
func (s *LocalStore) Save(name string, r io.Reader) (*models.FileInfo, error) {
	id := uuid.New().String()
	path := filepath.Join(s.uploadDir, id)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	size, err := io.Copy(f, r)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("writing file: %w", err)
	}

	info := &models.FileInfo{
		ID:         id,
		Name:       name,
		Kind:       models.FileKindUpload,
		Size:       size,
		UploadedAt: time.Now(),
		Status:     models.FileStatusUploaded,
	}

	s.mu.Lock()
	s.files[id] = info
	s.persistLocked()
	out := *info
	s.mu.Unlock()

	return &out, nil
}

// SaveBytes saves raw bytes as an uploaded file.
func (s *LocalStore) SaveBytes(name string, data []byte) (*models.FileInfo, error) {
	return s.Save(name, bytes.NewReader(data))
}

// Get retrieves file metadata by ID. The result is a copy: the stored
// entry keeps being mutated by the conversion pipeline, so callers must
// never see the live struct.
func (s *LocalStore) Get(id string) (*models.FileInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, ok := s.files[id]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", id)
	}
	out := *info
	return &out, nil
}

// List returns the most recent files, newest first.
func (s *LocalStore) List(limit int) ([]*models.FileInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var list []*models.FileInfo
	for _, info := range s.files {
		out := *info
		list = append(list, &out)
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].UploadedAt.After(list[j].UploadedAt)
	})

	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

// Delete removes a file from storage.
func (s *LocalStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, ok := s.files[id]
	if !ok {
		return fmt.Errorf("file not found: %s", id)
	}

	path := filepath.Join(s.dirFor(info.Kind), id)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting file: %w", err)
	}

	delete(s.files, id)
	s.persistLocked()
	return nil
}

// GetFilePath returns the absolute path to a file.
func (s *LocalStore) GetFilePath(id string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, ok := s.files[id]
	if !ok {
		return "", fmt.Errorf("file not found: %s", id)
	}
	return filepath.Join(s.dirFor(info.Kind), id), nil
}

// SetStatus updates the lifecycle status of a file.
func (s *LocalStore) SetStatus(id string, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, ok := s.files[id]
	if !ok {
		return fmt.Errorf("file not found: %s", id)
	}
	info.Status = status
	s.persistLocked()
	return nil
}

// AllocateOutput reserves an ID and path in the output directory for a
// deck about to be written by the converter. The entry is registered with
// "converting" status; FinalizeOutput completes it.
func (s *LocalStore) AllocateOutput(name string) (*models.FileInfo, string, error) {
	id := uuid.New().String()
	info := &models.FileInfo{
		ID:         id,
		Name:       name,
		Kind:       models.FileKindOutput,
		UploadedAt: time.Now(),
		Status:     models.FileStatusConverting,
	}

	s.mu.Lock()
	s.files[id] = info
	s.persistLocked()
	out := *info
	s.mu.Unlock()

	return &out, filepath.Join(s.outputDir, id), nil
}

// FinalizeOutput records the written deck's size and marks it converted.
func (s *LocalStore) FinalizeOutput(id string) (*models.FileInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, ok := s.files[id]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", id)
	}

	stat, err := os.Stat(filepath.Join(s.outputDir, id))
	if err != nil {
		return nil, fmt.Errorf("stat output file: %w", err)
	}

	info.Size = stat.Size()
	info.Status = models.FileStatusConverted
	s.persistLocked()
	out := *info
	return &out, nil
}

// CleanupOlderThan removes files whose age exceeds maxAge and returns how
// many were removed. Uploads and outputs are both transient.
func (s *LocalStore) CleanupOlderThan(maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for id, info := range s.files {
		if info.UploadedAt.After(cutoff) {
			continue
		}
		path := filepath.Join(s.dirFor(info.Kind), id)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			fmt.Printf("[Storage] Error cleaning up %s: %v\n", path, err)
			continue
		}
		delete(s.files, id)
		removed++
	}
	if removed > 0 {
		s.persistLocked()
	}
	return removed
}

func (s *LocalStore) dirFor(kind string) string {
	if kind == models.FileKindOutput {
		return s.outputDir
	}
	return s.uploadDir
}

// persistLocked snapshots the metadata index. Callers must hold mu.
// Persistence failures are logged, not propagated: the index is a
// convenience, not the source of truth for the bytes on disk.
func (s *LocalStore) persistLocked() {
	if s.indexPath == "" {
		return
	}
	list := make([]*models.FileInfo, 0, len(s.files))
	for _, info := range s.files {
		list = append(list, info)
	}
	data, err := msgpack.Marshal(list)
	if err != nil {
		fmt.Printf("[Storage] Error encoding index: %v\n", err)
		return
	}
	tmp := s.indexPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		fmt.Printf("[Storage] Error writing index: %v\n", err)
		return
	}
	if err := os.Rename(tmp, s.indexPath); err != nil {
		fmt.Printf("[Storage] Error replacing index: %v\n", err)
	}
}

// loadIndex restores the metadata index, dropping entries whose backing
// file no longer exists.
func (s *LocalStore) loadIndex() error {
	data, err := os.ReadFile(s.indexPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading index: %w", err)
	}

	var list []*models.FileInfo
	if err := msgpack.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("decoding index: %w", err)
	}

	for _, info := range list {
		path := filepath.Join(s.dirFor(info.Kind), info.ID)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		s.files[info.ID] = info
	}
	return nil
}
