// mock_storage.go - Mock storage implementation for testing
package testutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pdf2deck/backend/internal/models"
)

// MockStorage implements storage.Store for testing. File contents are
// held in memory; AllocateOutput hands out paths under OutputDir so
// converter code can still write real bytes.
type MockStorage struct {
	mu       sync.RWMutex
	files    map[string]*models.FileInfo
	fileData map[string][]byte
	paths    map[string]string
	nextID   int

	// OutputDir is where allocated outputs point; defaults to os.TempDir.
	OutputDir string

	// SaveErr, when set, is returned by Save/SaveBytes.
	SaveErr error
}

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		files:    make(map[string]*models.FileInfo),
		fileData: make(map[string][]byte),
		paths:    make(map[string]string),
	}
}

func (m *MockStorage) Save(name string, r io.Reader) (*models.FileInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return m.SaveBytes(name, data)
}

func (m *MockStorage) SaveBytes(name string, data []byte) (*models.FileInfo, error) {
	if m.SaveErr != nil {
		return nil, m.SaveErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.generateID()
	info := &models.FileInfo{
		ID:         id,
		Name:       name,
		Kind:       models.FileKindUpload,
		Size:       int64(len(data)),
		UploadedAt: time.Now(),
		Status:     models.FileStatusUploaded,
	}
	m.files[id] = info
	m.fileData[id] = data
	out := *info
	return &out, nil
}

func (m *MockStorage) Get(id string) (*models.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	info, ok := m.files[id]
	if !ok {
		return nil, errors.New("file not found")
	}
	out := *info
	return &out, nil
}

func (m *MockStorage) List(limit int) ([]*models.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var files []*models.FileInfo
	for _, info := range m.files {
		out := *info
		files = append(files, &out)
		if limit > 0 && len(files) >= limit {
			break
		}
	}
	return files, nil
}

func (m *MockStorage) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.files[id]; !ok {
		return errors.New("file not found")
	}
	delete(m.files, id)
	delete(m.fileData, id)
	delete(m.paths, id)
	return nil
}

func (m *MockStorage) GetFilePath(id string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if path, ok := m.paths[id]; ok {
		return path, nil
	}
	if _, ok := m.files[id]; !ok {
		return "", errors.New("file not found")
	}
	return "", errors.New("file has no backing path")
}

// SetFilePath points an existing entry at a real file on disk.
func (m *MockStorage) SetFilePath(id, path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paths[id] = path
}

func (m *MockStorage) SetStatus(id string, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	info, ok := m.files[id]
	if !ok {
		return errors.New("file not found")
	}
	info.Status = status
	return nil
}

func (m *MockStorage) AllocateOutput(name string) (*models.FileInfo, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	dir := m.OutputDir
	if dir == "" {
		dir = os.TempDir()
	}
	id := m.generateID()
	info := &models.FileInfo{
		ID:         id,
		Name:       name,
		Kind:       models.FileKindOutput,
		UploadedAt: time.Now(),
		Status:     models.FileStatusConverting,
	}
	path := filepath.Join(dir, id)
	m.files[id] = info
	m.paths[id] = path
	out := *info
	return &out, path, nil
}

func (m *MockStorage) FinalizeOutput(id string) (*models.FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	info, ok := m.files[id]
	if !ok {
		return nil, errors.New("file not found")
	}
	if path, ok := m.paths[id]; ok {
		if stat, err := os.Stat(path); err == nil {
			info.Size = stat.Size()
		}
	}
	info.Status = models.FileStatusConverted
	out := *info
	return &out, nil
}

func (m *MockStorage) CleanupOlderThan(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for id, info := range m.files {
		if info.UploadedAt.Before(cutoff) {
			delete(m.files, id)
			delete(m.fileData, id)
			delete(m.paths, id)
			removed++
		}
	}
	return removed
}

// Data returns the stored bytes for a file.
func (m *MockStorage) Data(id string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.fileData[id]
	return data, ok
}

func (m *MockStorage) generateID() string {
	m.nextID++
	return fmt.Sprintf("mock-%d", m.nextID)
}
