package convert

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pdf2deck/backend/internal/models"
)

// Status represents the conversion job status.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusExtracting Status = "extracting"
	StatusBuilding   Status = "building"
	StatusComplete   Status = "complete"
	StatusError      Status = "error"
)

// Terminal reports whether the status is final.
func (s Status) Terminal() bool {
	return s == StatusComplete || s == StatusError
}

// Job represents an async PDF-to-deck conversion job.
type Job struct {
	ID            string     `json:"id"`
	FileID        string     `json:"fileId"`
	FileName      string     `json:"fileName"`
	Status        Status     `json:"status"`
	Progress      float64    `json:"progress"`
	Stage         string     `json:"stage"`
	StageProgress float64    `json:"stageProgress"`
	OutputID      string     `json:"outputId,omitempty"`
	OutputName    string     `json:"outputName,omitempty"`
	Pages         int        `json:"pages,omitempty"`
	Error         string     `json:"error,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
}

// Store defines the interface needed from the storage layer.
type Store interface {
	GetFilePath(id string) (string, error)
	SetStatus(id string, status string) error
	AllocateOutput(name string) (*models.FileInfo, string, error)
	FinalizeOutput(id string) (*models.FileInfo, error)
	Delete(id string) error
}

// Manager handles async conversion processing.
type Manager struct {
	mu        sync.RWMutex
	jobs      map[string]*Job
	store     Store
	converter *Converter
}

// NewManager creates a conversion job manager.
func NewManager(store Store, converter *Converter) *Manager {
	return &Manager{
		jobs:      make(map[string]*Job),
		store:     store,
		converter: converter,
	}
}

// StartJob begins async conversion of an uploaded PDF.
func (m *Manager) StartJob(fileID, fileName string) *Job {
	job := &Job{
		ID:         uuid.New().String(),
		FileID:     fileID,
		FileName:   fileName,
		Status:     StatusProcessing,
		Stage:      "preparing",
		OutputName: outputName(fileName),
		CreatedAt:  time.Now(),
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()

	go m.processJob(job)

	return job
}

// Snapshot returns a copy of the job's current state.
func (m *Manager) Snapshot(id string) (Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// processJob runs the conversion pipeline for one job.
func (m *Manager) processJob(job *Job) {
	fmt.Printf("[ConvertJob %s] Starting conversion: %s\n", job.ID[:8], job.FileName)

	pdfPath, err := m.store.GetFilePath(job.FileID)
	if err != nil {
		m.markJobError(job, fmt.Sprintf("source file unavailable: %v", err))
		return
	}
	m.store.SetStatus(job.FileID, models.FileStatusConverting)

	outInfo, outPath, err := m.store.AllocateOutput(job.OutputName)
	if err != nil {
		m.markJobError(job, fmt.Sprintf("failed to allocate output: %v", err))
		m.store.SetStatus(job.FileID, models.FileStatusError)
		return
	}

	pages, err := m.converter.Convert(pdfPath, outPath, func(stage string, pct float64) {
		m.updateJobProgress(job, stage, pct)
	})
	if err != nil {
		m.markJobError(job, fmt.Sprintf("conversion failed: %v", err))
		m.store.SetStatus(job.FileID, models.FileStatusError)
		m.store.Delete(outInfo.ID)
		return
	}

	final, err := m.store.FinalizeOutput(outInfo.ID)
	if err != nil {
		m.markJobError(job, fmt.Sprintf("failed to finalize output: %v", err))
		m.store.SetStatus(job.FileID, models.FileStatusError)
		return
	}
	m.store.SetStatus(job.FileID, models.FileStatusConverted)

	m.mu.Lock()
	job.OutputID = final.ID
	job.Pages = pages
	job.Status = StatusComplete
	job.Progress = 100
	job.Stage = "complete"
	now := time.Now()
	job.CompletedAt = &now
	m.mu.Unlock()

	fmt.Printf("[ConvertJob %s] Conversion complete: %s (%d slides, %d bytes)\n",
		job.ID[:8], final.ID, pages, final.Size)
}

// updateJobProgress maps stage progress onto the overall job progress.
// Extracting: 0-40%, building: 40-90%, finalizing: 90-100%.
func (m *Manager) updateJobProgress(job *Job, stage string, pct float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job.Stage = stage
	job.StageProgress = pct

	switch stage {
	case StageExtracting:
		job.Status = StatusExtracting
		job.Progress = pct * 0.4
	case StageBuilding:
		job.Status = StatusBuilding
		job.Progress = 40 + pct*0.5
	case StageFinalizing:
		job.Progress = 90 + pct*0.1
	}
}

// markJobError marks a job as failed.
func (m *Manager) markJobError(job *Job, errMsg string) {
	m.mu.Lock()
	job.Status = StatusError
	job.Error = errMsg
	now := time.Now()
	job.CompletedAt = &now
	m.mu.Unlock()
	fmt.Printf("[ConvertJob %s] Error: %s\n", job.ID[:8], errMsg)
}

// ActiveJobs returns how many jobs have not reached a terminal state.
func (m *Manager) ActiveJobs() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, job := range m.jobs {
		if !job.Status.Terminal() {
			n++
		}
	}
	return n
}

// CleanupOldJobs removes terminal jobs older than maxAge.
func (m *Manager) CleanupOldJobs(maxAge time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	for id, job := range m.jobs {
		if job.Status.Terminal() && job.CompletedAt != nil && job.CompletedAt.Before(cutoff) {
			delete(m.jobs, id)
		}
	}
}

// outputName derives the deck name from the uploaded file name.
func outputName(fileName string) string {
	base := fileName
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	return base + ".pptx"
}
