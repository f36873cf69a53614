package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"msimpute/internal/config"
)

// Run status values recorded in the manifest.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Manifest is the persisted record of one run: identity, configuration
// echo, produced artifacts, and per-step execution results.
type Manifest struct {
	mu sync.Mutex `json:"-"`

	RunID     string         `json:"run_id"`
	StartTime time.Time      `json:"start_time"`
	Config    *config.Config `json:"config"`

	Artifacts []Artifact      `json:"artifacts"`
	Steps     []StepExecution `json:"steps"`

	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
	LastUpdated time.Time `json:"last_updated"`
}

// Artifact describes one produced file.
type Artifact struct {
	Kind string `json:"kind"` // "complete", "variant", "imputed", "report", "heatmap"
	Path string `json:"path"`
	Rows int    `json:"rows,omitempty"`
	Cols int    `json:"cols,omitempty"`
}

// StepExecution records one step run.
type StepExecution struct {
	StepID   string    `json:"step_id"`
	Name     string    `json:"name"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Duration string    `json:"duration"`
	Status   string    `json:"status"`
	Error    string    `json:"error,omitempty"`
}

// NewManifest creates a manifest for a starting run.
func NewManifest(runID string, cfg *config.Config) *Manifest {
	now := time.Now()
	return &Manifest{
		RunID:       runID,
		StartTime:   now,
		Config:      cfg,
		Status:      StatusRunning,
		LastUpdated: now,
	}
}

// AddArtifact records a produced file.
func (m *Manifest) AddArtifact(a Artifact) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Artifacts = append(m.Artifacts, a)
	m.LastUpdated = time.Now()
}

// RecordStep appends a step execution.
func (m *Manifest) RecordStep(exec StepExecution) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Steps = append(m.Steps, exec)
	m.LastUpdated = time.Now()
}

// Complete marks the run finished.
func (m *Manifest) Complete() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Status = StatusCompleted
	m.LastUpdated = time.Now()
}

// Fail marks the run failed with the given cause.
func (m *Manifest) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Status = StatusFailed
	if err != nil {
		m.Error = err.Error()
	}
	m.LastUpdated = time.Now()
}

// Save writes the manifest as indented JSON.
func (m *Manifest) Save(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create manifest directory: %w", err)
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write manifest %s: %w", path, err)
	}
	return nil
}
