package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths lays out the run artifacts beneath the output directory. It is the
// single source of truth for artifact locations across both pipeline stages.
type Paths struct {
	OutDir      string
	DatasetsDir string
	ImputedDir  string
	ReportsDir  string
}

// Well-known artifact names.
const (
	CompleteMatrixFile = "complete_normalized.csv"
	TrainMatrixFile    = "complete_train.csv"
	TestMatrixFile     = "complete_test.csv"
	QCReportFile       = "qc_summary.csv"
	ManifestFile       = "run_manifest.json"
)

// NewPaths builds the path layout for an output directory.
func NewPaths(outDir string) *Paths {
	return &Paths{
		OutDir:      outDir,
		DatasetsDir: filepath.Join(outDir, "datasets"),
		ImputedDir:  filepath.Join(outDir, "imputed"),
		ReportsDir:  filepath.Join(outDir, "reports"),
	}
}

// EnsureDirs creates every output directory.
func (p *Paths) EnsureDirs() error {
	for _, dir := range []string{p.OutDir, p.DatasetsDir, p.ImputedDir, p.ReportsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// CompleteMatrixPath is the normalized complete matrix CSV.
func (p *Paths) CompleteMatrixPath() string {
	return filepath.Join(p.DatasetsDir, CompleteMatrixFile)
}

// ManifestPath is the run manifest JSON.
func (p *Paths) ManifestPath() string {
	return filepath.Join(p.OutDir, ManifestFile)
}
