package sweep

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"msimpute/internal/dataset"
)

// variantPrefix matches the exporter's variant naming convention.
const variantPrefix = "missing_"

// DiscoverVariants loads every missingness variant CSV from dir, sorted by
// name. Files that fail to parse are skipped with a warning so one corrupt
// artifact does not block the sweep.
func DiscoverVariants(dir string, logger *slog.Logger) ([]Dataset, error) {
	if logger == nil {
		logger = slog.Default()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read variants directory %s: %w", dir, err)
	}

	var datasets []Dataset
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, variantPrefix) || !strings.HasSuffix(name, ".csv") {
			continue
		}
		// Imputed outputs share the missing_ prefix when written next to
		// the variants; only the plain variant files are inputs.
		if strings.HasSuffix(strings.TrimSuffix(name, ".csv"), "_imputed") {
			continue
		}

		m, err := dataset.ReadMatrixCSV(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("skipping unreadable variant",
				slog.String("file", name),
				slog.Any("error", err))
			continue
		}
		datasets = append(datasets, Dataset{
			Name:   strings.TrimSuffix(name, ".csv"),
			Matrix: m,
		})
	}

	sort.Slice(datasets, func(a, b int) bool { return datasets[a].Name < datasets[b].Name })
	logger.Info("discovered missingness variants",
		slog.String("dir", dir),
		slog.Int("count", len(datasets)))
	return datasets, nil
}
