package dataset

import (
	"fmt"
	"log/slog"
	"strings"
)

// Metadata maps sample identifiers to their experimental condition labels.
type Metadata struct {
	// Samples preserves the file order of the sample identifiers.
	Samples []string
	// Condition maps a sample identifier to its group label.
	Condition map[string]string
}

// MetadataOptions controls how the sample metadata table is read.
type MetadataOptions struct {
	// SampleColumn names the sample identifier column. Empty means the
	// first column.
	SampleColumn string
	// ConditionColumn names the group label column. Empty means the second
	// column.
	ConditionColumn string
	// StripPrefix is removed from sample identifiers before joining against
	// intensity column names, e.g. the "Intensity " prefix.
	StripPrefix string
}

// LoadMetadata reads a delimited sample metadata table.
func LoadMetadata(path string, opts MetadataOptions) (*Metadata, error) {
	headers, records, err := LoadTable(path, "")
	if err != nil {
		return nil, fmt.Errorf("load metadata %s: %w", path, err)
	}
	if len(headers) < 2 {
		return nil, fmt.Errorf("metadata %s: need at least a sample and a condition column, got %d", path, len(headers))
	}

	sampleIdx, conditionIdx := 0, 1
	if opts.SampleColumn != "" {
		sampleIdx = indexOf(headers, opts.SampleColumn)
		if sampleIdx < 0 {
			return nil, fmt.Errorf("metadata %s: sample column %q not found", path, opts.SampleColumn)
		}
	}
	if opts.ConditionColumn != "" {
		conditionIdx = indexOf(headers, opts.ConditionColumn)
		if conditionIdx < 0 {
			return nil, fmt.Errorf("metadata %s: condition column %q not found", path, opts.ConditionColumn)
		}
	}

	md := &Metadata{Condition: make(map[string]string, len(records))}
	for _, rec := range records {
		if sampleIdx >= len(rec) || conditionIdx >= len(rec) {
			continue
		}
		sample := strings.TrimSpace(rec[sampleIdx])
		if opts.StripPrefix != "" {
			sample = strings.TrimPrefix(sample, opts.StripPrefix)
		}
		if sample == "" {
			continue
		}
		md.Samples = append(md.Samples, sample)
		md.Condition[sample] = strings.TrimSpace(rec[conditionIdx])
	}
	return md, nil
}

// Align checks the metadata against the matrix sample columns. Simulation and
// imputation do not need metadata, so a mismatch is reported for the caller
// to log rather than returned as an error.
func (md *Metadata) Align(m *Matrix, stripPrefix string, logger *slog.Logger) (matched, unmatched int) {
	if logger == nil {
		logger = slog.Default()
	}
	for _, col := range m.Cols {
		name := col
		if stripPrefix != "" {
			name = strings.TrimPrefix(name, stripPrefix)
		}
		if _, ok := md.Condition[name]; ok {
			matched++
		} else {
			unmatched++
		}
	}
	if unmatched > 0 {
		logger.Warn("samples without metadata labels",
			slog.Int("matched", matched),
			slog.Int("unmatched", unmatched))
	}
	return matched, unmatched
}

func indexOf(headers []string, name string) int {
	for i, h := range headers {
		if h == name {
			return i
		}
	}
	return -1
}
