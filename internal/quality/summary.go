package quality

import (
	"fmt"
	"strconv"

	"github.com/montanaflynn/stats"

	"msimpute/internal/dataset"
)

// SampleSummary holds per-sample quality statistics over present cells.
type SampleSummary struct {
	Sample  string
	Present int
	Missing int
	Mean    float64
	Median  float64
	StdDev  float64
	Q1      float64
	Q3      float64
}

// Summarize computes per-sample descriptive statistics for the QC report.
// Samples with no present cells get zero-valued statistics rather than an
// error so one empty column does not block the report.
func Summarize(m *dataset.Matrix) ([]SampleSummary, error) {
	summaries := make([]SampleSummary, 0, len(m.Cols))
	for j, col := range m.Cols {
		vals := m.ColumnPresent(j)
		s := SampleSummary{
			Sample:  col,
			Present: len(vals),
			Missing: len(m.Rows) - len(vals),
		}
		if len(vals) > 0 {
			var err error
			if s.Mean, err = stats.Mean(vals); err != nil {
				return nil, fmt.Errorf("mean for sample %q: %w", col, err)
			}
			if s.Median, err = stats.Median(vals); err != nil {
				return nil, fmt.Errorf("median for sample %q: %w", col, err)
			}
			if s.StdDev, err = stats.StandardDeviation(vals); err != nil {
				return nil, fmt.Errorf("standard deviation for sample %q: %w", col, err)
			}
			if q, err := stats.Quartile(vals); err == nil {
				s.Q1, s.Q3 = q.Q1, q.Q3
			}
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

// SummaryRecords renders sample summaries as CSV headers plus records.
func SummaryRecords(summaries []SampleSummary) ([]string, [][]string) {
	headers := []string{"sample", "present", "missing", "mean", "median", "stddev", "q1", "q3"}
	records := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		records = append(records, []string{
			s.Sample,
			strconv.Itoa(s.Present),
			strconv.Itoa(s.Missing),
			formatStat(s.Mean),
			formatStat(s.Median),
			formatStat(s.StdDev),
			formatStat(s.Q1),
			formatStat(s.Q3),
		})
	}
	return headers, records
}

func formatStat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
