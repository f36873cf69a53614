package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"msimpute/internal/dataset"
)

func buildTestMatrix(t *testing.T) (*dataset.Matrix, dataset.Annotations) {
	t.Helper()
	m := dataset.NewMatrix(
		[]string{"P1", "P2", "P3", "P4"},
		[]string{"S1", "S2", "S3", "S4"},
	)
	// P1 complete, P2 contaminant, P3 decoy, P4 three of four missing.
	for j := 0; j < 4; j++ {
		m.Set(0, j, float64(j+1))
		m.Set(1, j, float64(j+1))
		m.Set(2, j, float64(j+1))
	}
	m.Set(3, 0, 1)

	ann := dataset.Annotations{Columns: map[string][]string{
		"Potential contaminant": {"", "+", "", ""},
		"Reverse":               {"", "", "+", ""},
	}}
	return m, ann
}

func TestFilterRemovesFlaggedAndSparseRows(t *testing.T) {
	m, ann := buildTestMatrix(t)

	filtered, filteredAnn, result, err := Filter(m, ann, FilterOptions{
		ContaminantColumn:  "Potential contaminant",
		ReverseColumn:      "Reverse",
		Marker:             "+",
		MaxMissingFraction: 0.5,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"P1"}, filtered.Rows)
	assert.Equal(t, 1, result.Contaminants)
	assert.Equal(t, 1, result.Decoys)
	assert.Equal(t, 1, result.HighMissing)
	assert.Equal(t, 1, result.Kept)

	rev, ok := filteredAnn.Values("Reverse")
	require.True(t, ok)
	assert.Equal(t, []string{""}, rev)
}

func TestFilterKeepsRowAtThreshold(t *testing.T) {
	m := dataset.NewMatrix([]string{"P1"}, []string{"S1", "S2"})
	m.Set(0, 0, 1) // exactly 50% missing

	filtered, _, result, err := Filter(m, dataset.Annotations{}, FilterOptions{
		MaxMissingFraction: 0.5,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Kept)
	assert.Len(t, filtered.Rows, 1)
}

func TestFilterFailsOnMissingAnnotationColumn(t *testing.T) {
	m, ann := buildTestMatrix(t)

	_, _, _, err := Filter(m, ann, FilterOptions{
		ContaminantColumn:  "No such column",
		Marker:             "+",
		MaxMissingFraction: 0.5,
	}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAnnotationMissing)
}

func TestFilterWithoutMarkersOnlyChecksMissingness(t *testing.T) {
	m, _ := buildTestMatrix(t)

	filtered, _, result, err := Filter(m, dataset.Annotations{}, FilterOptions{
		MaxMissingFraction: 0.5,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Contaminants)
	assert.Equal(t, 0, result.Decoys)
	assert.Equal(t, 1, result.HighMissing)
	assert.Equal(t, []string{"P1", "P2", "P3"}, filtered.Rows)
}

func TestSummarize(t *testing.T) {
	m := dataset.NewMatrix([]string{"P1", "P2", "P3"}, []string{"S1", "S2"})
	m.Set(0, 0, 1)
	m.Set(1, 0, 2)
	m.Set(2, 0, 3)
	// S2 entirely missing

	summaries, err := Summarize(m)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	s1 := summaries[0]
	assert.Equal(t, "S1", s1.Sample)
	assert.Equal(t, 3, s1.Present)
	assert.Equal(t, 0, s1.Missing)
	assert.InDelta(t, 2.0, s1.Mean, 1e-12)
	assert.InDelta(t, 2.0, s1.Median, 1e-12)

	s2 := summaries[1]
	assert.Equal(t, 0, s2.Present)
	assert.Equal(t, 3, s2.Missing)
	assert.Equal(t, 0.0, s2.Mean)

	headers, records := SummaryRecords(summaries)
	assert.Len(t, headers, 8)
	assert.Len(t, records, 2)
	assert.Equal(t, "S1", records[0][0])
}
