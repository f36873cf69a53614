package dataset

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
)

// Split partitions the matrix rows into a train and a test matrix. testFrac
// is the fraction of rows assigned to the test set; the split is a uniform
// row permutation driven by the supplied source, so a fixed seed reproduces
// the same partition.
func Split(m *Matrix, testFrac float64, rng *rand.Rand) (train, test *Matrix, err error) {
	if testFrac < 0 || testFrac > 1 {
		return nil, nil, fmt.Errorf("split: test fraction %v outside [0, 1]", testFrac)
	}
	n := len(m.Rows)
	nTest := int(math.Round(float64(n) * testFrac))

	perm := rng.Perm(n)
	testIdx := append([]int(nil), perm[:nTest]...)
	trainIdx := append([]int(nil), perm[nTest:]...)

	train, err = m.SelectRows(trainIdx)
	if err != nil {
		return nil, nil, fmt.Errorf("split train rows: %w", err)
	}
	test, err = m.SelectRows(testIdx)
	if err != nil {
		return nil, nil, fmt.Errorf("split test rows: %w", err)
	}
	return train, test, nil
}
