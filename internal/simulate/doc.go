// Package simulate synthesizes additional missing cells in a complete (or
// partially missing) intensity matrix under one of three mechanisms:
//
//   - MCAR: a round(nPresent * p) sized uniform sample of present cells.
//   - MNAR: every present cell strictly below the p-quantile of present
//     values (linear-interpolation quantile), so the realized missing
//     fraction follows the value distribution rather than p exactly.
//   - MAR: weighted sampling without replacement over present cells, with
//     each cell weighted by 1/(rowMean+eps), so low-abundance rows attract
//     more missingness.
//
// Every function takes an explicit random source and never mutates its
// input; a fixed seed reproduces a run exactly. MAR draws use the heap-based
// weighted reservoir in gonum's sampleuv.Weighted, where each draw removes
// the sampled cell and renormalizes the remaining pool.
package simulate
