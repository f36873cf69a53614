// Package dataset provides the feature-by-sample intensity matrix that the
// rest of the pipeline operates on, together with loaders for raw intensity
// tables (CSV, TSV, and Excel), sample metadata handling, and the train/test
// split helper.
//
// # Data Model
//
// A Matrix holds one row per protein group and one column per sample. A
// missing measurement is represented by NaN, which keeps it distinct from a
// measured zero and survives arithmetic without special casing.
//
// # Data Flow
//
// The typical flow through this package:
//
//	Raw table → LoadTable → BuildMatrix → Log2Transform → downstream packages
//
// Variant CSVs written by the exporter are read back with ReadMatrixCSV,
// which round-trips identifiers and values exactly.
package dataset
