// Package exporter persists pipeline artifacts: the complete normalized
// matrix, every missingness variant, imputed results, and the tabular
// reports. All writers create their target directory on demand, and matrix
// values are serialized with full float64 precision so exports round-trip
// exactly through the dataset reader.
package exporter
