// Package pipeline sequences the two analysis stages as explicit steps with
// shared state: load, quality filter, transform/normalize, missingness
// simulation, export, and the imputation sweep. Each run carries a UUID, a
// manifest of produced artifacts, and per-step timing in the log. Steps run
// strictly in order; a failing step aborts the run with the manifest
// recording what completed.
package pipeline
