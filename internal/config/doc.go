// Package config loads and validates the pipeline configuration. Defaults
// and environment variables (prefix MSIMPUTE_) are applied first, then an
// optional YAML file overrides them, and the merged result is validated
// before any stage runs so configuration errors abort early.
package config
