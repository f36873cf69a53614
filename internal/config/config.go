package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// envPrefix namespaces the environment variables read by Load.
const envPrefix = "MSIMPUTE"

// Config is the complete pipeline configuration.
type Config struct {
	Input      InputConfig      `yaml:"input" envconfig:"INPUT"`
	Output     OutputConfig     `yaml:"output" envconfig:"OUTPUT"`
	Filter     FilterConfig     `yaml:"filter" envconfig:"FILTER"`
	Simulation SimulationConfig `yaml:"simulation" envconfig:"SIMULATION"`
	Imputation ImputationConfig `yaml:"imputation" envconfig:"IMPUTATION"`
	Split      SplitConfig      `yaml:"split" envconfig:"SPLIT"`
	Logging    LoggingConfig    `yaml:"logging" envconfig:"LOGGING"`
}

// InputConfig locates and describes the raw data.
type InputConfig struct {
	// RawPath is the raw intensity table (CSV, TSV/TXT, or XLSX).
	RawPath string `yaml:"raw_path" envconfig:"RAW_PATH" validate:"required"`
	// MetadataPath is the optional sample metadata table.
	MetadataPath string `yaml:"metadata_path" envconfig:"METADATA_PATH"`
	// IDColumn names the unique row identifier column; empty means the
	// first column.
	IDColumn string `yaml:"id_column" envconfig:"ID_COLUMN" default:"Protein IDs"`
	// IntensityPattern selects intensity columns by header name.
	IntensityPattern string `yaml:"intensity_pattern" envconfig:"INTENSITY_PATTERN" default:"^Intensity " validate:"required"`
	// SamplePrefix is stripped from intensity column names when joining
	// against metadata sample identifiers.
	SamplePrefix string `yaml:"sample_prefix" envconfig:"SAMPLE_PREFIX" default:"Intensity "`
	// MetadataSampleColumn and MetadataConditionColumn name the metadata
	// join and label columns; empty means first and second column.
	MetadataSampleColumn    string `yaml:"metadata_sample_column" envconfig:"METADATA_SAMPLE_COLUMN"`
	MetadataConditionColumn string `yaml:"metadata_condition_column" envconfig:"METADATA_CONDITION_COLUMN"`
}

// OutputConfig locates the run artifacts.
type OutputConfig struct {
	Dir string `yaml:"dir" envconfig:"DIR" default:"output" validate:"required"`
}

// FilterConfig controls the quality filter.
type FilterConfig struct {
	ContaminantColumn  string  `yaml:"contaminant_column" envconfig:"CONTAMINANT_COLUMN" default:"Potential contaminant"`
	ReverseColumn      string  `yaml:"reverse_column" envconfig:"REVERSE_COLUMN" default:"Reverse"`
	Marker             string  `yaml:"marker" envconfig:"MARKER" default:"+"`
	MaxMissingFraction float64 `yaml:"max_missing_fraction" envconfig:"MAX_MISSING_FRACTION" default:"0.5" validate:"gte=0,lte=1"`
}

// SimulationConfig controls missingness synthesis.
type SimulationConfig struct {
	// Proportions are the target additional-missingness fractions.
	Proportions []float64 `yaml:"proportions" envconfig:"PROPORTIONS" default:"0.1,0.2,0.3" validate:"min=1,dive,gte=0,lte=1"`
	// Mechanisms are applied per proportion, in order.
	Mechanisms []string `yaml:"mechanisms" envconfig:"MECHANISMS" default:"MCAR,MAR,MNAR" validate:"min=1,dive,oneof=MCAR MAR MNAR"`
	// Seed drives every random draw; a fixed seed reproduces a run.
	Seed uint64 `yaml:"seed" envconfig:"SEED" default:"42"`
}

// ImputationConfig controls the sweep over imputation strategies.
type ImputationConfig struct {
	Strategies []string `yaml:"strategies" envconfig:"STRATEGIES" default:"mean,median,knn" validate:"min=1,dive,oneof=mean median knn iterative"`
	// KNeighbors is k for the knn strategy.
	KNeighbors int `yaml:"k_neighbors" envconfig:"K_NEIGHBORS" default:"5" validate:"gt=0"`
	// MaxIterations and Tolerance bound the iterative strategy.
	MaxIterations int     `yaml:"max_iterations" envconfig:"MAX_ITERATIONS" default:"10" validate:"gt=0"`
	Tolerance     float64 `yaml:"tolerance" envconfig:"TOLERANCE" default:"0.001" validate:"gt=0"`
	// Parallelism bounds concurrent (dataset, strategy) pairs; 1 keeps the
	// sweep sequential.
	Parallelism int `yaml:"parallelism" envconfig:"PARALLELISM" default:"1" validate:"gt=0"`
}

// SplitConfig configures the train/test split for downstream modeling.
type SplitConfig struct {
	TestFraction float64 `yaml:"test_fraction" envconfig:"TEST_FRACTION" default:"0.3" validate:"gte=0,lte=1"`
	Seed         uint64  `yaml:"seed" envconfig:"SEED" default:"42"`
}

// LoggingConfig configures the slog handler set up by the binaries.
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" envconfig:"FORMAT" default:"text" validate:"oneof=text json"`
}

// Load builds the configuration: defaults and environment first, then the
// YAML file at path (if path is non-empty) overriding them, then validation.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("load config from environment: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
