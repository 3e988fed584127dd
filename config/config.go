// Package config provides the analyzer configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/memfoot/cachemodel"
	"github.com/sarchlab/memfoot/footprint"
	"github.com/sarchlab/memfoot/trace"
)

// Config holds the settings of one analysis run.
type Config struct {
	// SharedMemoryName is the shared memory object read when no trace file
	// is given. Default: the name the instrumentation runtime uses.
	SharedMemoryName string `json:"shared_memory_name"`

	// UnlinkSharedMemory removes the shared memory object after analysis.
	UnlinkSharedMemory bool `json:"unlink_shared_memory"`

	// MaxRecords stops the analysis after this many records. 0 means no limit.
	MaxRecords uint64 `json:"max_records"`

	// MaxRangeBytes bounds the span of one strided range expansion.
	MaxRangeBytes uint64 `json:"max_range_bytes"`

	// EchoPath, when set, receives every record as text.
	EchoPath string `json:"echo_path"`

	// RecordPath, when set, names the database iteration tuples are stored in.
	RecordPath string `json:"record_path"`

	// CacheReplay enables replaying working sets through L1 and L2.
	CacheReplay bool `json:"cache_replay"`

	L1 cachemodel.Config `json:"l1"`
	L2 cachemodel.Config `json:"l2"`

	// LogLevel is a logrus level name. Default: "info".
	LogLevel string `json:"log_level"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		SharedMemoryName: trace.DefaultSharedMemoryName,
		MaxRangeBytes:    footprint.DefaultMaxRangeBytes,
		L1:               cachemodel.DefaultL1DConfig(),
		L2:               cachemodel.DefaultL2Config(),
		LogLevel:         "info",
	}
}

// Load loads a Config from a JSON file. Fields missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// Save writes a Config to a JSON file.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	if c.SharedMemoryName == "" {
		result = multierror.Append(result, fmt.Errorf("shared_memory_name must not be empty"))
	}
	if c.MaxRangeBytes == 0 {
		result = multierror.Append(result, fmt.Errorf("max_range_bytes must be > 0"))
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		result = multierror.Append(result, fmt.Errorf("log_level: %w", err))
	}
	if c.CacheReplay {
		if err := c.L1.Validate(); err != nil {
			result = multierror.Append(result, fmt.Errorf("l1: %w", err))
		}
		if err := c.L2.Validate(); err != nil {
			result = multierror.Append(result, fmt.Errorf("l2: %w", err))
		}
	}

	return result.ErrorOrNil()
}

// Level returns the parsed log level, falling back to info.
func (c *Config) Level() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// Clone returns a deep copy of the Config.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
