package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all adapter configuration.
type Config struct {
	Index    IndexConfig
	Search   SearchConfig
	Registry RegistryConfig
}

// IndexConfig holds Vamana build-time tuning knobs.
type IndexConfig struct {
	R          int     // Max out-degree per node (default: 32)
	L          int     // Build-time search list size (default: 100)
	Alpha      float32 // Robust-pruning diversification factor (default: 1.2)
	Dimensions int     // Vector dimensions (default: 768)
}

// SearchConfig holds query-time tuning knobs.
type SearchConfig struct {
	StrategyThreshold float32 // Brute-force selectivity cutoff (default: 0.1); not read by the adapter, which uses its own fixed 0.1
	DefaultLValue     int     // Default search list size when callers don't specify one (default: 100)
}

// RegistryConfig holds limits on how many indexes, and how much memory
// across them, a registry will accept.
type RegistryConfig struct {
	MaxIndexes     int    // 0 means unlimited
	MaxMemoryBytes uint64 // 0 means unlimited
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Index: IndexConfig{
			R:          32,
			L:          100,
			Alpha:      1.2,
			Dimensions: 768,
		},
		Search: SearchConfig{
			StrategyThreshold: 0.1,
			DefaultLValue:     100,
		},
		Registry: RegistryConfig{
			MaxIndexes:     0,
			MaxMemoryBytes: 0,
		},
	}
}

// LoadFromEnv loads configuration from environment variables, overlaying
// onto Default().
func LoadFromEnv() *Config {
	cfg := Default()

	if r := os.Getenv("VECTORIDX_R"); r != "" {
		if v, err := strconv.Atoi(r); err == nil {
			cfg.Index.R = v
		}
	}
	if l := os.Getenv("VECTORIDX_L"); l != "" {
		if v, err := strconv.Atoi(l); err == nil {
			cfg.Index.L = v
		}
	}
	if alpha := os.Getenv("VECTORIDX_ALPHA"); alpha != "" {
		if v, err := strconv.ParseFloat(alpha, 32); err == nil {
			cfg.Index.Alpha = float32(v)
		}
	}
	if dims := os.Getenv("VECTORIDX_DIMENSIONS"); dims != "" {
		if v, err := strconv.Atoi(dims); err == nil {
			cfg.Index.Dimensions = v
		}
	}

	if threshold := os.Getenv("VECTORIDX_STRATEGY_THRESHOLD"); threshold != "" {
		if v, err := strconv.ParseFloat(threshold, 32); err == nil {
			cfg.Search.StrategyThreshold = float32(v)
		}
	}
	if lval := os.Getenv("VECTORIDX_DEFAULT_L"); lval != "" {
		if v, err := strconv.Atoi(lval); err == nil {
			cfg.Search.DefaultLValue = v
		}
	}

	if maxIdx := os.Getenv("VECTORIDX_MAX_INDEXES"); maxIdx != "" {
		if v, err := strconv.Atoi(maxIdx); err == nil {
			cfg.Registry.MaxIndexes = v
		}
	}
	if maxMem := os.Getenv("VECTORIDX_MAX_MEMORY_BYTES"); maxMem != "" {
		if v, err := strconv.ParseUint(maxMem, 10, 64); err == nil {
			cfg.Registry.MaxMemoryBytes = v
		}
	}

	return cfg
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Index.R < 2 {
		return fmt.Errorf("invalid R: %d (must be >= 2)", c.Index.R)
	}
	if c.Index.L < c.Index.R {
		return fmt.Errorf("invalid L: %d (must be >= R=%d)", c.Index.L, c.Index.R)
	}
	if c.Index.Alpha < 1.0 {
		return fmt.Errorf("invalid alpha: %f (must be >= 1.0)", c.Index.Alpha)
	}
	if c.Index.Dimensions < 1 {
		return fmt.Errorf("invalid dimensions: %d (must be > 0)", c.Index.Dimensions)
	}

	if c.Search.StrategyThreshold <= 0 || c.Search.StrategyThreshold > 1 {
		return fmt.Errorf("invalid strategy threshold: %f (must be in (0, 1])", c.Search.StrategyThreshold)
	}
	if c.Search.DefaultLValue < 1 {
		return fmt.Errorf("invalid default l_value: %d (must be > 0)", c.Search.DefaultLValue)
	}

	if c.Registry.MaxIndexes < 0 {
		return fmt.Errorf("invalid max indexes: %d (must be >= 0)", c.Registry.MaxIndexes)
	}

	return nil
}
