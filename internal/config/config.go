package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mhollis/agentbench/internal/models"
)

// SimulationConfig holds the per-platform constants used by the simulated
// analysis path. These values are presentation-calibrated configuration data,
// not derived signal; they are kept here so a deployment can override them.
type SimulationConfig struct {
	// Confidence maps platform -> agent prototype -> confidence constant.
	Confidence map[string]map[string]float64 `yaml:"confidence"`

	// SecurityScore maps platform -> security score constant.
	SecurityScore map[string]int `yaml:"security_score"`
}

// ConfidenceFor returns the simulated confidence constant for the given
// platform and agent prototype, falling back to the default table for
// missing entries.
func (s SimulationConfig) ConfidenceFor(platform models.Platform, prototype string) float64 {
	if byProto, ok := s.Confidence[string(platform)]; ok {
		if c, ok := byProto[prototype]; ok {
			return c
		}
	}
	return defaultConfidence[string(platform)][prototype]
}

// SecurityScoreFor returns the simulated security score constant for the
// given platform, falling back to the default table for missing entries.
func (s SimulationConfig) SecurityScoreFor(platform models.Platform) int {
	if score, ok := s.SecurityScore[string(platform)]; ok {
		return score
	}
	return defaultSecurityScore[string(platform)]
}

// Default simulation constants. Live integrations score higher than the
// native platform, and the hubspot integration scores slightly higher than
// salesforce for the same prototype.
var defaultConfidence = map[string]map[string]float64{
	string(models.PlatformNative): {
		models.PrototypeSentiment:    0.88,
		models.PrototypeChurn:        0.85,
		models.PrototypeSegmentation: 0.82,
	},
	string(models.PlatformSalesforce): {
		models.PrototypeSentiment:    0.92,
		models.PrototypeChurn:        0.89,
		models.PrototypeSegmentation: 0.87,
	},
	string(models.PlatformHubSpot): {
		models.PrototypeSentiment:    0.94,
		models.PrototypeChurn:        0.91,
		models.PrototypeSegmentation: 0.89,
	},
}

var defaultSecurityScore = map[string]int{
	string(models.PlatformNative):     85,
	string(models.PlatformSalesforce): 90,
	string(models.PlatformHubSpot):    92,
}

// Config represents agentbench configuration options
type Config struct {
	// UserID is the authenticated user context runs execute under.
	// Runs are rejected when empty.
	UserID string `yaml:"user_id"`

	// Timeout bounds each platform call; a call that exceeds it resolves
	// to a failed result with a timeout error.
	Timeout time.Duration `yaml:"timeout"`

	// PacingDelay is the pause inserted between platform runs so progress
	// is observably incremental in interactive mode. Zero disables pacing.
	PacingDelay time.Duration `yaml:"pacing_delay"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// StorePath is the JSON file the accumulated result set persists to.
	StorePath string `yaml:"store_path"`

	// AuditDBPath is the sqlite database for the execution audit log.
	// Empty disables auditing.
	AuditDBPath string `yaml:"audit_db_path"`

	// SampleSize bounds how many records a single run analyzes.
	SampleSize int `yaml:"sample_size"`

	// DisableFallback turns off the simulated fallback path: a failed live
	// call becomes a terminal failure instead of degrading gracefully.
	DisableFallback bool `yaml:"disable_fallback"`

	// Endpoints maps a live platform name to its analysis endpoint URL.
	// Platforms without an endpoint use the simulated path only.
	Endpoints map[string]string `yaml:"endpoints"`

	// Simulation holds the simulated-path constant tables.
	Simulation SimulationConfig `yaml:"simulation"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Timeout:     60 * time.Second,
		PacingDelay: 300 * time.Millisecond,
		LogLevel:    "info",
		StorePath:   ".agentbench/results.json",
		AuditDBPath: ".agentbench/audit.db",
		SampleSize:  5,
		Endpoints:   map[string]string{},
	}
}

// MaxSampleSize caps the record sample regardless of configuration.
const MaxSampleSize = 10

// LoadConfig loads configuration from the specified file path.
// If the file doesn't exist, returns default configuration without error.
// If the file exists but is malformed, returns an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML
	// Use a temporary struct to handle duration parsing
	type yamlConfig struct {
		UserID          string            `yaml:"user_id"`
		Timeout         string            `yaml:"timeout"`
		PacingDelay     string            `yaml:"pacing_delay"`
		LogLevel        string            `yaml:"log_level"`
		StorePath       string            `yaml:"store_path"`
		AuditDBPath     string            `yaml:"audit_db_path"`
		SampleSize      int               `yaml:"sample_size"`
		DisableFallback bool              `yaml:"disable_fallback"`
		Endpoints       map[string]string `yaml:"endpoints"`
		Simulation      SimulationConfig  `yaml:"simulation"`
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply non-zero values from file (merging with defaults)
	if yamlCfg.UserID != "" {
		cfg.UserID = yamlCfg.UserID
	}
	if yamlCfg.Timeout != "" {
		timeout, err := time.ParseDuration(yamlCfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout format %q: %w", yamlCfg.Timeout, err)
		}
		cfg.Timeout = timeout
	}
	if yamlCfg.PacingDelay != "" {
		delay, err := time.ParseDuration(yamlCfg.PacingDelay)
		if err != nil {
			return nil, fmt.Errorf("invalid pacing_delay format %q: %w", yamlCfg.PacingDelay, err)
		}
		cfg.PacingDelay = delay
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	if yamlCfg.StorePath != "" {
		cfg.StorePath = yamlCfg.StorePath
	}
	if yamlCfg.AuditDBPath != "" {
		cfg.AuditDBPath = yamlCfg.AuditDBPath
	}
	if yamlCfg.SampleSize != 0 {
		cfg.SampleSize = yamlCfg.SampleSize
	}
	if yamlCfg.DisableFallback {
		cfg.DisableFallback = yamlCfg.DisableFallback
	}
	if len(yamlCfg.Endpoints) > 0 {
		cfg.Endpoints = yamlCfg.Endpoints
	}
	if yamlCfg.Simulation.Confidence != nil || yamlCfg.Simulation.SecurityScore != nil {
		cfg.Simulation = yamlCfg.Simulation
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadConfigFromDir loads configuration from .agentbench/config.yaml in the
// specified directory. Missing directory or file yields default configuration.
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(filepath.Join(dir, ".agentbench", "config.yaml"))
}

// Validate checks configuration values for consistency.
func (c *Config) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative: %v", c.Timeout)
	}
	if c.PacingDelay < 0 {
		return fmt.Errorf("pacing_delay cannot be negative: %v", c.PacingDelay)
	}
	if c.SampleSize < 0 {
		return fmt.Errorf("sample_size cannot be negative: %d", c.SampleSize)
	}
	if c.SampleSize > MaxSampleSize {
		return fmt.Errorf("sample_size %d exceeds maximum %d", c.SampleSize, MaxSampleSize)
	}
	for name := range c.Endpoints {
		if !models.Platform(name).Valid() {
			return fmt.Errorf("endpoint configured for unknown platform %q", name)
		}
	}
	return nil
}
