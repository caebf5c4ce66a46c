package config

import (
	_ "embed"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed models.yaml
var modelsYAML []byte

type Config struct {
	Detector DetectorConfig
	Registry RegistryConfig
	Database DatabaseConfig
	Trigger  TriggerConfig
	Models   ModelsConfig
}

type DetectorConfig struct {
	URL   string // defaults to http://localhost:8000
	Model string // defaults to facenet
}

type RegistryConfig struct {
	Path      string  // path to the durable user registry file
	Threshold float64 // maximum embedding distance for a match; 0 means use model calibration
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL; empty means file-backed registry
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type TriggerConfig struct {
	Cooldown time.Duration // minimum interval between accepted triggers
}

type ModelsConfig struct {
	Models map[string]ModelCalibration `yaml:"models"`
}

// ModelCalibration holds the per-model descriptor dimensionality and the
// empirically chosen distance threshold for that model.
type ModelCalibration struct {
	Dim       int     `yaml:"dim"`
	Threshold float64 `yaml:"threshold"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a positive float.
// Returns the default value if the env var is unset, empty, or invalid.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

func Load() *Config {
	var models ModelsConfig
	if err := yaml.Unmarshal(modelsYAML, &models); err != nil {
		// This is an embedded file so this error should never happen in practice.
		panic("failed to unmarshal embedded models.yaml: " + err.Error())
	}

	return &Config{
		Detector: DetectorConfig{
			URL:   os.Getenv("DETECTOR_URL"),
			Model: os.Getenv("DETECTOR_MODEL"),
		},
		Registry: RegistryConfig{
			Path:      os.Getenv("REGISTRY_PATH"),
			Threshold: envFloat("MATCH_THRESHOLD", 0),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Trigger: TriggerConfig{
			Cooldown: time.Duration(envInt("TRIGGER_COOLDOWN_MS", 3000)) * time.Millisecond,
		},
		Models: models,
	}
}

const (
	defaultModel     = "facenet"
	defaultDim       = 128
	defaultThreshold = 0.45
)

// ModelName returns the configured detector model, or the default.
func (c *Config) ModelName() string {
	if c.Detector.Model != "" {
		return c.Detector.Model
	}
	return defaultModel
}

// Calibration returns dim and threshold for the configured model.
// Unknown models fall back to the default calibration so that a
// misconfigured model name cannot silently disable matching.
func (c *Config) Calibration() ModelCalibration {
	if cal, ok := c.Models.Models[c.ModelName()]; ok {
		return cal
	}
	return ModelCalibration{Dim: defaultDim, Threshold: defaultThreshold}
}

// MatchThreshold returns the distance threshold: the MATCH_THRESHOLD env
// override when set, otherwise the calibration value for the model.
func (c *Config) MatchThreshold() float64 {
	if c.Registry.Threshold > 0 {
		return c.Registry.Threshold
	}
	return c.Calibration().Threshold
}

// DescriptorDim returns the expected descriptor vector length for the
// configured model.
func (c *Config) DescriptorDim() int {
	return c.Calibration().Dim
}

// RegistryPath returns the path of the durable registry file, with a
// default next to the working directory.
func (c *Config) RegistryPath() string {
	if c.Registry.Path != "" {
		return c.Registry.Path
	}
	return "./data/users.json"
}
