// Package config loads the service configuration from YAML with environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix prefixes every environment override, e.g. AYUR_HTTP_PORT. Keys
// are always prefixed so unrelated variables such as PATH are never read.
const EnvPrefix = "AYUR"

type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Log       LogConfig       `yaml:"log"`
	Database  DatabaseConfig  `yaml:"database"`
	Model     ModelConfig     `yaml:"model"`
	Predictor PredictorConfig `yaml:"predictor"`
	Catalog   CatalogConfig   `yaml:"catalog"`
}

type HTTPConfig struct {
	Port           int           `yaml:"port" split_words:"true"`
	Timeout        time.Duration `yaml:"timeout" split_words:"true"`
	MaxBodyBytes   int64         `yaml:"max_body_bytes" split_words:"true"`
	AllowedOrigins []string      `yaml:"allowed_origins" split_words:"true"`
}

type LogConfig struct {
	Level  string `yaml:"level" split_words:"true"`
	Format string `yaml:"format" split_words:"true"` // json|console
	// File enables rotated file output in addition to stdout.
	File       string `yaml:"file" split_words:"true"`
	MaxSizeMB  int    `yaml:"max_size_mb" split_words:"true"`
	MaxBackups int    `yaml:"max_backups" split_words:"true"`
	MaxAgeDays int    `yaml:"max_age_days" split_words:"true"`
}

type DatabaseConfig struct {
	Path string `yaml:"path" split_words:"true"`
}

type ModelConfig struct {
	VectorizerPath string  `yaml:"vectorizer_path" split_words:"true"`
	ModelPath      string  `yaml:"model_path" split_words:"true"`
	DatasetPath    string  `yaml:"dataset_path" split_words:"true"`
	Type           string  `yaml:"type" split_words:"true"`
	Estimators     int     `yaml:"estimators" split_words:"true"`
	MaxDepth       int     `yaml:"max_depth" split_words:"true"`
	MaxFeatures    int     `yaml:"max_features" split_words:"true"`
	TestRatio      float64 `yaml:"test_ratio" split_words:"true"`
	Seed           int64   `yaml:"seed" split_words:"true"`
}

type PredictorConfig struct {
	Threshold float64 `yaml:"threshold" split_words:"true"`
	CacheSize int     `yaml:"cache_size" split_words:"true"`
	Watch     bool    `yaml:"watch" split_words:"true"`
}

type CatalogConfig struct {
	Path string `yaml:"path" split_words:"true"`
}

// Default returns the configuration used when no file sets a value.
func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Port:         8080,
			Timeout:      30 * time.Second,
			MaxBodyBytes: 1 << 20,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "json",
			MaxSizeMB:  100,
			MaxBackups: 5,
			MaxAgeDays: 30,
		},
		Database: DatabaseConfig{
			Path: "data/ayurpredict.db",
		},
		Model: ModelConfig{
			VectorizerPath: "models/vectorizer.msgpack",
			ModelPath:      "models/forest.msgpack",
			DatasetPath:    "data/ayurvedic_symptoms_dataset.csv",
			Type:           "random_forest",
			Estimators:     100,
			MaxFeatures:    1000,
			TestRatio:      0.2,
			Seed:           42,
		},
		Predictor: PredictorConfig{
			Threshold: 30,
			CacheSize: 1024,
			Watch:     true,
		},
	}
}

// Load reads path over the defaults, then applies a .env file if present and
// AYUR_* environment variables. A missing file is not an error when path is
// empty.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
	}

	_ = godotenv.Load()
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("process env config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port %d out of range", c.HTTP.Port)
	}
	if c.Predictor.Threshold < 0 || c.Predictor.Threshold > 100 {
		return fmt.Errorf("predictor.threshold %.2f must be a percentage", c.Predictor.Threshold)
	}
	if c.Model.VectorizerPath == "" || c.Model.ModelPath == "" {
		return errors.New("model.vectorizer_path and model.model_path are required")
	}
	if c.Model.TestRatio <= 0 || c.Model.TestRatio >= 1 {
		return fmt.Errorf("model.test_ratio %.2f must be between 0 and 1", c.Model.TestRatio)
	}
	switch c.Model.Type {
	case "random_forest", "decision_tree":
	default:
		return fmt.Errorf("model.type %q is not supported", c.Model.Type)
	}
	return nil
}
