package audit

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ogulcanaydogan/fairparity/internal/dataset"
	"github.com/ogulcanaydogan/fairparity/internal/parity"
	"github.com/ogulcanaydogan/fairparity/pkg/schema"
)

// Config describes one audit run: where the data lives, which columns to
// read, and which metrics to compute.
type Config struct {
	Dataset          dataset.Source  `yaml:"dataset"`
	Columns          dataset.Columns `yaml:"columns"`
	Levels           []string        `yaml:"levels"`
	Cutoff           *float64        `yaml:"cutoff"`
	Base             string          `yaml:"base"`
	Metrics          []string        `yaml:"metrics"`
	DeterminismCheck int             `yaml:"determinism_check"`
}

// SchemaError reports a config that does not match the audit config schema.
type SchemaError struct {
	Path   string
	Errors []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("config %s failed schema validation: %s", e.Path, strings.Join(e.Errors, "; "))
}

func LoadConfig(path string, out any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// ReadConfig loads an audit config, validates it against the embedded schema
// and resolves the dataset path relative to the config file.
func ReadConfig(path string) (Config, error) {
	var doc map[string]any
	if err := LoadConfig(path, &doc); err != nil {
		return Config{}, err
	}
	errs, err := schema.ValidateDocument(schema.AuditConfig, doc)
	if err != nil {
		return Config{}, err
	}
	if len(errs) > 0 {
		return Config{}, &SchemaError{Path: path, Errors: errs}
	}
	var cfg Config
	if err := LoadConfig(path, &cfg); err != nil {
		return Config{}, err
	}
	cfg.Dataset.Path = resolvePath(path, cfg.Dataset.Path)
	return cfg, nil
}

func (c Config) levels() (parity.Levels, error) {
	switch len(c.Levels) {
	case 0:
		return parity.DefaultLevels(), nil
	case 2:
		return parity.Levels{Negative: c.Levels[0], Positive: c.Levels[1]}, nil
	default:
		return parity.Levels{}, fmt.Errorf("levels must name exactly two outcome classes, got %d", len(c.Levels))
	}
}

func (c Config) cutoff() float64 {
	if c.Cutoff == nil {
		return parity.DefaultCutoff
	}
	return *c.Cutoff
}

// metrics parses the configured metric tags. With none configured every
// catalog metric is used, except ROC AUC when no score column is named.
func (c Config) metrics() ([]parity.Metric, error) {
	if len(c.Metrics) == 0 {
		out := make([]parity.Metric, 0)
		for _, def := range parity.Catalog() {
			if def.Metric == parity.ROCAUC && c.Columns.Score == "" {
				continue
			}
			out = append(out, def.Metric)
		}
		return out, nil
	}
	out := make([]parity.Metric, 0, len(c.Metrics))
	for _, s := range c.Metrics {
		m, err := parity.ParseMetric(s)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func resolvePath(configPath, candidate string) string {
	if candidate == "" || filepath.IsAbs(candidate) {
		return candidate
	}
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	joined := filepath.Clean(filepath.Join(filepath.Dir(configPath), candidate))
	if _, err := os.Stat(joined); err == nil {
		return joined
	}
	return candidate
}
