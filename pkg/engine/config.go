package engine

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration. All knobs the tools depend on
// (interpreter binary, timeouts, caps, provider base URL) live here as
// explicit values rather than hidden globals, so tests and deployments can
// substitute a fake interpreter or a mock forecast endpoint.
type Config struct {
	Interpreter InterpreterConfig `yaml:"interpreter"`
	Forecast    ForecastConfig    `yaml:"forecast"`
	// Tools optionally restricts which tools are exposed. Empty means all.
	Tools []string `yaml:"tools"`
}

// InterpreterConfig holds code-execution tool settings.
type InterpreterConfig struct {
	Binary         string   `yaml:"binary"`
	Args           []string `yaml:"args"`
	TimeoutSeconds int      `yaml:"timeout_seconds"`
	MaxOutputBytes int64    `yaml:"max_output_bytes"`
}

// ForecastConfig holds forecast tool settings.
type ForecastConfig struct {
	BaseURL          string `yaml:"base_url"`
	TimeoutSeconds   int    `yaml:"timeout_seconds"`
	MaxResponseBytes int64  `yaml:"max_response_bytes"`
}

// LoadConfig reads a YAML file and returns a Config.
// Environment variables referenced as ${VAR} or $VAR in the YAML are expanded
// before parsing, so deployment-specific values (e.g. an internal forecast
// mirror URL) can be kept in the environment rather than committed in the
// config.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-provided configuration, not user input
	if err != nil {
		return Config{}, fmt.Errorf("engine: load config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return Config{}, fmt.Errorf("engine: parse config: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration is internally consistent. Zero
// values are allowed everywhere and select the tool defaults.
func (c Config) Validate() error {
	if c.Interpreter.TimeoutSeconds < 0 {
		return fmt.Errorf("engine: config: interpreter timeout_seconds must not be negative")
	}
	if c.Interpreter.MaxOutputBytes < 0 {
		return fmt.Errorf("engine: config: interpreter max_output_bytes must not be negative")
	}
	if c.Forecast.TimeoutSeconds < 0 {
		return fmt.Errorf("engine: config: forecast timeout_seconds must not be negative")
	}
	if c.Forecast.MaxResponseBytes < 0 {
		return fmt.Errorf("engine: config: forecast max_response_bytes must not be negative")
	}

	known := map[string]struct{}{runCodeToolName: {}, forecastToolName: {}}
	for _, name := range c.Tools {
		if _, ok := known[name]; !ok {
			return fmt.Errorf("engine: config: unknown tool %q", name)
		}
	}

	return nil
}

func (c InterpreterConfig) timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c ForecastConfig) timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
