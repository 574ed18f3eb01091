// Package engine wires configuration into the toolbox served to the
// orchestrator: it builds the code-execution and forecast tools from a
// Config and registers them in a single ToolBox.
package engine

import (
	"github.com/M1ngY/sorano-ai-chat-tools-peter/pkg/chattools/forecast"
	"github.com/M1ngY/sorano-ai-chat-tools-peter/pkg/chattools/runcode"
	"github.com/M1ngY/sorano-ai-chat-tools-peter/pkg/tools/toolbox"
)

const (
	runCodeToolName  = "run_code"
	forecastToolName = "get_weather_forecast"
)

// Build constructs the ToolBox described by cfg. Zero-valued config fields
// fall back to the tool defaults (python3 interpreter, 10s execution timeout,
// public Open-Meteo endpoint).
func Build(cfg Config) (*toolbox.ToolBox, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	runner := runcode.New(runcode.Config{
		Interpreter:    cfg.Interpreter.Binary,
		Args:           cfg.Interpreter.Args,
		Timeout:        cfg.Interpreter.timeout(),
		MaxOutputBytes: cfg.Interpreter.MaxOutputBytes,
	})

	client := forecast.New(forecast.Config{
		BaseURL:          cfg.Forecast.BaseURL,
		Timeout:          cfg.Forecast.timeout(),
		MaxResponseBytes: cfg.Forecast.MaxResponseBytes,
	})

	tb := toolbox.New()
	tb.Merge(runner.Tools())
	tb.Merge(client.Tools())

	return tb.Filter(cfg.Tools), nil
}
