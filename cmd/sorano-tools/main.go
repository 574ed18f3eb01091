// Command sorano-tools serves the sorano chat tools (run_code and
// get_weather_forecast) to an agent orchestrator over the MCP stdio
// transport. The orchestrator spawns this binary, lists the tools, and
// invokes them by name; all protocol traffic flows over stdin/stdout, so
// diagnostics go to stderr.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/M1ngY/sorano-ai-chat-tools-peter/pkg/engine"
	"github.com/M1ngY/sorano-ai-chat-tools-peter/pkg/tools/mcpserver"
	"github.com/joho/godotenv"
)

const (
	serverName = "sorano-tools"
	version    = "0.1.0"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("%s %s\n", serverName, version)
		return
	}

	configPath := flag.String("config", "", "path to configuration file (optional; defaults apply without one)")
	envFile := flag.String("env", ".env", "path to .env file (ignored if missing)")
	interpreter := flag.String("interpreter", "", "override the script interpreter binary")
	baseURL := flag.String("forecast-url", "", "override the forecast provider base URL")
	flag.Parse()

	if err := loadDotEnv(*envFile); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := run(*configPath, *interpreter, *baseURL); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadDotEnv loads environment variables from path. If the file does not exist
// it is silently ignored so that .env files remain optional.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// run builds the toolbox from configuration and serves it over stdio until
// the orchestrator disconnects or the process is signalled.
func run(configPath, interpreter, baseURL string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var cfg engine.Config
	if configPath != "" {
		loaded, err := engine.LoadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	if interpreter != "" {
		cfg.Interpreter.Binary = interpreter
	}
	if baseURL != "" {
		cfg.Forecast.BaseURL = baseURL
	}

	tb, err := engine.Build(cfg)
	if err != nil {
		return err
	}

	srv := mcpserver.New(serverName, version)
	srv.Register(tb.Tools()...)

	if err := srv.Serve(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
