// Package main implements bipstream, a driver that pushes generated data
// through a bip buffer from a producer goroutine to a consumer goroutine and
// verifies the round trip.
package main

import (
	"context"
	stderrors "errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/c360/bipstream/config"
	"github.com/c360/bipstream/errors"
	"github.com/c360/bipstream/metric"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "bipstream"
)

// Exit codes
const (
	exitFailure     = 1   // fatal: mismatch, corruption, unreadable config
	exitUsage       = 2   // invalid flags or configuration
	exitPanic       = 3   // recovered panic
	exitInterrupted = 130 // cancelled by SIGINT or SIGTERM
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(exitPanic)
		}
	}()

	if err := run(os.Args[1:], os.Stdout); err != nil {
		code := exitCode(err)
		slog.Error("Application failed", "error", err, "class", errors.Classify(err).String(), "exit_code", code)
		os.Exit(code)
	}
}

// exitCode maps the class of a run error to the process exit status
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	switch errors.Classify(err) {
	case errors.ErrorInvalid:
		return exitUsage
	case errors.ErrorTransient:
		return exitInterrupted
	default:
		return exitFailure
	}
}

func run(args []string, stdout io.Writer) error {
	cli, err := parseFlags(args, os.Stderr)
	if stderrors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return errors.WrapInvalid(err, "main", "run", "parse flags")
	}

	if cli.ShowVersion {
		_, _ = fmt.Fprintf(stdout, "%s version %s\n", appName, Version)
		return nil
	}

	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log.Level, cfg.Log.Format, stdout)
	slog.SetDefault(logger)

	if cli.Validate {
		logger.Info("Configuration is valid", "config_path", cli.ConfigPath)
		return nil
	}

	logger.Info("Starting bipstream",
		"build_time", BuildTime,
		"config_path", cli.ConfigPath,
		"mode", cfg.Buffer.Mode,
		"capacity", cfg.Buffer.Capacity,
		"data_size", cfg.Workload.DataSize,
		"runs", cfg.Workload.Runs)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := metric.NewMetricsRegistry()
	if cfg.Metrics.Enabled {
		srv := metric.NewServer(cfg.Metrics.Port, cfg.Metrics.Path, registry)
		go func() {
			if err := srv.Start(); err != nil {
				logger.Error("Metrics server failed", "error", err)
			}
		}()
		defer func() {
			if err := srv.Stop(); err != nil {
				logger.Warn("Metrics server shutdown failed", "error", err)
			}
		}()
		logger.Info("Serving metrics", "address", srv.Address())
	}

	return newDriver(cfg, logger, registry).Run(ctx)
}

// loadConfig resolves defaults, the config file, the environment and flags
func loadConfig(cli *CLIConfig) (*config.Config, error) {
	loader := config.NewLoader()
	for key, value := range cli.Overrides {
		loader.Set(key, value)
	}

	cfg, err := loader.Load(cli.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
