package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"cstrlit/internal/driver"
)

var cliLogger = zap.NewNop()

// setupLogging builds a console logger on stderr when --log-level is set.
// Without the flag every package keeps its no-op logger.
func setupLogging(cmd *cobra.Command, _ []string) error {
	level, err := cmd.Root().PersistentFlags().GetString("log-level")
	if err != nil {
		return fmt.Errorf("failed to get log-level flag: %w", err)
	}
	level = strings.TrimSpace(level)
	if level == "" {
		return nil
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", level, err)
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	if useColor(cmd) {
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	logger, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	cliLogger = logger.Named("cstrlit")
	driver.SetLogger(logger.Named("driver"))
	cliLogger.Debug("logging enabled", zap.String("command", cmd.Name()), zap.Stringer("level", lvl))
	return nil
}

func syncLogger() {
	_ = cliLogger.Sync()
}
