// Package logging builds the process-wide zap logger.
//
// Logs always go to stderr: stdout carries the MCP protocol stream.
package logging

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ironsheep/geo-features-mcp/internal/config"
)

// LevelEnv overrides the configured level when set.
const LevelEnv = "IMAGE_MCP_LOG_LEVEL"

// New builds a logger for cfg and installs it as the zap global.
func New(cfg config.LogConfig) (*zap.Logger, error) {
	zc, err := Config(cfg)
	if err != nil {
		return nil, err
	}
	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}

// Config returns the zap configuration New would build from.
func Config(cfg config.LogConfig) (zap.Config, error) {
	var zc zap.Config
	if cfg.Mode == config.ModeDevelopment {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zc = zap.NewProductionConfig()
	}

	level := cfg.Level
	if env := os.Getenv(LevelEnv); env != "" {
		level = env
	}
	if level != "" {
		lvl, err := zapcore.ParseLevel(strings.ToLower(level))
		if err != nil {
			return zap.Config{}, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		zc.Level = zap.NewAtomicLevelAt(lvl)
	}

	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	return zc, nil
}

// Sync flushes the global logger, ignoring the EINVAL some terminals return.
func Sync() {
	_ = zap.L().Sync()
}
