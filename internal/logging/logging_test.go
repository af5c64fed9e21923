package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ironsheep/geo-features-mcp/internal/config"
)

func TestConfig(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.LogConfig
		env       string
		wantLevel zapcore.Level
		wantEnc   string
		wantErr   bool
	}{
		{"production default", config.LogConfig{Mode: config.ModeProduction}, "", zapcore.InfoLevel, "json", false},
		{"production warn", config.LogConfig{Level: "warn", Mode: config.ModeProduction}, "", zapcore.WarnLevel, "json", false},
		{"development", config.LogConfig{Level: "info", Mode: config.ModeDevelopment}, "", zapcore.InfoLevel, "console", false},
		{"env override", config.LogConfig{Level: "error", Mode: config.ModeProduction}, "debug", zapcore.DebugLevel, "json", false},
		{"upper case", config.LogConfig{Level: "WARN", Mode: config.ModeProduction}, "", zapcore.WarnLevel, "json", false},
		{"bad level", config.LogConfig{Level: "chatty", Mode: config.ModeProduction}, "", 0, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(LevelEnv, tt.env)

			zc, err := Config(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Config() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got := zc.Level.Level(); got != tt.wantLevel {
				t.Errorf("level: got %v, want %v", got, tt.wantLevel)
			}
			if zc.Encoding != tt.wantEnc {
				t.Errorf("encoding: got %q, want %q", zc.Encoding, tt.wantEnc)
			}
			if len(zc.OutputPaths) != 1 || zc.OutputPaths[0] != "stderr" {
				t.Errorf("output paths: got %v", zc.OutputPaths)
			}
		})
	}
}

func TestNew_ReplacesGlobals(t *testing.T) {
	t.Setenv(LevelEnv, "")
	defer zap.ReplaceGlobals(zap.NewNop())

	logger, err := New(config.LogConfig{Level: "debug", Mode: config.ModeProduction})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if zap.L() != logger {
		t.Error("global logger was not replaced")
	}
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug level should be enabled")
	}
	Sync()
}
