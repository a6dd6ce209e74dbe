package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config contains configuration for the logger.
type Config struct {
	Format string // "json" or "human"
	Level  string // debug, info, warn, error
	File   string // optional extra output path
}

// DefaultConfig returns human readable info logging to stdout.
func DefaultConfig() Config {
	return Config{Format: "human", Level: "info"}
}

// New builds a zap logger from cfg.
func New(cfg Config) (*zap.Logger, error) {
	var zapConfig zap.Config
	if cfg.Format == "json" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	level := zapcore.InfoLevel
	if strings.TrimSpace(cfg.Level) != "" {
		if err := level.UnmarshalText([]byte(strings.ToLower(cfg.Level))); err != nil {
			return nil, fmt.Errorf("logger: invalid level %q: %w", cfg.Level, err)
		}
	}
	zapConfig.Level = zap.NewAtomicLevelAt(level)

	outputs := []string{"stdout"}
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, fmt.Errorf("logger: create log directory: %w", err)
		}
		outputs = append(outputs, cfg.File)
	}
	zapConfig.OutputPaths = outputs

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("logger: build: %w", err)
	}
	return logger.Named("vortex"), nil
}

// Must is New that panics on error, for command bootstrap.
func Must(cfg Config) *zap.Logger {
	logger, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return logger
}
