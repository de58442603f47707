// Package logx builds the zap logger used across guidebook and carries it in
// a context.Context so that deep call sites do not need a logger parameter.
package logx

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls logger construction.
type Config struct {
	Level   string `json:"level,omitempty" yaml:"level,omitempty"`
	Format  string `json:"format,omitempty" yaml:"format,omitempty"` // console or json
	Verbose bool   `json:"verbose,omitempty" yaml:"verbose,omitempty"`
	Quiet   bool   `json:"quiet,omitempty" yaml:"quiet,omitempty"`
}

// New creates a logger writing to w (stderr when nil). Verbose forces debug
// level, Quiet raises the level to warn.
func New(cfg Config, w io.Writer) (*zap.Logger, error) {
	if w == nil {
		w = os.Stderr
	}
	level, err := parseLevel(cfg)
	if err != nil {
		return nil, err
	}
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.TimeKey = ""
	var encoder zapcore.Encoder
	switch strings.ToLower(cfg.Format) {
	case "json":
		encoderConfig = zap.NewProductionEncoderConfig()
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	case "", "console":
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	default:
		return nil, fmt.Errorf("unsupported log format: %s", cfg.Format)
	}
	core := zapcore.NewCore(encoder, zapcore.AddSync(w), level)
	return zap.New(core), nil
}

func parseLevel(cfg Config) (zapcore.Level, error) {
	switch {
	case cfg.Verbose:
		return zapcore.DebugLevel, nil
	case cfg.Quiet:
		return zapcore.WarnLevel, nil
	case cfg.Level == "":
		return zapcore.InfoLevel, nil
	}
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return level, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	return level, nil
}

type key struct{}

// WithLogger returns a context carrying logger.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, key{}, logger)
}

// FromContext returns the context logger or a no-op logger.
func FromContext(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(key{}).(*zap.Logger); ok && logger != nil {
			return logger
		}
	}
	return zap.NewNop()
}
