package main

import (
	"emperror.dev/errors"
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"heaplru/internal/config"
)

// newLogger builds a zap logger for cfg and exposes it as a logr.Logger.
// The returned func flushes buffered entries.
//
// zap levels are negated logr verbosities, so "debug" enables V(1).
func newLogger(cfg config.Config) (logr.Logger, func() error, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return logr.Logger{}, nil, errors.WrapWithDetails(err, "parse log level", "level", cfg.LogLevel)
	}

	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}

	zc.Level = zap.NewAtomicLevelAt(level)
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	zl, err := zc.Build()
	if err != nil {
		return logr.Logger{}, nil, errors.Wrap(err, "build logger")
	}

	return zapr.NewLogger(zl), zl.Sync, nil
}
