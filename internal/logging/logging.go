// Package logging builds the process logger.
package logging

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects level, encoding and development mode.
type Config struct {
	Level       string `mapstructure:"level"`
	Format      string `mapstructure:"format"`
	Development bool   `mapstructure:"development"`
}

func DefaultConfig() Config {
	return Config{Level: "info", Format: "console"}
}

// ZapConfig translates cfg into a zap.Config.
func ZapConfig(cfg Config) (zap.Config, error) {
	var zc zap.Config
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	level := zapcore.InfoLevel
	if cfg.Level != "" {
		var err error
		if level, err = zapcore.ParseLevel(cfg.Level); err != nil {
			return zap.Config{}, errors.Wrap(err, "log level")
		}
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	switch cfg.Format {
	case "", "console":
		zc.Encoding = "console"
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	case "json":
		zc.Encoding = "json"
		zc.EncoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
	default:
		return zap.Config{}, errors.Errorf("unknown log format %q", cfg.Format)
	}

	// Per-frame debug lines must not be sampled away.
	zc.Sampling = nil
	return zc, nil
}

// New builds the logger described by cfg.
func New(cfg Config) (*zap.Logger, error) {
	zc, err := ZapConfig(cfg)
	if err != nil {
		return nil, err
	}
	logger, err := zc.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, errors.Wrap(err, "build logger")
	}
	return logger, nil
}
