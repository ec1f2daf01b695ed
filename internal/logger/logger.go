// Package logger builds the service-wide zap logger and carries
// request-scoped loggers through contexts.
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger returns a zap logger tuned for the given environment: prod logs
// JSON, local/dev/docker log human-readable console output. A non-empty level
// (debug, info, warn, error) overrides the environment default.
func NewLogger(env, level string) (*zap.Logger, error) {
	cfg, err := baseConfig(env)
	if err != nil {
		return nil, err
	}

	if level != "" {
		var lvl zapcore.Level
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	l, err := cfg.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return l, nil
}

func baseConfig(env string) (zap.Config, error) {
	switch env {
	case "prod":
		return zap.NewProductionConfig(), nil
	case "local", "dev", "docker":
		return zap.NewDevelopmentConfig(), nil
	default:
		return zap.Config{}, fmt.Errorf("unknown environment %q for logger", env)
	}
}
