package config

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a production logger for env "prod" and a development
// logger otherwise, at the configured level.
func NewLogger(server ServerConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(server.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", server.LogLevel, err)
	}

	var cfg zap.Config
	if server.Env == "prod" || server.Env == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	return cfg.Build()
}
