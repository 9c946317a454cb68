package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"planfill/internal/config"
)

// New builds a zap logger from log settings. Format "json" selects the
// production encoder; anything else selects the console encoder.
func New(cfg config.LogConfig) (*zap.Logger, error) {
	var zc zap.Config
	if cfg.Format == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	return zc.Build()
}
