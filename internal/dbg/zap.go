// Package dbg builds the zap loggers the binaries run with. Both variants
// stamp ISO8601 timestamps under "ts" and drop caller info.
package dbg

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewDevLogger returns a console logger for interactive runs.
func NewDevLogger() *zap.Logger {
	cfg := zap.NewDevelopmentConfig()

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableCaller = true

	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return logger
}

// NewProdLogger returns a JSON logger for unattended runs.
func NewProdLogger() *zap.Logger {
	cfg := zap.NewProductionConfig()

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableCaller = true

	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return logger
}
