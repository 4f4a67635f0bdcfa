// Package telemetry provides the structured-logging helper used by
// cmd/oramlab. The core packages never import this package directly:
// pathoram and seal accept a *zap.Logger through a WithLogger method,
// nil-safe and defaulting to zap.NewNop(), so a caller who wants silence
// never pays for one; leakage and attack do no logging.
package telemetry

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewConsoleLogger returns a human-readable development logger at the
// given level, suitable for the demo CLI. debug enables Debug-level
// per-access bucket I/O traces from pathoram.Client and seal.Client.
func NewConsoleLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	if !debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return cfg.Build()
}
