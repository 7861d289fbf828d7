package config

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger sets up a zap logger writing human-readable console output.
// Development mode keeps DebugLevel and stack traces on warnings.
func NewLogger(env string) *zap.Logger {
	if env == "development" {
		logger, _ := zap.NewDevelopment()
		return logger
	}
	prodConfig := zap.NewProductionConfig()
	prodConfig.Encoding = "console"
	prodConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	prodConfig.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	logger, _ := prodConfig.Build()
	return logger
}
