package utils

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ServiceName is attached to every log entry.
const ServiceName = "schoolfinder"

// NewLogger returns a zap logger tagged with the service and subcommand name.
// debug selects the development config (human-readable, debug level). Otherwise
// the server logs production JSON at info level, while one-shot commands such as
// search or show log warnings only so their stdout output stays readable.
func NewLogger(command string, debug bool) (*zap.Logger, error) {
	var cfg zap.Config
	switch {
	case debug:
		cfg = zap.NewDevelopmentConfig()
	case command == "server":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.DisableStacktrace = true
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	fields := []zap.Field{zap.String("service", ServiceName)}
	if command != "" {
		fields = append(fields, zap.String("command", command))
	}
	return logger.With(fields...), nil
}
