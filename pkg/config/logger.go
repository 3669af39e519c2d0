package config

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ServiceName tags every log line.
const ServiceName = "sportsbook-boot"

// NewLogger creates the service logger at the given level. Valid levels:
// debug, info, warn, error. An empty level means info. Every entry carries
// the service name and the installed app version.
func NewLogger(levelStr, appVersion string) (*zap.Logger, error) {
	config, err := loggerConfig(levelStr, appVersion)
	if err != nil {
		return nil, err
	}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	return logger, nil
}

func loggerConfig(levelStr, appVersion string) (zap.Config, error) {
	if levelStr == "" {
		levelStr = "info"
	}

	var level zapcore.Level
	err := level.UnmarshalText([]byte(levelStr))
	if err != nil {
		return zap.Config{}, fmt.Errorf("invalid log level %q: %w", levelStr, err)
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(level)
	config.Encoding = "json"
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.MessageKey = "event"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.InitialFields = map[string]interface{}{
		"service": ServiceName,
	}
	if appVersion != "" {
		config.InitialFields["app_version"] = appVersion
	}

	return config, nil
}
