package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"visa-consultancy/backend/config"
)

// Service name stamped on every entry
const Service = "visa-consultancy"

// NewLogger builds a zap logger from LogConfig. "console" gives colored
// development output, anything else JSON.
func NewLogger(cfg *config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	switch cfg.Format {
	case "console":
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		zapCfg = zap.NewProductionConfig()
		zapCfg.EncoderConfig.TimeKey = "time"
		zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapCfg.Build(zap.Fields(zap.String("service", Service)))
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	return logger, nil
}

// Passport logs a passport number with all but its last four characters
// masked
func Passport(number string) zap.Field {
	return zap.String("passport", maskTail(number, 4))
}

// Email logs an address with the local part reduced to its first letter
func Email(addr string) zap.Field {
	at := strings.LastIndex(addr, "@")
	if at <= 0 {
		return zap.String("email", maskTail(addr, 0))
	}
	return zap.String("email", addr[:1]+"***"+addr[at:])
}

func maskTail(s string, keep int) string {
	r := []rune(s)
	if len(r) <= keep {
		return strings.Repeat("*", len(r))
	}
	return strings.Repeat("*", len(r)-keep) + string(r[len(r)-keep:])
}
