package environment

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const EnvLogLevel = "WSH_LOG_LEVEL"

// GetLogLevel returns the level named by WSH_LOG_LEVEL, or fallback when the
// variable is unset or holds an unknown level name.
func GetLogLevel(env Env, fallback zapcore.Level) zap.AtomicLevel {
	raw := strings.TrimSpace(env.Getenv(EnvLogLevel))
	if raw == "" {
		return zap.NewAtomicLevelAt(fallback)
	}

	level, err := zapcore.ParseLevel(strings.ToLower(raw))
	if err != nil {
		return zap.NewAtomicLevelAt(fallback)
	}
	return zap.NewAtomicLevelAt(level)
}
