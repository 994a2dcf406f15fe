package auth

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Sseankzs/openprofile/internal/logger"
)

const authLogPath = "log/auth.log"

var (
	authLogOnce sync.Once
	authLog     *zap.Logger
)

func authLogger() *zap.Logger {
	authLogOnce.Do(func() {
		if !strings.EqualFold(os.Getenv("LOGGING"), "true") {
			authLog = zap.NewNop()
			return
		}
		l, err := logger.NewFileLogger(authLogPath)
		if err != nil {
			zap.L().Warn("auth log disabled", zap.Error(err))
			authLog = zap.NewNop()
			return
		}
		authLog = l
	})
	return authLog
}

// LogAuthAttempt records an authentication attempt to log/auth.log when LOGGING=true.
// level: debug|info|warning|error
// authType: Local|Logout|...
// status: Success|Fail
// identifier and message are optional.
func LogAuthAttempt(level string, authType string, status string, identifier string, message string) {
	fields := []zap.Field{
		zap.String("auth_type", authType),
		zap.String("status", status),
	}
	if identifier != "" {
		fields = append(fields, zap.String("identifier", identifier))
	}

	if ce := authLogger().Check(parseLevel(level), message); ce != nil {
		ce.Write(fields...)
	}
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warning", "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
