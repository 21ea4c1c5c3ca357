// Package logging builds the application's zap loggers
package logging

import (
	"fmt"
	"strings"

	"contentdesk/internal/config"

	"go.uber.org/zap"
)

// New returns a JSON production logger, or a console development logger
// unless env names production.
func New(env string) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if strings.EqualFold(env, config.EnvProduction) {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

// AuditLogger records security relevant authentication events
type AuditLogger struct {
	Log *zap.Logger
}

// NewAuditLogger wraps log, falling back to a no-op logger when nil
func NewAuditLogger(log *zap.Logger) *AuditLogger {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuditLogger{Log: log.Named("audit")}
}

// LogEvent writes event with fields at info level
func (a *AuditLogger) LogEvent(event string, fields ...zap.Field) {
	a.Log.Info(event, fields...)
}

// LogFailure writes event with the failure reason at warn level
func (a *AuditLogger) LogFailure(event, reason string, fields ...zap.Field) {
	a.Log.Warn(event, append(fields, zap.String("reason", reason))...)
}
