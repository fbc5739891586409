package mocks

import (
	"context"

	"creativesync/internal/models"
)

// NopLogger is a logger.Service that discards everything. Use it in tests
// that do not assert on logging.
type NopLogger struct{}

func (NopLogger) LogInfo(ctx context.Context, operation, message string, metadata map[string]interface{}) {
}

func (NopLogger) LogSuccess(ctx context.Context, operation, targetName, message string, metadata map[string]interface{}) {
}

func (NopLogger) LogError(ctx context.Context, operation, targetName, message string, err error, severity models.LogSeverity, metadata map[string]interface{}) {
}

func (NopLogger) Close() error { return nil }
