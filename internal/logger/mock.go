package logger

import (
	"github.com/emberhollow/hearth/internal/domain"
)

// Mock returns a logger with output disabled, for use in tests.
func Mock() Logger {
	cfg := &domain.Config{
		Logging: domain.LoggingConfig{
			Level: "DISABLED",
		},
	}

	return New(cfg)
}
