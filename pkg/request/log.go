package request

import (
	"log/slog"

	"hihimaps/pkg/logging"
)

// requestLog returns the dedicated request logger, or nil before logging.Init.
func requestLog() *slog.Logger {
	return logging.RequestLogger
}
