package app

import (
	"log/slog"
	"os"

	"dispatch-service/internal/logx"
)

// NewLogger builds the process-wide structured logger.
func NewLogger() logx.Logger {
	base := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	return logx.NewSlogAdapter(base)
}
