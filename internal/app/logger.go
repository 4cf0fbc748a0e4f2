package app

import (
	"log/slog"
	"os"

	"service-parcel-tracking/internal/config"
	"service-parcel-tracking/internal/logx"
)

// NewLogger returns the JSON logger shared by the service and the worker.
func NewLogger(cfg *config.Config) (logx.Logger, error) {
	level := slog.LevelInfo
	if cfg.LogLevel != "" {
		var err error
		if level, err = logx.ParseLevel(cfg.LogLevel); err != nil {
			return nil, err
		}
	}
	return logx.NewJSON(os.Stdout, level), nil
}

func fallbackLogger() logx.Logger {
	return logx.NewJSON(os.Stderr, slog.LevelInfo)
}
