package tsodbc

import (
	"log/slog"
	"os"
	"sync"
)

// Package logger, lazily initialised on first use.
var (
	loggerMu sync.RWMutex
	logger   *slog.Logger
	initOnce sync.Once
)

// SetLogger replaces the package logger. A nil logger restores the default.
func SetLogger(l *slog.Logger) {
	initOnce.Do(initDefaultLogger)
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if l == nil {
		logger = newDefaultLogger()
		return
	}
	logger = l
}

// GetLogger returns the package logger.
func GetLogger() *slog.Logger {
	initOnce.Do(initDefaultLogger)
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}

func initDefaultLogger() {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if logger == nil {
		logger = newDefaultLogger()
	}
}

// Only warnings and above reach stderr unless the application installs its own logger.
func newDefaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

// withComponent creates a logger with component context.
func withComponent(base *slog.Logger, component string) *slog.Logger {
	if base == nil {
		base = GetLogger()
	}
	return base.With("component", component)
}
