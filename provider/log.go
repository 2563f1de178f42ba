package provider

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	logMu  sync.RWMutex
	logger = zerolog.New(os.Stderr).With().Timestamp().Logger().Level(zerolog.WarnLevel)
)

// SetLogger replaces the logger used by the registry, the backends, and the
// facade's best-effort paths. The default logs warnings and above to stderr.
func SetLogger(l zerolog.Logger) {
	logMu.Lock()
	defer logMu.Unlock()
	logger = l
}

// Logger returns the current package logger.
func Logger() zerolog.Logger {
	logMu.RLock()
	defer logMu.RUnlock()
	return logger
}

func log() *zerolog.Logger {
	logMu.RLock()
	defer logMu.RUnlock()
	l := logger
	return &l
}
