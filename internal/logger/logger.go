package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the process-wide logger. It discards everything until Init runs.
var Log = zap.NewNop()

// Init replaces Log with a console logger. verbose enables debug output,
// veryVerbose adds caller and stack information.
func Init(verbose, veryVerbose bool) error {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	cfg.DisableStacktrace = true
	cfg.DisableCaller = true
	if verbose || veryVerbose {
		cfg.Level.SetLevel(zapcore.DebugLevel)
	}
	if veryVerbose {
		cfg.DisableCaller = false
		cfg.DisableStacktrace = false
	}

	l, err := cfg.Build()
	if err != nil {
		return err
	}
	Log = l
	return nil
}

// Named returns a child of Log, or of l when l is non-nil.
func Named(l *zap.Logger, name string) *zap.Logger {
	if l == nil {
		l = Log
	}
	return l.Named(name)
}
