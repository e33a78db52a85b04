package slamlog

import (
	"fmt"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level is a logging severity, ordered DEBUG < INFO < WARN < ERROR.
type Level int32

const (
	// DEBUG is the most verbose level.
	DEBUG Level = iota
	// INFO is the default level.
	INFO
	// WARN indicates a recoverable but noteworthy condition.
	WARN
	// ERROR indicates a failure.
	ERROR
)

// AsZap converts to the equivalent zapcore.Level.
func (level Level) AsZap() zapcore.Level {
	switch level {
	case DEBUG:
		return zapcore.DebugLevel
	case WARN:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// String implements fmt.Stringer.
func (level Level) String() string {
	switch level {
	case DEBUG:
		return "debug"
	case WARN:
		return "warn"
	case ERROR:
		return "error"
	default:
		return "info"
	}
}

// LevelFromString parses a case-insensitive level name.
func LevelFromString(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return DEBUG, nil
	case "info":
		return INFO, nil
	case "warn", "warning":
		return WARN, nil
	case "error":
		return ERROR, nil
	default:
		return INFO, fmt.Errorf("unrecognized log level %q", s)
	}
}

// AtomicLevel is a concurrency-safe Level that can be changed while loggers
// built from it are in use. The zero value is DEBUG.
type AtomicLevel struct {
	val atomic.Int32
}

// NewAtomicLevelAt constructs an AtomicLevel set to level.
func NewAtomicLevelAt(level Level) AtomicLevel {
	var al AtomicLevel
	al.val.Store(int32(level))
	return al
}

// Set updates the level.
func (al *AtomicLevel) Set(level Level) {
	al.val.Store(int32(level))
}

// Get returns the current level.
func (al *AtomicLevel) Get() Level {
	return Level(al.val.Load())
}

// GlobalLogLevel gates the level of the zap.SugaredLogger every impl.AsZap
// call constructs; changing it affects all loggers' underlying zap cores at
// once. While it is at debug level, every impl also logs at all levels
// regardless of its own AtomicLevel gate.
var GlobalLogLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
