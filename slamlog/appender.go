package slamlog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap/zapcore"
)

// DefaultTimeFormatStr is the timestamp layout used by the stdout and test
// appenders.
const DefaultTimeFormatStr = "2006-01-02T15:04:05.000Z0700"

// Appender receives formatted log entries. zapcore.Core satisfies this
// interface, letting an observer core (used by NewObservedTestLogger) sit
// alongside the stdout/test appenders.
type Appender interface {
	Write(zapcore.Entry, []zapcore.Field) error
	Sync() error
}

func callerToString(caller *zapcore.EntryCaller) string {
	dir := filepath.Base(filepath.Dir(caller.File))
	return fmt.Sprintf("%s/%s:%d", dir, filepath.Base(caller.File), caller.Line)
}

func writeEntry(w io.Writer, entry zapcore.Entry, fields []zapcore.Field) error {
	toPrint := make([]string, 0, 5)
	toPrint = append(toPrint, entry.Time.Format(DefaultTimeFormatStr))
	toPrint = append(toPrint, strings.ToUpper(entry.Level.String()))
	toPrint = append(toPrint, entry.LoggerName)
	if entry.Caller.Defined {
		toPrint = append(toPrint, callerToString(&entry.Caller))
	}
	toPrint = append(toPrint, entry.Message)
	line := strings.Join(toPrint, "\t")

	if len(fields) > 0 {
		enc := zapcore.NewJSONEncoder(zapcore.EncoderConfig{SkipLineEnding: true})
		buf, err := enc.EncodeEntry(zapcore.Entry{}, fields)
		if err == nil {
			line += "\t" + buf.String()
		}
	}

	_, err := fmt.Fprintln(w, line)
	return err
}

type stdoutAppender struct{}

// NewStdoutAppender returns an Appender that writes formatted entries to
// stdout.
func NewStdoutAppender() Appender {
	return stdoutAppender{}
}

func (stdoutAppender) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	return writeEntry(os.Stdout, entry, fields)
}

func (stdoutAppender) Sync() error {
	return nil
}

// NewStdoutTestAppender returns an Appender for NewObservedTestLogger; it
// writes to stdout like NewStdoutAppender, since the observer core attached
// alongside it is what tests actually assert against.
func NewStdoutTestAppender() Appender {
	return stdoutAppender{}
}
