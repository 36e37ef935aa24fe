// Package logging provides structured logging for the CLI and the wizard.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mlops-tools/dfa-wizard/internal/events"
)

const timeFormat = "15:04:05"

// Logger wraps zerolog. Warnings and errors logged through the printf
// helpers are also published on the event bus when one is attached.
type Logger struct {
	zlog     zerolog.Logger
	eventBus *events.EventBus
	output   io.Writer // current output writer
}

// NewLogger creates a console logger writing to w.
func NewLogger(w io.Writer, eventBus *events.EventBus) *Logger {
	l := &Logger{eventBus: eventBus}
	l.SetOutput(w)
	return l
}

// NewDefaultCLILogger creates a logger on stderr. Stdout is kept for command
// output so it can be piped.
func NewDefaultCLILogger() *Logger {
	return NewLogger(os.Stderr, nil)
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zlog: zerolog.Nop(), output: io.Discard}
}

// Info returns an info level event.
func (l *Logger) Info() *zerolog.Event {
	return l.zlog.Info()
}

// Error returns an error level event.
func (l *Logger) Error() *zerolog.Event {
	return l.zlog.Error()
}

// Debug returns a debug level event.
func (l *Logger) Debug() *zerolog.Event {
	return l.zlog.Debug()
}

// Warn returns a warn level event.
func (l *Logger) Warn() *zerolog.Event {
	return l.zlog.Warn()
}

// With creates a child logger with additional context.
func (l *Logger) With() zerolog.Context {
	return l.zlog.With()
}

// SetOutput changes the output writer for the logger.
// This is useful for redirecting logs around a spinner.
func (l *Logger) SetOutput(w io.Writer) {
	l.output = w
	l.zlog = zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: timeFormat,
	}).With().Timestamp().Logger()
}

// Output returns the current output writer.
func (l *Logger) Output() io.Writer {
	return l.output
}

// Debugf logs a debug message with printf-style formatting.
// This is only shown when debug/verbose mode is enabled.
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.zlog.Debug().Msgf(format, args...)
}

// Infof logs an info message with printf-style formatting.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.zlog.Info().Msgf(format, args...)
}

// Errorf logs an error message with printf-style formatting.
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.zlog.Error().Msgf(format, args...)
	l.publish(events.ErrorLevel, format, args)
}

// Warnf logs a warning message with printf-style formatting.
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.zlog.Warn().Msgf(format, args...)
	l.publish(events.WarnLevel, format, args)
}

func (l *Logger) publish(level events.LogLevel, format string, args []interface{}) {
	if l.eventBus == nil {
		return
	}
	l.eventBus.PublishLog(level, fmt.Sprintf(format, args...), "", nil)
}

// SetGlobalLevel sets the global log level.
func SetGlobalLevel(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
}

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: timeFormat,
	})
}
