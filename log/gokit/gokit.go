// Package gokit adapts github.com/go-kit/log into the server's log.Logger
// interface.
package gokit

import (
	"fmt"
	"os"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/goftpd/ftpd/log"
)

type gkLogger struct {
	logger kitlog.Logger
}

// New wraps an existing go-kit logger.
func New(logger kitlog.Logger) log.Logger {
	return &gkLogger{logger: logger}
}

// NewStdout builds a logfmt logger writing to stdout, timestamped in UTC.
// Every level is written; no level filter is applied.
func NewStdout() log.Logger {
	return New(kitlog.With(kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout)), "ts", kitlog.DefaultTimestampUTC))
}

func (l *gkLogger) log(logger kitlog.Logger, event string, keyvals ...interface{}) {
	kv := make([]interface{}, 0, len(keyvals)+2)
	kv = append(kv, "event", event)
	kv = append(kv, keyvals...)

	if err := logger.Log(kv...); err != nil {
		fmt.Fprintln(os.Stderr, "logging failed:", err)
	}
}

func (l *gkLogger) Debug(event string, keyvals ...interface{}) {
	l.log(level.Debug(l.logger), event, keyvals...)
}

func (l *gkLogger) Info(event string, keyvals ...interface{}) {
	l.log(level.Info(l.logger), event, keyvals...)
}

func (l *gkLogger) Warn(event string, keyvals ...interface{}) {
	l.log(level.Warn(l.logger), event, keyvals...)
}

func (l *gkLogger) Error(event string, keyvals ...interface{}) {
	l.log(level.Error(l.logger), event, keyvals...)
}

func (l *gkLogger) With(keyvals ...interface{}) log.Logger {
	return New(kitlog.With(l.logger, keyvals...))
}

// DefaultTimestampUTC and DefaultCaller are convenience re-exports so
// callers don't need to import go-kit/log directly just to build a
// timestamped, caller-annotated root logger.
var (
	DefaultTimestampUTC = kitlog.DefaultTimestampUTC
	DefaultCaller       = kitlog.Caller(5)
)
