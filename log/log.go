// Package log defines the logging sink used throughout the server.
//
// The core never writes to stdout/stderr directly: every session, transfer
// and accept-loop event goes through a Logger so the host application can
// route it anywhere (logfmt, JSON, a queue, /dev/null).
package log

// Logger is the event sink the core emits human-readable, key/value
// structured events to.
type Logger interface {
	Debug(event string, keyvals ...interface{})
	Info(event string, keyvals ...interface{})
	Warn(event string, keyvals ...interface{})
	Error(event string, keyvals ...interface{})

	// With returns a derived Logger that prepends keyvals to every event,
	// used to scope a logger to a single session ("clientId", 42).
	With(keyvals ...interface{}) Logger
}
