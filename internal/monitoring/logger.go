package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to
// log.Printf; tracking code uses it for non-fatal events (rejected
// detections, dropped tracks, skipped filter updates).
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil installs a no-op
// logger, which tests use to mute diagnostics.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
