// Package monitoring holds the shared diagnostic logger for the sampling
// engine and its collaborators.
package monitoring

import "log"

// Logf is the package-level diagnostic logger for sampling and publish-cycle
// diagnostics. It defaults to log.Printf but may be replaced with SetLogger;
// tests typically mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil installs a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
