// Package monitoring provides the process-wide diagnostic logger and timing
// helpers for reporting how long computation phases take.
package monitoring

import (
	"log"
	"time"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// LogTiming logs the elapsed wall-clock time of a named phase. Use with a
// start timestamp captured before the phase:
//
//	defer monitoring.LogTiming("structure function", time.Now())
func LogTiming(phase string, start time.Time) {
	Logf("%s took %s", phase, time.Since(start).Round(time.Millisecond))
}
