package blob

import (
	"fmt"
	"log"
	"sync/atomic"
)

// Logger defines an interface for writing log messages.
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// DefaultLogger logs to the Go stdlib logs.
type DefaultLogger struct{}

// Infof implements the Logger.Infof interface.
func (DefaultLogger) Infof(format string, args ...interface{}) {
	_ = log.Output(2, fmt.Sprintf(format, args...))
}

// Errorf implements the Logger.Errorf interface.
func (DefaultLogger) Errorf(format string, args ...interface{}) {
	_ = log.Output(2, "ERROR: "+fmt.Sprintf(format, args...))
}

// NoopLogger drops every message.
type NoopLogger struct{}

func (NoopLogger) Infof(string, ...interface{})  {}
func (NoopLogger) Errorf(string, ...interface{}) {}

// illegalLinesWarned flips once the first malformed line set has been reported
var illegalLinesWarned atomic.Bool

func warnIllegalLines(logger Logger, lines []HorizontalLine) {
	if !illegalLinesWarned.CompareAndSwap(false, true) {
		return
	}
	logger.Errorf("blob received %d unsorted or overlapping lines; set Options.CorrectIllegalLines to repair them (reported once)", len(lines))
}
