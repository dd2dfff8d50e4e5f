// Package logging defines the leveled sink the core consumes for
// diagnostics. The core never imports a concrete logging package
// directly; callers wire in whatever implements Logger (logrus by
// default).
package logging

import (
	"github.com/sirupsen/logrus"
)

// Logger is the leveled sink external collaborator. Components hold
// one of these rather than a concrete logging package.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// noop discards everything. Used where no logger is configured.
type noop struct{}

func (noop) Debugf(string, ...interface{}) {}
func (noop) Infof(string, ...interface{})  {}
func (noop) Warnf(string, ...interface{})  {}
func (noop) Errorf(string, ...interface{}) {}

// Noop returns a Logger that discards all output.
func Noop() Logger { return noop{} }

// logrusAdapter wires a *logrus.Logger (or the package-level logger)
// into the Logger interface with a TextFormatter/FullTimestamp
// setup.
type logrusAdapter struct {
	l *logrus.Logger
}

// NewLogrus builds a Logger backed by logrus with a full-timestamp
// text formatter.
func NewLogrus() Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return logrusAdapter{l: l}
}

// WrapLogrus adapts an already-configured *logrus.Logger.
func WrapLogrus(l *logrus.Logger) Logger {
	return logrusAdapter{l: l}
}

func (a logrusAdapter) Debugf(format string, args ...interface{}) { a.l.Debugf(format, args...) }
func (a logrusAdapter) Infof(format string, args ...interface{})  { a.l.Infof(format, args...) }
func (a logrusAdapter) Warnf(format string, args ...interface{})  { a.l.Warnf(format, args...) }
func (a logrusAdapter) Errorf(format string, args ...interface{}) { a.l.Errorf(format, args...) }
