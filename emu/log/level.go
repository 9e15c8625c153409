package log

import (
	"io"

	"gopkg.in/Sirupsen/logrus.v0"
)

type Level = logrus.Level

const (
	PanicLevel = logrus.PanicLevel
	FatalLevel = logrus.FatalLevel
	ErrorLevel = logrus.ErrorLevel
	WarnLevel  = logrus.WarnLevel
	InfoLevel  = logrus.InfoLevel
	DebugLevel = logrus.DebugLevel
)

var disabled bool

func init() {
	// Module masks decide what gets through, logrus must never filter.
	logrus.SetLevel(logrus.DebugLevel)
}

// Disable turns off logging for all modules, at all levels.
func Disable() {
	disabled = true
}

// Enable reverts a previous call to Disable.
func Enable() {
	disabled = false
}

// SetOutput redirects all log output to w.
func SetOutput(w io.Writer) {
	logrus.SetOutput(w)
}
