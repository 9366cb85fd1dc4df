package log

import (
	"io"
	"os"

	"gopkg.in/Sirupsen/logrus.v0"
)

type Level uint8

const (
	PanicLevel Level = iota
	FatalLevel
	ErrorLevel
	WarnLevel
	InfoLevel
	DebugLevel
)

var disabled = false

// Disable turns off all logging, including errors.
func Disable() {
	disabled = true
	logrus.SetOutput(io.Discard)
}

func init() {
	logrus.SetOutput(os.Stderr)
	logrus.SetLevel(logrus.DebugLevel)
}
