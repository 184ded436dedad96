package log

import (
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
)

var debug bool

func init() {
	var err error
	debug, err = strconv.ParseBool(os.Getenv("GRAPHAUDIO_DEBUG"))
	if err != nil {
		debug = false
	}
}

// GetLogger returns a new logger instance. The level is Info unless the
// GRAPHAUDIO_DEBUG environment variable is set to a true value.
func GetLogger() *logrus.Logger {
	l := logrus.New()
	if debug {
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}

// SetLevel parses a logrus level name (e.g. "debug", "warn") and applies it
// to the logger. An empty name leaves the logger untouched.
func SetLevel(l *logrus.Logger, name string) error {
	if name == "" {
		return nil
	}
	lvl, err := logrus.ParseLevel(name)
	if err != nil {
		return err
	}
	l.SetLevel(lvl)
	return nil
}

// Component returns an entry tagged with the name of the component which
// writes to it.
func Component(l *logrus.Logger, name string) *logrus.Entry {
	return l.WithField("component", name)
}
