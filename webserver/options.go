package webserver

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Option is the type for a function option
type Option func(*Options)

// Options contains the parameters of the web server.
type Options struct {
	Timeout time.Duration
	Logger  *logrus.Logger
}

// Timeout limits how long a request may wait for the engine to accept a
// play or pause message.
func Timeout(t time.Duration) Option {
	return func(args *Options) {
		args.Timeout = t
	}
}

// Logger sets the logger of the web server.
func Logger(l *logrus.Logger) Option {
	return func(args *Options) {
		args.Logger = l
	}
}
