package natsServer

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Option is the type for a function option
type Option func(*Options)

// Options contains the parameters of the nats control server.
type Options struct {
	Subject string
	Timeout time.Duration
	Logger  *logrus.Logger
}

// Subject sets the subject prefix. The server listens on "<subject>.>"
// and takes the method name from the remainder of the subject.
func Subject(s string) Option {
	return func(args *Options) {
		args.Subject = s
	}
}

// Timeout limits how long a request may wait for the engine to accept a
// control message.
func Timeout(t time.Duration) Option {
	return func(args *Options) {
		args.Timeout = t
	}
}

// Logger sets the logger of the server.
func Logger(l *logrus.Logger) Option {
	return func(args *Options) {
		args.Logger = l
	}
}
