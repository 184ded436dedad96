package natsServer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dh1tw/graphAudio/control"
	glog "github.com/dh1tw/graphAudio/log"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

// Server answers control requests arriving on a nats connection. A request
// for method m is sent to "<subject>.<m>" (e.g. "graphAudio.audioGraph.get")
// with the JSON encoded params as payload. The reply carries a
// control.Response.
type Server struct {
	sync.Mutex
	conn    *nats.Conn
	svc     *control.GraphService
	options Options
	sub     *nats.Subscription
	log     *logrus.Entry
}

// NewServer returns a server for svc on conn. Call Start to subscribe.
func NewServer(conn *nats.Conn, svc *control.GraphService, opts ...Option) *Server {
	s := &Server{
		conn: conn,
		svc:  svc,
		options: Options{
			Subject: "graphAudio",
			Timeout: time.Second * 2,
		},
	}

	for _, o := range opts {
		o(&s.options)
	}

	if s.options.Logger == nil {
		s.options.Logger = glog.GetLogger()
	}
	s.log = glog.Component(s.options.Logger, "nats")
	s.options.Subject = ValidateSubject(s.options.Subject)

	return s
}

// ValidateSubject sanitizes a subject name, since nats does not allow
// whitespace in subjects.
func ValidateSubject(subject string) string {
	return strings.Join(strings.Fields(subject), "_")
}

// Start subscribes to the request subjects.
func (s *Server) Start() error {
	s.Lock()
	defer s.Unlock()

	if s.sub != nil {
		return nil
	}

	sub, err := s.conn.Subscribe(s.options.Subject+".>", s.onMsg)
	if err != nil {
		return fmt.Errorf("unable to subscribe to %s.>: %w", s.options.Subject, err)
	}
	s.sub = sub

	s.log.WithField("subject", s.options.Subject+".>").Info("listening for control requests")
	return nil
}

// Close unsubscribes from the request subjects.
func (s *Server) Close() error {
	s.Lock()
	defer s.Unlock()

	if s.sub == nil {
		return nil
	}
	err := s.sub.Unsubscribe()
	s.sub = nil
	return err
}

func (s *Server) onMsg(msg *nats.Msg) {
	if msg.Reply == "" {
		s.log.WithField("subject", msg.Subject).Debug("ignoring request without reply subject")
		return
	}

	if err := msg.Respond(s.handle(msg.Subject, msg.Data)); err != nil {
		s.log.WithError(err).WithField("subject", msg.Subject).Warn("unable to respond")
	}
}

// handle executes the request encoded in subject and payload and returns
// the encoded response.
func (s *Server) handle(subject string, payload []byte) []byte {
	req := control.Request{
		Method: strings.TrimPrefix(subject, s.options.Subject+"."),
	}
	if len(payload) > 0 {
		req.Params = json.RawMessage(payload)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.options.Timeout)
	defer cancel()

	res := control.Dispatch(ctx, s.svc, req)
	if res.Error != nil {
		s.log.WithFields(logrus.Fields{
			"method": req.Method,
			"error":  res.Error.Message,
		}).Debug("request failed")
	}

	data, err := json.Marshal(res)
	if err != nil {
		s.log.WithError(err).Error("unable to encode response")
		data, _ = json.Marshal(control.Response{
			Error: &control.ResponseError{Code: control.CodeServerError, Message: err.Error()},
		})
	}
	return data
}
