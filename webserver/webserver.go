package webserver

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"sync"
	"time"

	"github.com/dh1tw/graphAudio/control"
	glog "github.com/dh1tw/graphAudio/log"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{}

// WebServer exposes a GraphService through a REST API and pushes the
// state of the graph to all connected websocket clients after every
// change.
type WebServer struct {
	sync.Mutex
	url        string
	router     *mux.Router
	apiVersion string
	apiMatch   *regexp.Regexp
	svc        *control.GraphService
	options    Options
	log        *logrus.Entry
	wsClients  map[*wsClient]struct{}
	httpServer *http.Server
}

// NewWebServer returns a web server for svc which will listen on url
// (e.g. "127.0.0.1:9090").
func NewWebServer(url string, svc *control.GraphService, opts ...Option) (*WebServer, error) {

	web := &WebServer{
		url:        url,
		router:     mux.NewRouter().StrictSlash(true),
		apiVersion: "1.0",
		svc:        svc,
		options: Options{
			Timeout: time.Second * 2,
		},
		wsClients: make(map[*wsClient]struct{}),
	}

	for _, o := range opts {
		o(&web.options)
	}

	if web.options.Logger == nil {
		web.options.Logger = glog.GetLogger()
	}
	web.log = glog.Component(web.options.Logger, "webserver")

	apiMatch, err := regexp.Compile(`api\/v\d\.\d`)
	if err != nil {
		return nil, err
	}
	web.apiMatch = apiMatch

	web.routes()
	svc.OnChange(web.updateWsClients)

	return web, nil
}

// Handler returns the http.Handler serving the API.
func (web *WebServer) Handler() http.Handler {
	return web.apiRedirectRouter(web.router)
}

// ListenAndServe serves the API until Close is called. It always returns
// a non-nil error; after Close it returns http.ErrServerClosed.
func (web *WebServer) ListenAndServe() error {
	web.Lock()
	web.httpServer = &http.Server{
		Addr:    web.url,
		Handler: web.Handler(),
	}
	srv := web.httpServer
	web.Unlock()

	web.log.WithField("url", web.url).Info("webserver listening")

	return srv.ListenAndServe()
}

// Close shuts down the http server and disconnects all websocket clients.
func (web *WebServer) Close() error {
	web.Lock()
	srv := web.httpServer
	web.httpServer = nil
	for c := range web.wsClients {
		delete(web.wsClients, c)
		close(c.send)
	}
	web.Unlock()

	if srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*3)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
