package webserver

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dh1tw/graphAudio/control"
	"github.com/dh1tw/graphAudio/engine"
	"github.com/dh1tw/graphAudio/graph"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*WebServer, *httptest.Server) {
	t.Helper()
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)

	bg := engine.BackgroundEngine{SampleHz: 48000, Controls: engine.NewEngineControls()}
	svc := control.NewGraphService(graph.NewShared(), bg, l.WithField("component", "test"))

	web, err := NewWebServer("127.0.0.1:0", svc, Logger(l), Timeout(20*time.Millisecond))
	require.NoError(t, err)

	srv := httptest.NewServer(web.Handler())
	t.Cleanup(func() {
		web.Close()
		srv.Close()
	})
	return web, srv
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) (int, string) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	res, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, string(data)
}

func TestRESTGraph(t *testing.T) {
	_, srv := newTestServer(t)

	code, body := do(t, srv, "POST", "/api/v1.0/graph/nodes", `{"type":"Volume","level":0.5}`)
	assert.Equal(t, http.StatusCreated, code)
	assert.JSONEq(t, `{"index":1}`, body)

	// unversioned api calls are routed to the current version
	code, body = do(t, srv, "POST", "/api/graph/edges", `{"src":1,"dest":0}`)
	assert.Equal(t, http.StatusCreated, code)
	assert.JSONEq(t, `{"index":0}`, body)

	code, _ = do(t, srv, "POST", "/api/v1.0/graph/edges", `{"src":0,"dest":1}`)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = do(t, srv, "POST", "/api/v1.0/graph/edges", `{"src":0}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, srv, "PUT", "/api/v1.0/graph/master", `{"index":1}`)
	assert.Equal(t, http.StatusOK, code)

	code, _ = do(t, srv, "PUT", "/api/v1.0/graph/master", `{"index":7}`)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, srv, "DELETE", "/api/v1.0/graph/master", "")
	assert.Equal(t, http.StatusNoContent, code)
	code, _ = do(t, srv, "PUT", "/api/v1.0/graph/master", `{"index":1}`)
	assert.Equal(t, http.StatusOK, code)

	code, _ = do(t, srv, "PUT", "/api/v1.0/graph/nodes/1", `{"type":"Volume","level":0.25}`)
	assert.Equal(t, http.StatusOK, code)

	code, body = do(t, srv, "GET", "/api/v1.0/graph", "")
	assert.Equal(t, http.StatusOK, code)
	var snap control.GraphSnapshot
	require.NoError(t, json.Unmarshal([]byte(body), &snap))
	assert.Equal(t, float32(0.25), *snap.Nodes[1].Level)
	assert.Equal(t, []control.EdgeSpec{{Src: 1, Dest: 0}}, snap.Edges)
	assert.Equal(t, 1, *snap.Master)

	code, _ = do(t, srv, "DELETE", "/api/v1.0/graph/nodes/1", "")
	assert.Equal(t, http.StatusOK, code)
	code, _ = do(t, srv, "DELETE", "/api/v1.0/graph/nodes/1", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestRESTInvalidRequests(t *testing.T) {
	_, srv := newTestServer(t)

	code, body := do(t, srv, "POST", "/api/v1.0/graph/nodes", `{"type":`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "400 - invalid JSON", body)

	code, _ = do(t, srv, "POST", "/api/v1.0/graph/nodes", `{"type":"DynFilter"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, srv, "POST", "/api/v1.0/graph/nodes", `{"type":"File","filePath":"/does/not/exist.wav"}`)
	assert.Equal(t, http.StatusInternalServerError, code)

	code, _ = do(t, srv, "GET", "/api/v1.0/graph/nodes/abc", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, srv, "PUT", "/api/v1.0/graph/master", `{}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestRESTEngineState(t *testing.T) {
	_, srv := newTestServer(t)

	code, body := do(t, srv, "PUT", "/api/v1.0/engine/state", `{"playing":false}`)
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"playing":false}`, body)

	// nobody drains the control channel in this test
	code, _ = do(t, srv, "PUT", "/api/v1.0/engine/state", `{"playing":true}`)
	assert.Equal(t, http.StatusServiceUnavailable, code)

	code, _ = do(t, srv, "PUT", "/api/v1.0/engine/state", `{}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestWebSocket(t *testing.T) {
	_, srv := newTestServer(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	// the current state is pushed on connect
	var ev GraphEvent
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "graph", ev.Event)
	assert.Len(t, ev.Graph.Nodes, 1)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"id":     7,
		"method": "audioGraph.addNode",
		"params": map[string]interface{}{"type": "Silence"},
	}))

	// the change notification is sent before the response
	ev = GraphEvent{}
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "graph", ev.Event)
	assert.Equal(t, "Silence", ev.Graph.Nodes[1].Type)

	var res struct {
		ID     int                    `json:"id"`
		Result int                    `json:"result"`
		Error  *control.ResponseError `json:"error"`
	}
	require.NoError(t, conn.ReadJSON(&res))
	assert.Nil(t, res.Error)
	assert.Equal(t, 7, res.ID)
	assert.Equal(t, 1, res.Result)

	// REST mutations are pushed as well
	code, _ := do(t, srv, "PUT", "/api/v1.0/graph/master", `{"index":1}`)
	require.Equal(t, http.StatusOK, code)

	ev = GraphEvent{}
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, 1, *ev.Graph.Master)
}

func TestApiRedirectRouter(t *testing.T) {
	web, _ := newTestServer(t)

	var path string
	h := web.apiRedirectRouter(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		path = req.URL.Path
	}))

	tests := []struct {
		in, out string
	}{
		{"/api/graph", "/api/v1.0/graph"},
		{"/api/v1.0/graph", "/api/v1.0/graph"},
		{"/api/v2.1/graph", "/api/v2.1/graph"},
		{"/ws", "/ws"},
	}
	for _, tc := range tests {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", tc.in, nil))
		assert.Equal(t, tc.out, path)
	}
}
