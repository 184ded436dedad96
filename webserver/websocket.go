package webserver

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dh1tw/graphAudio/control"
	"github.com/gorilla/websocket"
	"github.com/rs/xid"
)

// wsClientBuffer is the amount of messages queued for a websocket client
// before further messages are dropped.
const wsClientBuffer = 16

// GraphEvent is pushed to all websocket clients when the graph changes.
type GraphEvent struct {
	Event string                `json:"event"`
	Graph control.GraphSnapshot `json:"graph"`
}

type wsClient struct {
	id   string
	ws   *websocket.Conn
	send chan []byte
	web  *WebServer
}

func (web *WebServer) webSocketHdlr(w http.ResponseWriter, req *http.Request) {

	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		web.log.WithField("remote", req.RemoteAddr).Warn("unable to open websocket")
		return
	}

	c := &wsClient{
		id:   xid.New().String(),
		ws:   conn,
		send: make(chan []byte, wsClientBuffer),
		web:  web,
	}

	web.addWsClient(c)

	go c.write()
	go c.read()
}

func (web *WebServer) addWsClient(c *wsClient) {
	data, err := json.Marshal(GraphEvent{Event: "graph", Graph: web.svc.Get()})
	if err != nil {
		web.log.WithError(err).Error("unable to encode graph event")
	}

	web.Lock()
	web.wsClients[c] = struct{}{}
	if data != nil {
		c.send <- data
	}
	web.Unlock()

	web.log.WithField("client", c.id).Info("websocket connected")
}

func (web *WebServer) removeWsClient(c *wsClient) {
	web.Lock()
	defer web.Unlock()

	if _, ok := web.wsClients[c]; ok {
		delete(web.wsClients, c)
		close(c.send)
		web.log.WithField("client", c.id).Info("websocket disconnected")
	}
}

// sendTo queues data for c. Slow clients miss messages instead of
// holding up the graph.
func (web *WebServer) sendTo(c *wsClient, data []byte) {
	web.Lock()
	defer web.Unlock()

	if _, ok := web.wsClients[c]; !ok {
		return
	}
	select {
	case c.send <- data:
	default:
		web.log.WithField("client", c.id).Warn("websocket client too slow, dropping message")
	}
}

// updateWsClients pushes snap to all websocket clients.
func (web *WebServer) updateWsClients(snap control.GraphSnapshot) {
	data, err := json.Marshal(GraphEvent{Event: "graph", Graph: snap})
	if err != nil {
		web.log.WithError(err).Error("unable to encode graph event")
		return
	}

	web.Lock()
	clients := make([]*wsClient, 0, len(web.wsClients))
	for c := range web.wsClients {
		clients = append(clients, c)
	}
	web.Unlock()

	for _, c := range clients {
		web.sendTo(c, data)
	}
}

func (c *wsClient) write() {
	defer c.ws.Close()

	for msg := range c.send {
		if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	c.ws.WriteMessage(websocket.CloseMessage, []byte{})
}

// read executes control requests sent by the client and answers them on
// the same connection.
func (c *wsClient) read() {
	defer c.web.removeWsClient(c)

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return
		}

		var req control.Request
		var res control.Response
		if err := json.Unmarshal(data, &req); err != nil {
			res.Error = &control.ResponseError{
				Code:    control.CodeParseError,
				Message: "invalid JSON",
			}
		} else {
			ctx, cancel := context.WithTimeout(context.Background(), c.web.options.Timeout)
			res = control.Dispatch(ctx, c.web.svc, req)
			cancel()
		}

		out, err := json.Marshal(res)
		if err != nil {
			c.web.log.WithError(err).Error("unable to encode response")
			continue
		}
		c.web.sendTo(c, out)
	}
}
