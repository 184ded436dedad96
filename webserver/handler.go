package webserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dh1tw/graphAudio/audio"
	"github.com/dh1tw/graphAudio/control"
	"github.com/gorilla/mux"
)

// IndexMsg carries the index of a node or an edge.
type IndexMsg struct {
	Index *int `json:"index"`
}

// EngineStateMsg carries the transport state of the engine.
type EngineStateMsg struct {
	Playing *bool `json:"playing"`
}

// writeError maps err onto a status code and writes it in the
// "<code> - <message>" form used by all handlers.
func (web *WebServer) writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, control.ErrInvalidParams), errors.Is(err, audio.ErrUnsupportedChannelLayout):
		code = http.StatusBadRequest
	case errors.Is(err, audio.ErrNodeNotFound):
		code = http.StatusNotFound
	case errors.Is(err, audio.ErrCycle):
		code = http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		code = http.StatusServiceUnavailable
	}
	if code == http.StatusInternalServerError {
		web.log.WithError(err).Warn("request failed")
	}
	w.WriteHeader(code)
	w.Write([]byte(fmt.Sprintf("%d - %s", code, err)))
}

func (web *WebServer) writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		web.log.WithError(err).Error("unable to encode response")
	}
}

func nodeIndex(req *http.Request) (int, bool) {
	idx, err := strconv.Atoi(mux.Vars(req)["index"])
	return idx, err == nil
}

func (web *WebServer) graphHdlr(w http.ResponseWriter, req *http.Request) {
	defer req.Body.Close()
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")

	web.writeJSON(w, http.StatusOK, web.svc.Get())
}

func (web *WebServer) addNodeHdlr(w http.ResponseWriter, req *http.Request) {
	defer req.Body.Close()
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")

	var spec control.NodeSpec
	if err := json.NewDecoder(req.Body).Decode(&spec); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("400 - invalid JSON"))
		return
	}

	idx, err := web.svc.AddNode(spec)
	if err != nil {
		web.writeError(w, err)
		return
	}
	web.writeJSON(w, http.StatusCreated, IndexMsg{Index: &idx})
}

func (web *WebServer) replaceNodeHdlr(w http.ResponseWriter, req *http.Request) {
	defer req.Body.Close()
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")

	idx, ok := nodeIndex(req)
	if !ok {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("400 - invalid node index"))
		return
	}

	var spec control.NodeSpec
	if err := json.NewDecoder(req.Body).Decode(&spec); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("400 - invalid JSON"))
		return
	}

	if err := web.svc.ReplaceNode(idx, spec); err != nil {
		web.writeError(w, err)
		return
	}
	web.writeJSON(w, http.StatusOK, IndexMsg{Index: &idx})
}

func (web *WebServer) removeNodeHdlr(w http.ResponseWriter, req *http.Request) {
	defer req.Body.Close()
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")

	idx, ok := nodeIndex(req)
	if !ok {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("400 - invalid node index"))
		return
	}

	if err := web.svc.RemoveNode(idx); err != nil {
		web.writeError(w, err)
		return
	}
	web.writeJSON(w, http.StatusOK, IndexMsg{Index: &idx})
}

func (web *WebServer) addEdgeHdlr(w http.ResponseWriter, req *http.Request) {
	defer req.Body.Close()
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")

	var edge struct {
		Src  *int `json:"src"`
		Dest *int `json:"dest"`
	}
	if err := json.NewDecoder(req.Body).Decode(&edge); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("400 - invalid JSON"))
		return
	}
	if edge.Src == nil || edge.Dest == nil {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("400 - invalid Request"))
		return
	}

	idx, err := web.svc.AddEdge(*edge.Src, *edge.Dest)
	if err != nil {
		web.writeError(w, err)
		return
	}
	web.writeJSON(w, http.StatusCreated, IndexMsg{Index: &idx})
}

func (web *WebServer) masterHdlr(w http.ResponseWriter, req *http.Request) {
	defer req.Body.Close()
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")

	var msg IndexMsg
	if err := json.NewDecoder(req.Body).Decode(&msg); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("400 - invalid JSON"))
		return
	}
	if msg.Index == nil {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("400 - invalid Request"))
		return
	}

	if err := web.svc.SetMaster(*msg.Index); err != nil {
		web.writeError(w, err)
		return
	}
	web.writeJSON(w, http.StatusOK, msg)
}

func (web *WebServer) clearMasterHdlr(w http.ResponseWriter, req *http.Request) {
	defer req.Body.Close()
	web.svc.ClearMaster()
	w.WriteHeader(http.StatusNoContent)
}

func (web *WebServer) engineStateHdlr(w http.ResponseWriter, req *http.Request) {
	defer req.Body.Close()
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")

	var msg EngineStateMsg
	if err := json.NewDecoder(req.Body).Decode(&msg); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("400 - invalid JSON"))
		return
	}
	if msg.Playing == nil {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("400 - invalid Request"))
		return
	}

	ctx, cancel := context.WithTimeout(req.Context(), web.options.Timeout)
	defer cancel()

	var err error
	if *msg.Playing {
		err = web.svc.Play(ctx)
	} else {
		err = web.svc.Pause(ctx)
	}
	if err != nil {
		web.writeError(w, err)
		return
	}
	web.writeJSON(w, http.StatusOK, msg)
}
