package control

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dh1tw/graphAudio/audio"
)

// Method names understood by Dispatch.
const (
	MethodGet         = "audioGraph.get"
	MethodAddNode     = "audioGraph.addNode"
	MethodRemoveNode  = "audioGraph.removeNode"
	MethodReplaceNode = "audioGraph.replaceNode"
	MethodAddEdge     = "audioGraph.addEdge"
	MethodSetMaster   = "audioGraph.setMaster"
	MethodClearMaster = "audioGraph.clearMaster"
	MethodPlay        = "engine.play"
	MethodPause       = "engine.pause"
)

// Error codes of a Response, following JSON-RPC 2.0.
const (
	CodeParseError     = -32700
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeServerError    = -32000
)

// Request is a method call on the GraphService.
//
// Params of the individual methods:
//
//	audioGraph.get          none
//	audioGraph.addNode      NodeSpec
//	audioGraph.removeNode   {"index": 1}
//	audioGraph.replaceNode  {"index": 1, "node": NodeSpec}
//	audioGraph.addEdge      {"src": 1, "dest": 0}
//	audioGraph.setMaster    {"index": 1}
//	engine.play             none
//	engine.pause            none
type Request struct {
	ID     json.RawMessage `json:"id,omitempty"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response is the answer to a Request. Exactly one of Result and Error is
// set.
type Response struct {
	ID     json.RawMessage `json:"id,omitempty"`
	Result interface{}     `json:"result,omitempty"`
	Error  *ResponseError  `json:"error,omitempty"`
}

// ResponseError describes a failed Request.
type ResponseError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}

type indexParams struct {
	Index *int `json:"index"`
}

type replaceParams struct {
	Index *int      `json:"index"`
	Node  *NodeSpec `json:"node"`
}

type edgeParams struct {
	Src  *int `json:"src"`
	Dest *int `json:"dest"`
}

// Dispatch executes req on svc.
func Dispatch(ctx context.Context, svc *GraphService, req Request) Response {
	res, err := dispatch(ctx, svc, req)
	if err != nil {
		return Response{ID: req.ID, Error: toResponseError(err)}
	}
	if res == nil {
		res = true
	}
	return Response{ID: req.ID, Result: res}
}

func dispatch(ctx context.Context, svc *GraphService, req Request) (interface{}, error) {
	switch req.Method {
	case MethodGet:
		return svc.Get(), nil

	case MethodAddNode:
		var spec NodeSpec
		if err := decode(req.Params, &spec); err != nil {
			return nil, err
		}
		return svc.AddNode(spec)

	case MethodRemoveNode:
		var p indexParams
		if err := decode(req.Params, &p); err != nil {
			return nil, err
		}
		if p.Index == nil {
			return nil, fmt.Errorf("%w: missing index", ErrInvalidParams)
		}
		return nil, svc.RemoveNode(*p.Index)

	case MethodReplaceNode:
		var p replaceParams
		if err := decode(req.Params, &p); err != nil {
			return nil, err
		}
		if p.Index == nil || p.Node == nil {
			return nil, fmt.Errorf("%w: index and node are required", ErrInvalidParams)
		}
		return nil, svc.ReplaceNode(*p.Index, *p.Node)

	case MethodAddEdge:
		var p edgeParams
		if err := decode(req.Params, &p); err != nil {
			return nil, err
		}
		if p.Src == nil || p.Dest == nil {
			return nil, fmt.Errorf("%w: src and dest are required", ErrInvalidParams)
		}
		return svc.AddEdge(*p.Src, *p.Dest)

	case MethodSetMaster:
		var p indexParams
		if err := decode(req.Params, &p); err != nil {
			return nil, err
		}
		if p.Index == nil {
			return nil, fmt.Errorf("%w: missing index", ErrInvalidParams)
		}
		return nil, svc.SetMaster(*p.Index)

	case MethodClearMaster:
		svc.ClearMaster()
		return nil, nil

	case MethodPlay:
		return nil, svc.Play(ctx)

	case MethodPause:
		return nil, svc.Pause(ctx)
	}

	return nil, &ResponseError{
		Code:    CodeMethodNotFound,
		Message: fmt.Sprintf("method '%s' not found", req.Method),
	}
}

func decode(params json.RawMessage, v interface{}) error {
	if len(params) == 0 {
		return fmt.Errorf("%w: missing params", ErrInvalidParams)
	}
	if err := json.Unmarshal(params, v); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidParams, err)
	}
	return nil
}

func toResponseError(err error) *ResponseError {
	var re *ResponseError
	if errors.As(err, &re) {
		return re
	}

	code := CodeServerError
	switch {
	case errors.Is(err, ErrInvalidParams),
		errors.Is(err, audio.ErrCycle),
		errors.Is(err, audio.ErrNodeNotFound):
		code = CodeInvalidParams
	}
	return &ResponseError{Code: code, Message: err.Error()}
}
