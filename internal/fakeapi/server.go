// Package fakeapi provides an in-process fake of the remote RPC API for
// testing. It speaks the same JSON-RPC-over-WebSocket protocol as the
// remote package, keeps collections in memory, and can be told to fail
// specific methods with stubbed errors.
package fakeapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type rpcRequest struct {
	ID     string `json:"id"`
	Method string `json:"method"`
	Params []any  `json:"params,omitempty"`
}

type rpcResponse struct {
	ID     string    `json:"id"`
	Error  *rpcError `json:"error,omitempty"`
	Result any       `json:"result,omitempty"`
}

type rpcError struct {
	Code    int64  `json:"code"`
	Message string `json:"message,omitempty"`
}

// Server is a fake remote API. Zero value is not usable; create with New.
type Server struct {
	httpSrv  *httptest.Server
	upgrader websocket.Upgrader

	mu          sync.Mutex
	collections map[string]map[string]map[string]any
	failures    map[string]*rpcError
	calls       []string
	lastParams  map[string][]any
}

func New() *Server {
	s := &Server{
		collections: make(map[string]map[string]map[string]any),
		failures:    make(map[string]*rpcError),
		lastParams:  make(map[string][]any),
	}
	s.httpSrv = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// URL returns the ws:// endpoint of the fake.
func (s *Server) URL() string {
	return "ws" + strings.TrimPrefix(s.httpSrv.URL, "http")
}

func (s *Server) Close() {
	s.httpSrv.Close()
}

// Seed inserts objects (each carrying "_id") into a collection.
func (s *Server) Seed(collection string, objects ...map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, obj := range objects {
		s.insert(collection, obj)
	}
}

// FailWith makes every call of method fail with the given error until
// cleared by another FailWith or by ClearFailures.
func (s *Server) FailWith(method string, code int64, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method] = &rpcError{Code: code, Message: message}
}

func (s *Server) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = make(map[string]*rpcError)
}

// Object looks up a stored object by collection and id.
func (s *Server) Object(collection, id string) (map[string]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.collections[collection][id]
	return obj, ok
}

// Calls returns the RPC method names seen so far, in order.
func (s *Server) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// LastParams returns the params of the most recent call of method.
func (s *Server) LastParams(method string) []any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastParams[method]
}

// --------------------------------------------------
// Protocol
// --------------------------------------------------

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	for {
		var req rpcRequest
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		res := s.serve(&req)
		if err := conn.WriteJSON(res); err != nil {
			return
		}
	}
}

func (s *Server) serve(req *rpcRequest) *rpcResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, req.Method)
	s.lastParams[req.Method] = req.Params

	if stub, ok := s.failures[req.Method]; ok {
		return &rpcResponse{ID: req.ID, Error: stub}
	}

	res := &rpcResponse{ID: req.ID}

	switch req.Method {
	case "get":
		collection, _ := param[string](req, 0)
		id, _ := param[string](req, 1)
		obj, ok := s.collections[collection][id]
		if !ok {
			res.Error = &rpcError{Code: 404, Message: "entity not found: " + id}
			return res
		}
		res.Result = obj

	case "find":
		collection, _ := param[string](req, 0)
		query, _ := param[map[string]any](req, 1)
		res.Result = s.match(collection, query)

	case "aggregate":
		collection, _ := param[string](req, 0)
		spec, _ := param[map[string]any](req, 1)
		res.Result = map[string]any{"count": float64(len(s.match(collection, spec)))}

	case "save":
		collection, _ := param[string](req, 0)
		obj, ok := param[map[string]any](req, 1)
		if !ok {
			res.Error = &rpcError{Code: 400, Message: "save requires an object"}
			return res
		}
		res.Result = s.insert(collection, obj)

	case "remove":
		collection, _ := param[string](req, 0)
		obj, _ := param[map[string]any](req, 1)
		id, _ := obj["_id"].(string)
		if _, ok := s.collections[collection][id]; !ok {
			res.Result = map[string]any{"count": float64(0)}
			return res
		}
		delete(s.collections[collection], id)
		res.Result = map[string]any{"count": float64(1)}

	case "removeByQuery":
		collection, _ := param[string](req, 0)
		query, _ := param[map[string]any](req, 1)
		var n int
		for _, obj := range s.match(collection, query) {
			id, _ := obj["_id"].(string)
			delete(s.collections[collection], id)
			n++
		}
		res.Result = map[string]any{"count": float64(n)}

	case "login":
		res.Result = map[string]any{"_id": "session-user", "token": uuid.NewString()}

	case "logout":
		res.Result = nil

	default:
		res.Error = &rpcError{Code: 400, Message: "unknown method: " + req.Method}
	}

	return res
}

// insert stores obj, assigning an id when missing, and returns the stored
// copy. Callers hold s.mu.
func (s *Server) insert(collection string, obj map[string]any) map[string]any {
	id, _ := obj["_id"].(string)
	if id == "" {
		id = uuid.NewString()
		obj["_id"] = id
	}
	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]map[string]any)
	}
	s.collections[collection][id] = obj
	return obj
}

// match returns the objects whose fields equal every field of query.
// A nil or empty query matches everything. Callers hold s.mu.
func (s *Server) match(collection string, query map[string]any) []map[string]any {
	matched := []map[string]any{}
	for _, obj := range s.collections[collection] {
		ok := true
		for k, want := range query {
			if obj[k] != want {
				ok = false
				break
			}
		}
		if ok {
			matched = append(matched, obj)
		}
	}
	return matched
}

func param[T any](req *rpcRequest, i int) (T, bool) {
	var zero T
	if i >= len(req.Params) {
		return zero, false
	}
	v, ok := req.Params[i].(T)
	if !ok {
		return zero, false
	}
	return v, true
}
