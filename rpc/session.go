/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package rpc

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	hashuuid "github.com/hashicorp/go-uuid"

	libpeer "github.com/nabbar/eventdance/peer"
	libtrn "github.com/nabbar/eventdance/transport"
)

// wireFrame is the union of the request shape ({id, method, params}) and
// the response shape ({id, result, error}); RawMessage fields let
// dispatch tell which arrived without a second parse pass.
type wireFrame struct {
	ID     *json.RawMessage `json:"id"`
	Method string           `json:"method,omitempty"`
	Params json.RawMessage  `json:"params,omitempty"`
	Result json.RawMessage  `json:"result,omitempty"`
	Error  *Error           `json:"error,omitempty"`
}

type pendingCall struct {
	mu   sync.Mutex
	done bool
	cb   CompletionFunc
}

func (pc *pendingCall) complete(result json.RawMessage, rpcErr *Error, err error) {
	pc.mu.Lock()
	if pc.done {
		pc.mu.Unlock()
		return
	}
	pc.done = true
	cb := pc.cb
	pc.mu.Unlock()

	if cb != nil {
		cb(result, rpcErr, err)
	}
}

type session struct {
	handle  string
	counter atomic.Uint64

	mu      sync.Mutex
	methods map[string]MethodHandler
	pending map[string]*pendingCall
	closed  bool
}

func newSession() *session {
	s := &session{
		methods: make(map[string]MethodHandler),
		pending: make(map[string]*pendingCall),
	}

	// A random handle, not the session's memory address: the
	// "<handle>.<counter>" id only needs uniqueness across sessions
	// sharing a transport, and a pointer is reused by the GC across the
	// process lifetime while a random token is not.
	if h, err := hashuuid.GenerateUUID(); err == nil {
		s.handle = h
	} else {
		s.handle = fmt.Sprintf("%p", s)
	}
	return s
}

func (s *session) RegisterMethod(name string, handler MethodHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.methods[name] = handler
}

func (s *session) Attach(t libtrn.Transport) {
	t.SetOnReceive(func(p libpeer.Peer, v libpeer.View) {
		buf := make([]byte, v.Size)
		copy(buf, v.Buffer[:v.Size])
		s.dispatch(t, p, buf)
	})
}

// dispatch parses one frame and routes it either to a registered method
// (request) or to the pending call it correlates with (response). Malformed
// frames abort just this message and keep the session open.
func (s *session) dispatch(t libtrn.Transport, p libpeer.Peer, raw []byte) {
	var f wireFrame
	if err := json.Unmarshal(raw, &f); err != nil {
		return
	}

	if f.Method != "" {
		s.dispatchRequest(t, p, f)
		return
	}

	if f.Result != nil || f.Error != nil {
		s.dispatchResponse(f)
		return
	}

	// Neither a method nor a result/error: not a well-formed frame.
	// Dropped silently; the session stays open.
}

func (s *session) dispatchRequest(t libtrn.Transport, p libpeer.Peer, f wireFrame) {
	id := f.ID

	s.mu.Lock()
	handler, ok := s.methods[f.Method]
	s.mu.Unlock()

	respond := func(result any, rpcErr *Error) {
		if id == nil {
			return
		}
		s.sendResponse(t, p, id, result, rpcErr)
	}

	if !ok {
		respond(nil, &Error{Code: ErrCodeMethodNotFound, Message: "method not found: " + f.Method})
		return
	}

	handler(f.Params, respond)
}

func (s *session) sendResponse(t libtrn.Transport, p libpeer.Peer, id *json.RawMessage, result any, rpcErr *Error) {
	resp := wireFrame{ID: id, Error: rpcErr}

	if rpcErr == nil {
		raw, err := json.Marshal(result)
		if err != nil {
			resp.Error = &Error{Code: ErrCodeInternal, Message: err.Error()}
		} else {
			resp.Result = raw
		}
	}

	body, err := json.Marshal(resp)
	if err != nil {
		return
	}

	_ = t.Send(p, body)
}

func (s *session) dispatchResponse(f wireFrame) {
	if f.ID == nil {
		return
	}

	var idStr string
	if err := json.Unmarshal(*f.ID, &idStr); err != nil {
		// Inbound ids are echoed verbatim and may be numeric on the wire;
		// fall back to the raw JSON text as the correlation key.
		idStr = string(*f.ID)
	}

	s.mu.Lock()
	pc, ok := s.pending[idStr]
	if ok {
		delete(s.pending, idStr)
	}
	s.mu.Unlock()

	if !ok {
		return
	}

	pc.complete(f.Result, f.Error, nil)
}

func (s *session) nextID() string {
	n := s.counter.Add(1)
	return fmt.Sprintf("%s.%d", s.handle, n)
}

func (s *session) Call(t libtrn.Transport, p libpeer.Peer, method string, params any, done CompletionFunc) CancelFunc {
	idStr := s.nextID()
	idRaw := json.RawMessage(fmt.Sprintf("%q", idStr))

	pc := &pendingCall{cb: done}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		pc.complete(nil, nil, ErrorSessionClosed.Error(nil))
		return func() {}
	}
	s.pending[idStr] = pc
	s.mu.Unlock()

	paramsRaw, err := json.Marshal(params)
	if err != nil {
		s.mu.Lock()
		delete(s.pending, idStr)
		s.mu.Unlock()
		pc.complete(nil, nil, ErrorProtocolViolation.Error(err))
		return func() {}
	}

	req := wireFrame{ID: (*json.RawMessage)(&idRaw), Method: method, Params: paramsRaw}
	body, err := json.Marshal(req)
	if err != nil {
		s.mu.Lock()
		delete(s.pending, idStr)
		s.mu.Unlock()
		pc.complete(nil, nil, ErrorProtocolViolation.Error(err))
		return func() {}
	}

	if err = t.Send(p, body); err != nil {
		s.mu.Lock()
		delete(s.pending, idStr)
		s.mu.Unlock()
		pc.complete(nil, nil, err)
		return func() {}
	}

	return func() {
		s.mu.Lock()
		_, still := s.pending[idStr]
		if still {
			delete(s.pending, idStr)
		}
		s.mu.Unlock()

		if still {
			pc.complete(nil, nil, ErrorCancelled.Error(nil))
		}
	}
}

func (s *session) Notify(t libtrn.Transport, p libpeer.Peer, method string, params any) error {
	paramsRaw, err := json.Marshal(params)
	if err != nil {
		return ErrorProtocolViolation.Error(err)
	}

	req := wireFrame{Method: method, Params: paramsRaw}
	body, err := json.Marshal(req)
	if err != nil {
		return ErrorProtocolViolation.Error(err)
	}

	return t.Send(p, body)
}

func (s *session) Close() {
	s.mu.Lock()
	s.closed = true
	all := s.pending
	s.pending = make(map[string]*pendingCall)
	s.mu.Unlock()

	for _, pc := range all {
		pc.complete(nil, nil, ErrorCancelled.Error(nil))
	}
}
