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

// Package rpc implements the JSON-RPC protocol layer: request/
// response correlation and a command dispatcher carried over any
// transport.Transport. The JSON text itself is produced and consumed with
// encoding/json as a black-box tokenizer - this package never hand-rolls
// JSON parsing.
package rpc

import (
	"encoding/json"

	libpeer "github.com/nabbar/eventdance/peer"
	libtrn "github.com/nabbar/eventdance/transport"
)

// Standard JSON-RPC 2.0 error codes, used for the error responses this
// package generates itself (unknown method, malformed request); a method
// handler is free to use any other code for its own Error values.
const (
	ErrCodeParse          = -32700
	ErrCodeInvalidRequest = -32600
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternal       = -32603
)

// Error is the JSON-RPC `error` member: `{code, message}` or
// absent entirely on a well-formed response.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// RespondFunc sends a response frame back to the peer a request arrived on.
// Calling it more than once, or calling it for a notification (an incoming
// request whose id was null), is a no-op. Exactly one of result/rpcErr
// should be non-nil.
type RespondFunc func(result any, rpcErr *Error)

// MethodHandler processes one inbound request for a registered method name.
type MethodHandler func(params json.RawMessage, respond RespondFunc)

// CompletionFunc is invoked exactly once for an outbound Call: with a
// result, an rpcErr, or a transport/cancellation err. Exactly one of
// result completion, error completion or cancellation eventually fires.
type CompletionFunc func(result json.RawMessage, rpcErr *Error, err error)

// CancelFunc cancels a pending Call. A cancel after the completion already
// fired is a no-op; a cancel racing the completion guarantees CompletionFunc
// fires exactly once either way.
type CancelFunc func()

// Session is one JSON-RPC conversation: it multiplexes over
// every transport.Transport handed to Attach, correlating responses to
// outbound calls and dispatching inbound requests to registered methods.
type Session interface {
	// Attach wires this session into t's receive signal. A session may be
	// attached to several transports at once.
	Attach(t libtrn.Transport)

	// RegisterMethod installs handler for method name, replacing any
	// previous registration.
	RegisterMethod(name string, handler MethodHandler)

	// Call sends a request with a non-null id over t to p and returns a
	// CancelFunc. done fires exactly once: on response, on a protocol/
	// transport error, or on cancellation.
	Call(t libtrn.Transport, p libpeer.Peer, method string, params any, done CompletionFunc) CancelFunc

	// Notify sends a request with a null id: fire-and-forget, no response
	// is ever expected and none will be dispatched to a waiter.
	Notify(t libtrn.Transport, p libpeer.Peer, method string, params any) error

	// Close cancels every pending Call with a CANCELLED completion.
	Close()
}

// New returns a Session with no methods registered and no transports
// attached yet.
func New() Session {
	return newSession()
}
