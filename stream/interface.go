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

// Package stream implements the fixed pipeline layering:
// raw socket <-> throttled <-> (optional) TLS <-> buffered. Each layer
// exposes plain Read/Write; the buffered outermost layer additionally
// supports Unread (peek-like pushback) and fires Drained/Filled callbacks
// with exact one-shot semantics so the socket state machine knows when to
// re-arm reactor readiness.
package stream

import (
	"io"
	"net"

	libthr "github.com/nabbar/eventdance/throttle"
	libtls "github.com/nabbar/eventdance/tlsengine"
)

// layer is the minimal capability every stage of the pipeline exposes.
type layer interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
}

// Pipeline is one Socket's stream stack. It is not safe for concurrent use
// from more than one goroutine, matching the single-scheduler-thread
// discipline: every call happens on the scheduler goroutine.
type Pipeline interface {
	io.Reader
	io.Writer

	// Unread pushes p back so the next Read returns it before any new
	// bytes: Unread(b) followed by a large-enough Read returns b first,
	// then the next real bytes.
	Unread(p []byte)

	// Buffered reports how many unread bytes are still held in the
	// outermost layer. A hangup must not close the socket while this is
	// non-zero; the close is deferred until OnDrained fires.
	Buffered() int

	// StartTLS inserts the TLS layer over the throttled layer. Calling it
	// twice returns ErrorAlreadyActive.
	StartTLS(session libtls.Session) error

	// TLSSession returns the installed TLS session, or nil if StartTLS was
	// never called.
	TLSSession() libtls.Session

	// OnDrained registers the callback fired exactly once on the read side
	// transitioning from non-empty to empty.
	OnDrained(fn func())

	// OnFilled registers the callback fired exactly once on the write side
	// transitioning from not-full to full.
	OnFilled(fn func())

	// OnDelayRead registers the callback fired when the read-side throttle
	// denies an operation, carrying the suggested wait in milliseconds.
	OnDelayRead(fn func(waitMs int64))

	// OnDelayWrite is the write-side equivalent of OnDelayRead.
	OnDelayWrite(fn func(waitMs int64))

	// Close releases the underlying connection. Safe to call more than
	// once.
	Close() error
}

// New builds a Pipeline over conn with the given per-direction throttles
// (either may be nil, meaning unlimited/no minimum latency).
func New(conn net.Conn, readThrottle, writeThrottle libthr.Throttle) Pipeline {
	return newPipeline(conn, readThrottle, writeThrottle)
}
