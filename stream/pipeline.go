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

package stream

import (
	"net"
	"sync"

	libthr "github.com/nabbar/eventdance/throttle"
	libtls "github.com/nabbar/eventdance/tlsengine"
)

// throttledConn is the raw conn wrapped so that crypto/tls (which requires
// a full net.Conn, not just io.ReadWriteCloser) can sit directly on top of
// the rate-limited layer. Non-I/O methods pass straight through to the
// underlying connection.
type throttledConn struct {
	net.Conn

	read  libthr.Throttle
	write libthr.Throttle

	onDelayRead  func(waitMs int64)
	onDelayWrite func(waitMs int64)
}

func (t *throttledConn) Read(p []byte) (int, error) {
	if t.read == nil {
		return t.Conn.Read(p)
	}

	allowed, waitMs := t.read.Request(len(p))
	if allowed == 0 {
		if t.onDelayRead != nil {
			t.onDelayRead(waitMs)
		}
		return 0, errWouldBlock
	}

	n, err := t.Conn.Read(p[:allowed])
	t.read.Report(n)
	return n, err
}

func (t *throttledConn) Write(p []byte) (int, error) {
	if t.write == nil {
		return t.Conn.Write(p)
	}

	allowed, waitMs := t.write.Request(len(p))
	if allowed == 0 {
		if t.onDelayWrite != nil {
			t.onDelayWrite(waitMs)
		}
		return 0, errWouldBlock
	}

	n, err := t.Conn.Write(p[:allowed])
	t.write.Report(n)
	return n, err
}

// pipeline is the concrete Pipeline: raw conn wrapped by an (optional)
// throttle, an (optional) TLS session, and an outermost unread buffer.
type pipeline struct {
	mu sync.Mutex

	raw        net.Conn
	thr        *throttledConn
	tls        libtls.Session
	tlsStarted bool
	top        layer

	unread []byte

	drained      []func()
	filled       []func()
	onDelayRead  func(waitMs int64)
	onDelayWrite func(waitMs int64)

	closed bool
}

func newPipeline(conn net.Conn, readThrottle, writeThrottle libthr.Throttle) *pipeline {
	p := &pipeline{raw: conn}

	p.thr = &throttledConn{Conn: conn, read: readThrottle, write: writeThrottle}
	p.thr.onDelayRead = func(waitMs int64) {
		if p.onDelayRead != nil {
			p.onDelayRead(waitMs)
		}
	}
	p.thr.onDelayWrite = func(waitMs int64) {
		if p.onDelayWrite != nil {
			p.onDelayWrite(waitMs)
		}
	}

	p.top = p.thr
	return p
}

func (p *pipeline) Read(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return 0, ErrorClosed.Error(nil)
	}

	if len(p.unread) > 0 {
		n := copy(b, p.unread)
		p.unread = p.unread[n:]

		if len(p.unread) == 0 {
			p.fireDrained()
		}
		return n, nil
	}

	n, err := p.top.Read(b)
	if n == 0 && err == nil {
		p.fireDrained()
	}
	return n, err
}

func (p *pipeline) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return 0, ErrorClosed.Error(nil)
	}

	n, err := p.top.Write(b)
	if n < len(b) {
		p.fireFilled()
	}
	return n, err
}

func (p *pipeline) Unread(b []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(b) == 0 {
		return
	}

	cp := make([]byte, len(b))
	copy(cp, b)
	p.unread = append(cp, p.unread...)
}

func (p *pipeline) Buffered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.unread)
}

func (p *pipeline) StartTLS(session libtls.Session) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.tlsStarted {
		return ErrorAlreadyActive.Error(nil)
	}

	p.tlsStarted = true
	p.tls = session
	if session != nil {
		p.top = session
	}
	return nil
}

func (p *pipeline) TLSSession() libtls.Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tls
}

func (p *pipeline) OnDrained(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.drained = append(p.drained, fn)
}

func (p *pipeline) OnFilled(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.filled = append(p.filled, fn)
}

func (p *pipeline) OnDelayRead(fn func(waitMs int64)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onDelayRead = fn
}

func (p *pipeline) OnDelayWrite(fn func(waitMs int64)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onDelayWrite = fn
}

func (p *pipeline) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	if p.tls != nil {
		_ = p.tls.Close()
	}
	return p.raw.Close()
}

// fireDrained and fireFilled must be called with mu held; callbacks run
// synchronously since every pipeline call already happens on the owning
// Socket's single scheduler goroutine.
func (p *pipeline) fireDrained() {
	for _, fn := range p.drained {
		fn()
	}
}

func (p *pipeline) fireFilled() {
	for _, fn := range p.filled {
		fn()
	}
}
