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

package transport

import (
	"encoding/binary"
	"io"
	"sync"

	liblog "github.com/nabbar/eventdance/logger"
	loglvl "github.com/nabbar/eventdance/logger/level"
	libpeer "github.com/nabbar/eventdance/peer"
	libsck "github.com/nabbar/eventdance/socket"
)

// frameHeaderLen is the byte size of a frame's length prefix.
const frameHeaderLen = 4

// DefaultMaxFrame bounds one message's payload when a Frame transport is
// built with Config.MaxFrame unset.
const DefaultMaxFrame = 4 << 20

// Config tunes a Frame transport.
type Config struct {
	// MaxFrame bounds a single message's payload; 0 means DefaultMaxFrame.
	MaxFrame int
}

// FrameTransport is the concrete, length-prefixed Transport this package
// ships: one Peer per underlying stream connection, frames are a 4-byte
// big-endian length prefix followed by that many payload bytes. A
// zero-length frame is the graceful close signal (flush backlog, send
// close frame, wait for ack): the side that reads one
// treats it as EOF and shuts its own channel down, acking the close.
type FrameTransport interface {
	Transport

	// BindSocket registers an already-connected *socket.Socket - dialed
	// through Socket.Connect or delivered by a listener's OnAccept - as a
	// new Peer's channel. Frames are decoded incrementally off the
	// Socket's OnRead callback and sent through its non-blocking Write;
	// nothing in this path blocks the caller. The returned Peer is usable
	// for Send immediately.
	BindSocket(sock *libsck.Socket) libpeer.Peer
}

// NewFrame returns a Frame transport minting peers through mgr (peer.Global()
// if nil) and logging through log (may be nil).
func NewFrame(mgr libpeer.Manager, log liblog.FuncLog, cfg Config) FrameTransport {
	if mgr == nil {
		mgr = libpeer.Global()
	}
	if cfg.MaxFrame <= 0 {
		cfg.MaxFrame = DefaultMaxFrame
	}

	return &frameTransport{
		mgr: mgr,
		log: log,
		cfg: cfg,
		ch:  make(map[string]*channel),
	}
}

type channel struct {
	mu       sync.Mutex
	w        io.Writer
	c        io.Closer
	closed   bool
	graceful bool
}

func (ch *channel) isConnected() bool {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return !ch.closed
}

func (ch *channel) write(frame []byte) error {
	ch.mu.Lock()
	w := ch.w
	closed := ch.closed
	ch.mu.Unlock()

	if closed {
		return ErrorChannelClosed.Error(nil)
	}
	return writeFrame(w, frame)
}

func (ch *channel) shutdown(graceful bool) {
	ch.mu.Lock()
	if ch.closed {
		ch.mu.Unlock()
		return
	}
	ch.closed = true
	ch.graceful = graceful
	c := ch.c
	ch.mu.Unlock()

	if c != nil {
		_ = c.Close()
	}
}

func (ch *channel) wasGraceful() bool {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.graceful
}

type frameTransport struct {
	mgr libpeer.Manager
	log liblog.FuncLog
	cfg Config

	mu     sync.Mutex
	ch     map[string]*channel
	closed bool

	onReceive    OnReceive
	onNewPeer    OnNewPeer
	onPeerClosed OnPeerClosed
}

func (ft *frameTransport) logf(lvl loglvl.Level, msg string, args ...any) {
	if ft.log == nil {
		return
	}
	if l := ft.log(); l != nil {
		l.Entry(lvl, msg, args...).Log()
	}
}

func (ft *frameTransport) SetOnReceive(fn OnReceive)       { ft.mu.Lock(); ft.onReceive = fn; ft.mu.Unlock() }
func (ft *frameTransport) SetOnNewPeer(fn OnNewPeer)       { ft.mu.Lock(); ft.onNewPeer = fn; ft.mu.Unlock() }
func (ft *frameTransport) SetOnPeerClosed(fn OnPeerClosed) { ft.mu.Lock(); ft.onPeerClosed = fn; ft.mu.Unlock() }

func (ft *frameTransport) emitReceive(p libpeer.Peer, v libpeer.View) {
	ft.mu.Lock()
	fn := ft.onReceive
	ft.mu.Unlock()

	if fn == nil {
		return
	}

	p.SetView(v)
	fn(p, v)
	p.ClearView()
}

func (ft *frameTransport) emitNewPeer(p libpeer.Peer) {
	ft.mu.Lock()
	fn := ft.onNewPeer
	ft.mu.Unlock()
	if fn != nil {
		fn(p)
	}
}

func (ft *frameTransport) emitPeerClosed(p libpeer.Peer, graceful bool) {
	ft.mu.Lock()
	fn := ft.onPeerClosed
	ft.mu.Unlock()
	if fn != nil {
		fn(p, graceful)
	}
}

func (ft *frameTransport) register(id string, ch *channel) {
	ft.mu.Lock()
	ft.ch[id] = ch
	ft.mu.Unlock()
}

func (ft *frameTransport) unregister(id string) {
	ft.mu.Lock()
	delete(ft.ch, id)
	ft.mu.Unlock()
}

func (ft *frameTransport) lookup(id string) *channel {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	return ft.ch[id]
}

func (ft *frameTransport) CreateNewPeer() libpeer.Peer {
	return ft.mgr.New(func() bool { return false })
}

func (ft *frameTransport) PeerIsConnected(p libpeer.Peer) bool {
	ch := ft.lookup(p.ID())
	return ch != nil && ch.isConnected()
}

// Send delivers data now if p has an open channel; otherwise it is pushed
// to p's backlog for the next flush.
func (ft *frameTransport) Send(p libpeer.Peer, data []byte) error {
	if len(data) == 0 {
		// Writes with an empty buffer are no-ops, and a zero-length
		// frame is reserved as the close signal.
		return nil
	}

	ch := ft.lookup(p.ID())
	if ch == nil {
		return p.Backlog().Push(data)
	}

	if err := ch.write(data); err != nil {
		return p.Backlog().Push(data)
	}

	p.Touch()
	return nil
}

func (ft *frameTransport) flushBacklog(p libpeer.Peer, ch *channel) {
	for {
		frame, ok := p.Backlog().Pop()
		if !ok {
			return
		}
		if err := ch.write(frame); err != nil {
			ft.logf(loglvl.WarnLevel, "transport: backlog flush for peer %s failed: %v", p.ID(), err)
			return
		}
	}
}

func (ft *frameTransport) ClosePeer(p libpeer.Peer, graceful bool) {
	ch := ft.lookup(p.ID())
	if ch == nil {
		p.BeginClose(graceful)
		return
	}

	p.BeginClose(graceful)

	if graceful {
		ft.flushBacklog(p, ch)
		_ = ch.write(nil)
	} else {
		p.Backlog().Discard()
	}

	ch.shutdown(graceful)
}

func (ft *frameTransport) Close() {
	ft.mu.Lock()
	ft.closed = true
	all := make([]*channel, 0, len(ft.ch))
	for _, ch := range ft.ch {
		all = append(all, ch)
	}
	ft.ch = make(map[string]*channel)
	ft.mu.Unlock()

	for _, ch := range all {
		ch.shutdown(false)
	}
}

// BindSocket registers sock as a new Peer's channel, wiring its OnRead
// callback to an incremental frame decoder and its OnClose callback to
// peer teardown. It returns immediately: decoding and dispatch run on
// sock's Engine scheduler goroutine as bytes arrive, never blocking the
// caller.
func (ft *frameTransport) BindSocket(sock *libsck.Socket) libpeer.Peer {
	ch := &channel{w: sock, c: sock}
	p := ft.mgr.New(ch.isConnected)

	ft.register(p.ID(), ch)
	ft.emitNewPeer(p)

	dec := &frameDecoder{maxFrame: ft.cfg.MaxFrame}

	sock.OnRead(func(chunk []byte) {
		err := dec.feed(chunk, func(frame []byte) bool {
			p.Touch()

			if len(frame) == 0 {
				ch.shutdown(true)
				return false
			}

			ft.emitReceive(p, libpeer.View{Buffer: frame, Size: len(frame)})
			return true
		})
		if err != nil {
			ft.logf(loglvl.WarnLevel, "transport: peer %s framing error: %v", p.ID(), err)
			_ = sock.Close()
		}
	})

	sock.OnClose(func() {
		ft.unregister(p.ID())
		graceful := ch.wasGraceful()
		ch.shutdown(graceful)
		p.BeginClose(graceful)
		ft.emitPeerClosed(p, graceful)
	})

	return p
}

// writeFrame writes a 4-byte big-endian length prefix followed by frame. A
// nil frame writes the zero-length close signal.
func writeFrame(w io.Writer, frame []byte) error {
	var hdr [frameHeaderLen]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(frame)))

	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	if len(frame) == 0 {
		return nil
	}
	_, err := w.Write(frame)
	return err
}

// frameDecoder reassembles the length-prefixed wire format
// out of arbitrarily-sized chunks handed to it by a Socket's OnRead
// callback, which may split or coalesce frames at any byte boundary.
type frameDecoder struct {
	buf      []byte
	maxFrame int
}

// feed appends chunk to the pending buffer and invokes onFrame once per
// complete frame found (nil slice for the zero-length close signal),
// stopping early if onFrame returns false.
func (d *frameDecoder) feed(chunk []byte, onFrame func(frame []byte) bool) error {
	d.buf = append(d.buf, chunk...)

	for {
		if len(d.buf) < frameHeaderLen {
			return nil
		}

		n := binary.BigEndian.Uint32(d.buf[:frameHeaderLen])
		if d.maxFrame > 0 && int(n) > d.maxFrame {
			return ErrorFrameTooLarge.Error(nil)
		}

		total := frameHeaderLen + int(n)
		if len(d.buf) < total {
			return nil
		}

		frame := d.buf[frameHeaderLen:total]
		rest := d.buf[total:]
		d.buf = append(make([]byte, 0, len(rest)), rest...)

		if n == 0 {
			if !onFrame(nil) {
				return nil
			}
			continue
		}

		if !onFrame(frame) {
			return nil
		}
	}
}
