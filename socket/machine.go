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

package socket

import (
	"context"
	"io"
	"net"
	"sync"
	"time"

	sktcfg "github.com/nabbar/eventdance/socket/config"

	libreact "github.com/nabbar/eventdance/reactor"
	libres "github.com/nabbar/eventdance/resolver"
	libsch "github.com/nabbar/eventdance/scheduler"
	libstr "github.com/nabbar/eventdance/stream"
	libthr "github.com/nabbar/eventdance/throttle"
	libtls "github.com/nabbar/eventdance/tlsengine"
)

// Socket is one connection's worth of the state machine. It is driven
// exclusively from its Engine's scheduler goroutine; every exported method
// that mutates state posts to that scheduler rather than touching fields
// directly from the caller's goroutine. Blocking syscalls (dial, accept)
// run on their own goroutines - only the resulting state transition is
// posted back to the scheduler.
type Socket struct {
	eng *Engine

	mu           sync.Mutex
	state        State
	priority     libsch.Priority
	userPriority libsch.Priority

	conn net.Conn
	ln   net.Listener
	pc   net.PacketConn
	pipe libstr.Pipeline

	tlsAutostart bool
	tlsMode      libtls.Mode
	tlsCred      libtls.Credentials
	tlsSession   libtls.Session

	delayedClose bool

	onState  func(State)
	onRead   func(p []byte)
	onWrite  func(n int)
	onClose  func()
	onError  func(err error)
	onAccept func(child *Socket)
	onPacket func(p []byte, from net.Addr)
}

// stackThrottles merges a config-declared throttle with an explicitly
// passed one (e.g. a per-group limiter); either may be nil.
func stackThrottles(a, b libthr.Throttle) libthr.Throttle {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	default:
		return libthr.Stack(a, b)
	}
}

// New allocates a Socket bound to eng, starting CLOSED.
func New(eng *Engine) *Socket {
	return &Socket{
		eng:          eng,
		state:        StateClosed,
		priority:     libsch.PriorityDefault,
		userPriority: libsch.PriorityDefault,
	}
}

func (s *Socket) OnStateChange(fn func(State)) { s.mu.Lock(); s.onState = fn; s.mu.Unlock() }
func (s *Socket) OnRead(fn func(p []byte))     { s.mu.Lock(); s.onRead = fn; s.mu.Unlock() }
func (s *Socket) OnWrite(fn func(n int))       { s.mu.Lock(); s.onWrite = fn; s.mu.Unlock() }
func (s *Socket) OnClose(fn func())            { s.mu.Lock(); s.onClose = fn; s.mu.Unlock() }
func (s *Socket) OnError(fn func(err error))   { s.mu.Lock(); s.onError = fn; s.mu.Unlock() }
func (s *Socket) OnAccept(fn func(*Socket))    { s.mu.Lock(); s.onAccept = fn; s.mu.Unlock() }

// OnPacket registers the datagram callback used by packet-family listeners
// (udp, unixgram). Stream listeners never invoke it.
func (s *Socket) OnPacket(fn func(p []byte, from net.Addr)) {
	s.mu.Lock()
	s.onPacket = fn
	s.mu.Unlock()
}

// SetPriority sets the priority restored once bring-up (resolve/connect/
// listen) has finished elevating it.
func (s *Socket) SetPriority(p libsch.Priority) {
	s.mu.Lock()
	s.userPriority = p
	if s.state != StateResolving && s.state != StateConnecting {
		s.priority = p
	}
	s.mu.Unlock()
}

func (s *Socket) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Addr returns the listener or connection's local address, or nil before
// one has been established.
func (s *Socket) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ln != nil {
		return s.ln.Addr()
	}
	if s.pc != nil {
		return s.pc.LocalAddr()
	}
	if s.conn != nil {
		return s.conn.LocalAddr()
	}
	return nil
}

func (s *Socket) currentPriority() libsch.Priority {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.priority
}

func (s *Socket) setState(st State) {
	s.mu.Lock()
	s.state = st
	cb := s.onState
	s.mu.Unlock()

	if cb != nil {
		cb(st)
	}
}

func (s *Socket) emitError(err error) {
	s.mu.Lock()
	cb := s.onError
	s.mu.Unlock()
	if cb != nil {
		cb(err)
	}
}

func (s *Socket) elevate() {
	s.mu.Lock()
	s.priority = libsch.PriorityHigh
	s.mu.Unlock()
}

func (s *Socket) restorePriority() {
	s.mu.Lock()
	s.priority = s.userPriority
	s.mu.Unlock()
}

// Connect drives CLOSED -> RESOLVING -> CONNECTING -> CONNECTED (and on to
// TLS_HANDSHAKING when cfg enables TLS).
func (s *Socket) Connect(cfg sktcfg.Client, timeout time.Duration, readT, writeT libthr.Throttle) error {
	if err := cfg.Validate(); err != nil {
		return ErrorInvalidAddress.Error(err)
	}

	if s.State() != StateClosed {
		return ErrorAlreadyActive.Error(nil)
	}

	if cfg.TLS.Enabled && !cfg.Network.IsStream() {
		return ErrorInvalidAddress.Error(nil)
	}

	readT = stackThrottles(cfg.ReadThrottle.New(), readT)
	writeT = stackThrottles(cfg.WriteThrottle.New(), writeT)

	s.setState(StateResolving)
	s.elevate()

	if cfg.TLS.Enabled {
		s.tlsAutostart = true
		s.tlsMode = libtls.ModeClient
		s.tlsCred = libtls.Credentials{Config: cfg.TLS.Config.New(), ServerName: cfg.TLS.ServerName}
	}

	s.eng.res.Resolve(cfg.Network, cfg.Address, func(candidates []libres.Candidate, rerr error) {
		s.eng.sched.Post(s.currentPriority(), func() {
			if rerr != nil {
				s.restorePriority()
				s.setState(StateClosed)
				s.emitError(ErrorResolveAddress.Error(rerr))
				return
			}
			s.dial(candidates[0], timeout, readT, writeT)
		})
	})

	return nil
}

func (s *Socket) dial(cand libres.Candidate, timeout time.Duration, readT, writeT libthr.Throttle) {
	s.setState(StateConnecting)

	go func() {
		d := net.Dialer{Timeout: timeout}
		conn, err := d.Dial(cand.Network.String(), cand.Address)

		s.eng.sched.Post(s.currentPriority(), func() {
			if err != nil {
				s.restorePriority()
				s.setState(StateClosed)

				if ne, ok := err.(net.Error); ok && ne.Timeout() {
					s.emitError(ErrorConnectTimeout.Error(err))
				} else {
					s.emitError(ErrorConnectRefused.Error(err))
				}
				return
			}

			s.finishConnect(conn, readT, writeT)
		})
	}()
}

func (s *Socket) finishConnect(conn net.Conn, readT, writeT libthr.Throttle) {
	pipe := libstr.New(conn, readT, writeT)

	// Rearm discipline: whenever the buffered layer transitions to empty
	// (the application consumed everything, pushed-back bytes included),
	// ask for the next readable event. Posted, not called inline, since
	// the drain signal fires under the pipeline's lock.
	pipe.OnDrained(func() {
		s.eng.sched.Post(s.currentPriority(), func() {
			_ = s.eng.react.Modify(s, libreact.Readable)
		})
	})

	// A throttle denial carries a wait hint; rearm only once it elapses so
	// the readiness event does not fire straight back into the denial.
	pipe.OnDelayRead(func(waitMs int64) {
		s.eng.sched.PostAfter(time.Duration(waitMs)*time.Millisecond, s.currentPriority(), func() {
			_ = s.eng.react.Modify(s, libreact.Readable)
		})
	})
	pipe.OnDelayWrite(func(waitMs int64) {
		s.eng.sched.PostAfter(time.Duration(waitMs)*time.Millisecond, s.currentPriority(), func() {
			_ = s.eng.react.Modify(s, libreact.Writable)
		})
	})

	s.mu.Lock()
	s.conn = conn
	s.pipe = pipe
	autostart := s.tlsAutostart
	s.mu.Unlock()

	s.restorePriority()
	s.setState(StateConnected)

	if autostart {
		s.beginHandshake()
		return
	}

	s.armReadable()
}

// Bind drives CLOSED -> RESOLVING -> BOUND, the idle pre-listen step.
func (s *Socket) Bind(cfg sktcfg.Server) error {
	if err := cfg.Validate(); err != nil {
		return ErrorInvalidAddress.Error(err)
	}
	if s.State() != StateClosed {
		return ErrorAlreadyActive.Error(nil)
	}

	s.setState(StateResolving)
	s.elevate()

	s.eng.res.Resolve(cfg.Network, cfg.Address, func(candidates []libres.Candidate, rerr error) {
		s.eng.sched.Post(s.currentPriority(), func() {
			if rerr != nil {
				s.restorePriority()
				s.setState(StateClosed)
				s.emitError(ErrorResolveAddress.Error(rerr))
				return
			}
			s.restorePriority()
			s.setState(StateBound)
		})
	})

	return nil
}

// Listen drives CLOSED/BOUND -> RESOLVING -> LISTENING, accepting
// connections in a loop until the listener is closed. Each accepted
// connection becomes a new CONNECTED (or TLS_HANDSHAKING) child Socket
// delivered through OnAccept.
func (s *Socket) Listen(cfg sktcfg.Server, readT, writeT libthr.Throttle) error {
	if err := cfg.Validate(); err != nil {
		return ErrorInvalidAddress.Error(err)
	}

	st := s.State()
	if st != StateClosed && st != StateBound {
		return ErrorAlreadyActive.Error(nil)
	}

	if cfg.TLS.Enabled && !cfg.Network.IsStream() {
		return ErrorInvalidAddress.Error(nil)
	}

	readT = stackThrottles(cfg.ReadThrottle.New(), readT)
	writeT = stackThrottles(cfg.WriteThrottle.New(), writeT)

	s.setState(StateResolving)
	s.elevate()

	if cfg.TLS.Enabled {
		s.tlsAutostart = true
		s.tlsMode = libtls.ModeServer
		s.tlsCred = libtls.Credentials{Config: cfg.TLS.Config.New()}
	}

	s.eng.res.Resolve(cfg.Network, cfg.Address, func(candidates []libres.Candidate, rerr error) {
		s.eng.sched.Post(s.currentPriority(), func() {
			if rerr != nil {
				s.restorePriority()
				s.setState(StateClosed)
				s.emitError(ErrorResolveAddress.Error(rerr))
				return
			}
			if candidates[0].Network.IsStream() {
				s.openListener(candidates[0], readT, writeT)
			} else {
				s.openPacketListener(candidates[0])
			}
		})
	})

	return nil
}

func (s *Socket) openListener(cand libres.Candidate, readT, writeT libthr.Throttle) {
	ln, err := net.Listen(cand.Network.String(), cand.Address)
	if err != nil {
		s.restorePriority()
		s.setState(StateClosed)
		s.emitError(ErrorSocketAccept.Error(err))
		return
	}

	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()

	s.setState(StateListening)

	go s.acceptLoop(ln, readT, writeT)
}

// acceptLoop accepts in a loop until the listener errors (normally because
// Close tore it down), the drain-until-would-block behavior at the
// granularity Go's net.Listener exposes.
func (s *Socket) acceptLoop(ln net.Listener, readT, writeT libthr.Throttle) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ErrorFilter(err) == nil {
				return
			}
			s.eng.sched.Post(s.currentPriority(), func() {
				s.emitError(ErrorSocketAccept.Error(err))
			})
			return
		}

		s.eng.sched.Post(s.currentPriority(), func() {
			child := New(s.eng)
			child.tlsAutostart = s.tlsAutostart
			child.tlsMode = s.tlsMode
			child.tlsCred = s.tlsCred
			child.finishConnect(conn, readT, writeT)

			s.mu.Lock()
			onAccept := s.onAccept
			s.mu.Unlock()

			if onAccept != nil {
				onAccept(child)
			}
		})
	}
}

// openPacketListener is the datagram (udp, unixgram) counterpart of
// openListener: there is no accept step, the socket itself goes LISTENING
// and every received datagram is delivered through OnPacket.
func (s *Socket) openPacketListener(cand libres.Candidate) {
	pc, err := net.ListenPacket(cand.Network.String(), cand.Address)
	if err != nil {
		s.restorePriority()
		s.setState(StateClosed)
		s.emitError(ErrorSocketAccept.Error(err))
		return
	}

	s.mu.Lock()
	s.pc = pc
	s.mu.Unlock()

	s.setState(StateListening)

	go s.packetLoop(pc)
}

// packetLoop blocks on ReadFrom until the packet conn is closed, posting
// each datagram onto the scheduler so OnPacket runs serialized with every
// other state transition.
func (s *Socket) packetLoop(pc net.PacketConn) {
	buf := make([]byte, 64*1024)

	for {
		n, from, err := pc.ReadFrom(buf)
		if err != nil {
			if ErrorFilter(err) == nil {
				return
			}
			s.eng.sched.Post(s.currentPriority(), func() {
				s.emitError(ErrorNotReadable.Error(err))
			})
			return
		}

		data := make([]byte, n)
		copy(data, buf[:n])

		s.eng.sched.Post(s.currentPriority(), func() {
			s.mu.Lock()
			cb := s.onPacket
			s.mu.Unlock()
			if cb != nil {
				cb(data, from)
			}
		})
	}
}

// WriteTo replies to a datagram source on a packet-family LISTENING socket.
func (s *Socket) WriteTo(p []byte, addr net.Addr) (int, error) {
	s.mu.Lock()
	pc := s.pc
	s.mu.Unlock()

	if pc == nil || s.State() != StateListening {
		return 0, ErrorNotWritable.Error(nil)
	}

	return pc.WriteTo(p, addr)
}

func (s *Socket) beginHandshake() {
	s.setState(StateTLSHandshaking)

	session, err := libtls.New(s.conn, s.tlsMode, s.tlsCred)
	if err != nil {
		s.setState(StateClosing)
		s.emitError(ErrorTLSHandshake.Error(err))
		s.finishClose()
		return
	}

	s.mu.Lock()
	s.tlsSession = session
	s.mu.Unlock()

	go func() {
		herr := session.Handshake(context.Background())
		s.eng.sched.Post(s.currentPriority(), func() {
			if herr != nil {
				s.setState(StateClosing)
				s.emitError(ErrorTLSHandshake.Error(herr))
				s.finishClose()
				return
			}

			if vr := session.VerifyPeerCertificate(); vr != libtls.VerifyOK {
				s.setState(StateClosing)
				s.emitError(ErrorTLSPeerInvalid.Error(nil))
				s.finishClose()
				return
			}

			if err := s.pipe.StartTLS(session); err != nil {
				s.setState(StateClosing)
				s.emitError(ErrorTLSHandshake.Error(err))
				s.finishClose()
				return
			}

			s.setState(StateConnected)
			s.armReadable()
		})
	}()
}

// armReadable registers (or re-registers) readable interest with the
// reactor for the current conn.
func (s *Socket) armReadable() {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()

	watchable, ok := conn.(libreact.Watchable)
	if !ok {
		return
	}

	if err := s.eng.react.Add(s, watchable, libreact.Readable); err != nil {
		_ = s.eng.react.Modify(s, libreact.Readable)
	}
	s.eng.register(s)
}

// onReadable is invoked by the Engine's dispatcher on the scheduler
// goroutine whenever the reactor reports this socket readable. It performs
// exactly one read per readiness event: the reactor just observed data (or
// EOF) pending, so the read returns without blocking, and rearming instead
// of looping keeps the shared scheduler goroutine from ever parking inside
// a connection read while other sockets wait.
func (s *Socket) onReadable() {
	if s.State() != StateConnected {
		return
	}

	buf := make([]byte, 32*1024)

	n, err := s.pipe.Read(buf)
	if n > 0 {
		s.mu.Lock()
		cb := s.onRead
		s.mu.Unlock()
		if cb != nil {
			data := make([]byte, n)
			copy(data, buf[:n])
			cb(data)
		}

		if err == nil && s.pipe.Buffered() > 0 {
			// The handler pushed part of the data back. Stop delivering;
			// the drain signal rearms readable once the handler has
			// pulled the remainder with Read.
			return
		}
	}

	switch {
	case err == nil:
		_ = s.eng.react.Modify(s, libreact.Readable)
	case libstr.IsWouldBlock(err):
		// The throttle denied the read; its delay callback has already
		// scheduled the rearm for when the wait elapses.
	case err == io.EOF:
		s.deferCloseUntilDrained()
	default:
		s.emitError(ErrorNotReadable.Error(err))
		s.initiateClose()
	}
}

// deferCloseUntilDrained closes now unless the buffered layer still holds
// bytes the application has not consumed; then the close waits for the
// pipeline's drain signal, so a hangup never discards delivered-but-unread
// data.
func (s *Socket) deferCloseUntilDrained() {
	s.mu.Lock()
	pipe := s.pipe
	s.mu.Unlock()

	if pipe == nil || pipe.Buffered() == 0 {
		s.initiateClose()
		return
	}

	s.mu.Lock()
	s.delayedClose = true
	s.mu.Unlock()

	pipe.OnDrained(func() {
		s.eng.sched.Post(s.currentPriority(), func() {
			s.mu.Lock()
			pending := s.delayedClose
			s.delayedClose = false
			s.mu.Unlock()

			if pending && s.State() == StateConnected {
				s.initiateClose()
			}
		})
	})
}

// Unread pushes p back into the buffered layer so the next Read (or the
// next OnRead delivery) returns it first; used by framers handed more
// bytes than one message.
func (s *Socket) Unread(p []byte) {
	s.mu.Lock()
	pipe := s.pipe
	s.mu.Unlock()

	if pipe != nil {
		pipe.Unread(p)
	}
}

// Read drains bytes previously pushed back with Unread. It never touches
// the wire (inbound wire bytes arrive through OnRead) and returns 0 when
// nothing is buffered, so it cannot block the scheduler goroutine.
func (s *Socket) Read(p []byte) (int, error) {
	s.mu.Lock()
	pipe := s.pipe
	s.mu.Unlock()

	if pipe == nil {
		return 0, ErrorNotReadable.Error(nil)
	}
	if len(p) == 0 || pipe.Buffered() == 0 {
		return 0, nil
	}
	return pipe.Read(p)
}

func (s *Socket) onWritable() {
	s.mu.Lock()
	cb := s.onWrite
	s.mu.Unlock()
	if cb != nil {
		cb(0)
	}
}

// Write submits p to the pipeline. Returns ErrorNotWritable when not
// CONNECTED/TLS_HANDSHAKING.
func (s *Socket) Write(p []byte) (int, error) {
	st := s.State()
	if st != StateConnected {
		return 0, ErrorNotWritable.Error(nil)
	}

	s.mu.Lock()
	pipe := s.pipe
	s.mu.Unlock()

	n, err := pipe.Write(p)
	if err != nil && libstr.IsWouldBlock(err) {
		// Partial write under throttle denial: the delay callback rearms
		// writable once the wait elapses, and OnWrite then tells the
		// caller the socket can take more.
		return n, nil
	}

	s.mu.Lock()
	cb := s.onWrite
	s.mu.Unlock()
	if cb != nil {
		cb(n)
	}

	return n, err
}

// StartTLS inserts the TLS layer over an already-CONNECTED pipeline, for
// callers that want TLS negotiated after plaintext bytes have already been
// exchanged rather than autostarted at Connect/Listen time.
func (s *Socket) StartTLS(mode libtls.Mode, cred libtls.Credentials) error {
	if s.State() != StateConnected {
		return ErrorNotConnected.Error(nil)
	}

	s.mu.Lock()
	if s.tlsSession != nil {
		s.mu.Unlock()
		return ErrorAlreadyActive.Error(nil)
	}
	s.tlsMode = mode
	s.tlsCred = cred
	s.mu.Unlock()

	s.beginHandshake()
	return nil
}

// Close drives any state -> CLOSING -> CLOSED, shutting down the TLS layer
// first when present.
func (s *Socket) Close() error {
	st := s.State()
	if st == StateClosed || st == StateClosing {
		return nil
	}

	s.initiateClose()
	return nil
}

func (s *Socket) initiateClose() {
	s.setState(StateClosing)

	s.mu.Lock()
	session := s.tlsSession
	s.mu.Unlock()

	if session != nil {
		_ = session.ShutdownWrite()
	}

	s.finishClose()
}

func (s *Socket) finishClose() {
	s.eng.react.Remove(s)
	s.eng.unregister(s)

	s.mu.Lock()
	pipe := s.pipe
	conn := s.conn
	ln := s.ln
	pc := s.pc
	s.mu.Unlock()

	if pipe != nil {
		_ = pipe.Close()
	} else if conn != nil {
		_ = conn.Close()
	}
	if ln != nil {
		_ = ln.Close()
	}
	if pc != nil {
		_ = pc.Close()
	}

	s.setState(StateClosed)

	s.mu.Lock()
	cb := s.onClose
	s.mu.Unlock()
	if cb != nil {
		cb()
	}
}
