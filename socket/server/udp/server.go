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

package udp

import (
	"net"
	"sync"

	libsck "github.com/nabbar/eventdance/socket"
	sktcfg "github.com/nabbar/eventdance/socket/config"
)

// Server owns one LISTENING datagram Socket and forwards every received
// datagram to its Handler.
type Server struct {
	cfg sktcfg.Server
	hdl Handler

	mu  sync.Mutex
	skt *libsck.Socket
}

// Config returns the validated listen configuration.
func (s *Server) Config() sktcfg.Server {
	return s.cfg
}

// Listen binds the datagram socket on eng and starts delivering datagrams
// to the Handler.
func (s *Server) Listen(eng *libsck.Engine) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.skt != nil && s.skt.State() != libsck.StateClosed {
		return ErrRunning
	}

	skt := libsck.New(eng)
	skt.OnPacket(func(data []byte, from net.Addr) {
		s.hdl(data, from)
	})

	if err := skt.Listen(s.cfg, nil, nil); err != nil {
		return err
	}

	s.skt = skt
	return nil
}

// WriteTo sends a datagram back to addr through the bound socket.
func (s *Server) WriteTo(p []byte, addr net.Addr) (int, error) {
	s.mu.Lock()
	skt := s.skt
	s.mu.Unlock()

	if skt == nil {
		return 0, ErrRunning
	}
	return skt.WriteTo(p, addr)
}

// Socket returns the bound socket, or nil before Listen.
func (s *Server) Socket() *libsck.Socket {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.skt
}

// Addr returns the bound address once LISTENING, or nil.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	skt := s.skt
	s.mu.Unlock()

	if skt == nil {
		return nil
	}
	return skt.Addr()
}

// IsRunning reports whether the datagram socket is LISTENING.
func (s *Server) IsRunning() bool {
	s.mu.Lock()
	skt := s.skt
	s.mu.Unlock()

	return skt != nil && skt.State() == libsck.StateListening
}

// IsGone reports whether the server holds no live socket.
func (s *Server) IsGone() bool {
	return !s.IsRunning()
}

// Close tears the datagram socket down.
func (s *Server) Close() error {
	s.mu.Lock()
	skt := s.skt
	s.skt = nil
	s.mu.Unlock()

	if skt == nil {
		return nil
	}
	return skt.Close()
}
