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

// Package unixgram builds datagram socket servers on unix domain sockets.
// Like udp there is no accept step; unlike udp the socket file's mode and
// group are applied once the socket binds.
package unixgram

import (
	"errors"
	"net"

	libptc "github.com/nabbar/eventdance/network/protocol"
	sktcfg "github.com/nabbar/eventdance/socket/config"
)

var (
	ErrAddress = errors.New("unixgram server: invalid socket path")
	ErrHandler = errors.New("unixgram server: nil handler")
	ErrRunning = errors.New("unixgram server: already listening")
)

// Handler receives each datagram on the engine's scheduler goroutine,
// together with its source address (which may be empty for unbound
// senders).
type Handler func(data []byte, from net.Addr)

// New validates cfg and returns a server ready to Listen; cfg.Network is
// forced to unixgram and cfg.TLS must be disabled.
func New(h Handler, cfg sktcfg.Server) (*Server, error) {
	if h == nil {
		return nil, ErrHandler
	}

	if cfg.TLS.Enabled {
		return nil, ErrAddress
	}

	cfg.Network = libptc.NetworkUnixGram
	if err := cfg.Validate(); err != nil {
		return nil, ErrAddress
	}

	return &Server{cfg: cfg, hdl: h}, nil
}
