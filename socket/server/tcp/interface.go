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

// Package tcp builds accept-loop socket servers for the tcp/tcp4/tcp6
// families, each accepted connection handed to the registered Handler as a
// CONNECTED Socket (or TLS_HANDSHAKING first, when TLS is configured).
package tcp

import (
	"errors"

	libptc "github.com/nabbar/eventdance/network/protocol"
	libsck "github.com/nabbar/eventdance/socket"
	sktcfg "github.com/nabbar/eventdance/socket/config"
)

var (
	ErrAddress = errors.New("tcp server: invalid address")
	ErrNetwork = errors.New("tcp server: not a tcp network")
	ErrHandler = errors.New("tcp server: nil handler")
	ErrRunning = errors.New("tcp server: already listening")
)

// Handler receives each accepted connection on the engine's scheduler
// goroutine. Callback registration (OnRead, OnClose...) must happen inside
// the handler, before it returns, to not miss early events.
type Handler func(conn *libsck.Socket)

// New validates cfg and returns a server ready to Listen. The handler is
// required; cfg.Network must be one of tcp/tcp4/tcp6.
func New(h Handler, cfg sktcfg.Server) (*Server, error) {
	if h == nil {
		return nil, ErrHandler
	}

	switch cfg.Network {
	case libptc.NetworkTCP, libptc.NetworkTCP4, libptc.NetworkTCP6:
	default:
		return nil, ErrNetwork
	}

	if err := cfg.Validate(); err != nil {
		return nil, ErrAddress
	}

	return &Server{cfg: cfg, hdl: h}, nil
}
