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

// Package unix builds accept-loop socket servers on stream unix domain
// sockets. The socket file's mode and group are applied right after the
// listener binds, before any client is accepted.
package unix

import (
	"errors"

	libptc "github.com/nabbar/eventdance/network/protocol"
	libsck "github.com/nabbar/eventdance/socket"
	sktcfg "github.com/nabbar/eventdance/socket/config"
)

var (
	ErrAddress = errors.New("unix server: invalid socket path")
	ErrHandler = errors.New("unix server: nil handler")
	ErrRunning = errors.New("unix server: already listening")
)

// Handler receives each accepted connection on the engine's scheduler
// goroutine.
type Handler func(conn *libsck.Socket)

// New validates cfg and returns a server ready to Listen; cfg.Network is
// forced to unix.
func New(h Handler, cfg sktcfg.Server) (*Server, error) {
	if h == nil {
		return nil, ErrHandler
	}

	cfg.Network = libptc.NetworkUnix
	if err := cfg.Validate(); err != nil {
		return nil, ErrAddress
	}

	return &Server{cfg: cfg, hdl: h}, nil
}
