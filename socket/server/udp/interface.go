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

// Package udp builds datagram socket servers for the udp/udp4/udp6
// families. There is no accept step: the one LISTENING socket delivers
// every datagram to the Handler, which replies through the server's
// WriteTo.
package udp

import (
	"errors"
	"net"

	libptc "github.com/nabbar/eventdance/network/protocol"
	sktcfg "github.com/nabbar/eventdance/socket/config"
)

var (
	ErrAddress = errors.New("udp server: invalid address")
	ErrNetwork = errors.New("udp server: not a udp network")
	ErrHandler = errors.New("udp server: nil handler")
	ErrRunning = errors.New("udp server: already listening")
)

// Handler receives each datagram on the engine's scheduler goroutine,
// together with its source address.
type Handler func(data []byte, from net.Addr)

// New validates cfg and returns a server ready to Listen; cfg.Network must
// be one of udp/udp4/udp6 and cfg.TLS must be disabled.
func New(h Handler, cfg sktcfg.Server) (*Server, error) {
	if h == nil {
		return nil, ErrHandler
	}

	switch cfg.Network {
	case libptc.NetworkUDP, libptc.NetworkUDP4, libptc.NetworkUDP6:
	default:
		return nil, ErrNetwork
	}

	if cfg.TLS.Enabled {
		return nil, ErrAddress
	}

	if err := cfg.Validate(); err != nil {
		return nil, ErrAddress
	}

	return &Server{cfg: cfg, hdl: h}, nil
}
