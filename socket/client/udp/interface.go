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

// Package udp builds socket clients for the udp/udp4/udp6 families. A
// "connected" udp socket is a dialed datagram socket: writes go to the one
// remote address, reads only accept datagrams from it. TLS is not
// available on datagram sockets.
package udp

import (
	"errors"

	libptc "github.com/nabbar/eventdance/network/protocol"
	sktcfg "github.com/nabbar/eventdance/socket/config"
)

var (
	ErrAddress = errors.New("udp client: invalid address")
	ErrNetwork = errors.New("udp client: not a udp network")
)

// New returns a client for address over the generic udp family.
func New(address string) (*Client, error) {
	return NewNetwork(libptc.NetworkUDP, address)
}

// NewNetwork returns a client pinned to one of udp/udp4/udp6.
func NewNetwork(network libptc.NetworkProtocol, address string) (*Client, error) {
	switch network {
	case libptc.NetworkUDP, libptc.NetworkUDP4, libptc.NetworkUDP6:
	default:
		return nil, ErrNetwork
	}

	cfg := sktcfg.Client{Network: network, Address: address}
	if err := cfg.Validate(); err != nil {
		return nil, ErrAddress
	}

	return &Client{cfg: cfg}, nil
}
