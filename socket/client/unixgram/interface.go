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

// Package unixgram builds socket clients for datagram unix domain sockets.
// Like udp, the dialed socket is datagram-oriented and TLS does not apply.
package unixgram

import (
	"errors"

	libptc "github.com/nabbar/eventdance/network/protocol"
	sktcfg "github.com/nabbar/eventdance/socket/config"
)

var (
	ErrAddress = errors.New("unixgram client: invalid socket path")
)

// New returns a client for the unixgram socket at path.
func New(path string) (*Client, error) {
	cfg := sktcfg.Client{Network: libptc.NetworkUnixGram, Address: path}
	if err := cfg.Validate(); err != nil {
		return nil, ErrAddress
	}

	return &Client{cfg: cfg}, nil
}
