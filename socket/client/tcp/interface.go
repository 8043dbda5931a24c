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

// Package tcp builds socket clients bound to the tcp/tcp4/tcp6 families,
// with optional TLS autostart on connect.
package tcp

import (
	"errors"

	libtls "github.com/nabbar/eventdance/certificates"
	libptc "github.com/nabbar/eventdance/network/protocol"
	sktcfg "github.com/nabbar/eventdance/socket/config"
)

var (
	ErrAddress = errors.New("tcp client: invalid address")
	ErrNetwork = errors.New("tcp client: not a tcp network")
	ErrTLS     = errors.New("tcp client: invalid TLS configuration")
)

// New returns a client for address over the generic tcp family.
func New(address string) (*Client, error) {
	return NewNetwork(libptc.NetworkTCP, address)
}

// NewNetwork returns a client pinned to one of tcp/tcp4/tcp6.
func NewNetwork(network libptc.NetworkProtocol, address string) (*Client, error) {
	switch network {
	case libptc.NetworkTCP, libptc.NetworkTCP4, libptc.NetworkTCP6:
	default:
		return nil, ErrNetwork
	}

	cfg := sktcfg.Client{Network: network, Address: address}
	if err := cfg.Validate(); err != nil {
		return nil, ErrAddress
	}

	return &Client{cfg: cfg}, nil
}

// NewTLS returns a client that starts a TLS handshake as soon as the
// connection is established, verifying the peer against serverName.
func NewTLS(address, serverName string, tls libtls.Config) (*Client, error) {
	cfg := sktcfg.Client{
		Network: libptc.NetworkTCP,
		Address: address,
		TLS: sktcfg.TLSClient{
			Enabled:    true,
			Config:     tls,
			ServerName: serverName,
		},
	}

	if err := cfg.Validate(); err != nil {
		if errors.Is(err, sktcfg.ErrInvalidTLSConfig) {
			return nil, ErrTLS
		}
		return nil, ErrAddress
	}

	return &Client{cfg: cfg}, nil
}
