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

// Package resolver implements asynchronous name resolution: given a
// textual address it produces an ordered list of
// candidate addresses without blocking the caller, and every request can be
// cancelled such that its completion callback is guaranteed not to fire
// once Cancel has returned.
package resolver

import (
	libptc "github.com/nabbar/eventdance/network/protocol"
)

// Candidate is one resolved endpoint a socket may attempt to bind, dial or
// listen on.
type Candidate struct {
	// Network is the concrete protocol this candidate resolves for; for a
	// generic NetworkTCP/NetworkUDP request it is narrowed to TCP4/TCP6 (or
	// UDP4/UDP6) according to the resolved IP's version.
	Network libptc.NetworkProtocol

	// Address is ready to be handed to net.Dial/net.Listen verbatim.
	Address string
}

// Callback receives the ordered candidate list on success, or a non-nil err
// (ErrorInvalidAddress, ErrorNoAddressFound) on failure. Exactly one of
// (candidates, err) is meaningful: err nil means candidates is non-empty.
type Callback func(candidates []Candidate, err error)

// CancelFunc cancels a pending Resolve call. After CancelFunc returns, the
// Callback passed to Resolve is guaranteed not to be invoked, whether or
// not the lookup had already completed.
type CancelFunc func()

// Resolver resolves "host:port" addresses (tcp/udp/ip families) and
// filesystem paths (unix/unixgram families, returned unresolved) into an
// ordered Candidate list.
type Resolver interface {
	// Resolve starts an asynchronous lookup of address under network and
	// invokes cb exactly once, from a goroutine, unless the returned
	// CancelFunc is called first.
	Resolve(network libptc.NetworkProtocol, address string, cb Callback) CancelFunc
}

// New returns a Resolver backed by net.DefaultResolver.
func New() Resolver {
	return &resolver{}
}
