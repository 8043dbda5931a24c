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

package resolver

import (
	"context"
	"net"
	"sync"

	libptc "github.com/nabbar/eventdance/network/protocol"
	librun "github.com/nabbar/eventdance/runner"
)

type resolver struct{}

type pendingCall struct {
	mu        sync.Mutex
	done      bool
	cancelled bool
}

func (r *resolver) Resolve(network libptc.NetworkProtocol, address string, cb Callback) CancelFunc {
	call := &pendingCall{}
	ctx, cancelCtx := context.WithCancel(context.Background())

	go func() {
		defer func() { librun.RecoveryCaller("resolver.Resolve", recover()) }()
		candidates, err := lookup(ctx, network, address)

		call.mu.Lock()
		defer call.mu.Unlock()

		if call.cancelled {
			return
		}
		call.done = true
		cb(candidates, err)
	}()

	return func() {
		cancelCtx()

		call.mu.Lock()
		if !call.done {
			call.cancelled = true
		}
		call.mu.Unlock()
	}
}

func lookup(ctx context.Context, network libptc.NetworkProtocol, address string) ([]Candidate, error) {
	if address == "" {
		return nil, ErrorInvalidAddress.Error(nil)
	}

	if network.IsUnix() {
		return []Candidate{{Network: network, Address: address}}, nil
	}

	host, port, err := net.SplitHostPort(address)
	if err != nil {
		// ip/ip4/ip6 families carry no port.
		if network == libptc.NetworkIP || network == libptc.NetworkIP4 || network == libptc.NetworkIP6 {
			host = address
			port = ""
		} else {
			return nil, ErrorInvalidAddress.Error(err)
		}
	}

	ips, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, ErrorNoAddressFound.Error(err)
	}

	var out []Candidate
	for _, ip := range ips {
		fam := familyOf(network, ip.IP)
		if fam == libptc.NetworkEmpty {
			continue
		}

		addr := ip.IP.String()
		if port != "" {
			addr = net.JoinHostPort(addr, port)
		}
		out = append(out, Candidate{Network: fam, Address: addr})
	}

	if len(out) == 0 {
		return nil, ErrorNoAddressFound.Error(nil)
	}

	return out, nil
}

// familyOf narrows a generic (TCP/UDP/IP) request to the concrete 4/6
// variant the resolved IP belongs to, rejecting IPs whose version conflicts
// with an explicit TCP4/TCP6/UDP4/UDP6/IP4/IP6 request.
func familyOf(requested libptc.NetworkProtocol, ip net.IP) libptc.NetworkProtocol {
	isV4 := ip.To4() != nil

	switch requested {
	case libptc.NetworkTCP:
		if isV4 {
			return libptc.NetworkTCP4
		}
		return libptc.NetworkTCP6
	case libptc.NetworkTCP4:
		if isV4 {
			return libptc.NetworkTCP4
		}
		return libptc.NetworkEmpty
	case libptc.NetworkTCP6:
		if !isV4 {
			return libptc.NetworkTCP6
		}
		return libptc.NetworkEmpty
	case libptc.NetworkUDP:
		if isV4 {
			return libptc.NetworkUDP4
		}
		return libptc.NetworkUDP6
	case libptc.NetworkUDP4:
		if isV4 {
			return libptc.NetworkUDP4
		}
		return libptc.NetworkEmpty
	case libptc.NetworkUDP6:
		if !isV4 {
			return libptc.NetworkUDP6
		}
		return libptc.NetworkEmpty
	case libptc.NetworkIP:
		if isV4 {
			return libptc.NetworkIP4
		}
		return libptc.NetworkIP6
	case libptc.NetworkIP4:
		if isV4 {
			return libptc.NetworkIP4
		}
		return libptc.NetworkEmpty
	case libptc.NetworkIP6:
		if !isV4 {
			return libptc.NetworkIP6
		}
		return libptc.NetworkEmpty
	default:
		return libptc.NetworkEmpty
	}
}
