/***********************************************************************************************************************
 *
 *   MIT License
 *
 *   Copyright (c) 2022 Nicolas JUHEL
 *
 *   Permission is hereby granted, free of charge, to any person obtaining a copy
 *   of this software and associated documentation files (the "Software"), to deal
 *   in the Software without restriction, including without limitation the rights
 *   to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *   copies of the Software, and to permit persons to whom the Software is
 *   furnished to do so, subject to the following conditions:
 *
 *   The above copyright notice and this permission notice shall be included in all
 *   copies or substantial portions of the Software.
 *
 *   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *   AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *   LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *   OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *   SOFTWARE.
 *
 *
 **********************************************************************************************************************/

// Package protocol defines the network address family / socket type pairs
// shared by the resolver, the socket state machine and the transport layer.
//
// NetworkProtocol names exactly the values accepted by net.Dial / net.Listen
// ("tcp", "tcp4", "tcp6", "udp", "udp4", "udp6", "ip", "ip4", "ip6", "unix",
// "unixgram") plus NetworkEmpty for the zero value.
package protocol

import "strings"

type NetworkProtocol uint8

const (
	NetworkEmpty NetworkProtocol = iota
	NetworkTCP
	NetworkTCP4
	NetworkTCP6
	NetworkUDP
	NetworkUDP4
	NetworkUDP6
	NetworkIP
	NetworkIP4
	NetworkIP6
	NetworkUnix
	NetworkUnixGram
)

// List returns every known network protocol, NetworkEmpty excluded.
func List() []NetworkProtocol {
	return []NetworkProtocol{
		NetworkTCP, NetworkTCP4, NetworkTCP6,
		NetworkUDP, NetworkUDP4, NetworkUDP6,
		NetworkIP, NetworkIP4, NetworkIP6,
		NetworkUnix, NetworkUnixGram,
	}
}

// IsStream reports whether the protocol is a connection-oriented, stream
// transport (the socket state machine's CONNECTING/LISTENING/CONNECTED path
// applies). Datagram and raw-IP protocols are not stream sockets.
func (n NetworkProtocol) IsStream() bool {
	switch n {
	case NetworkTCP, NetworkTCP4, NetworkTCP6, NetworkUnix:
		return true
	default:
		return false
	}
}

// IsUnix reports whether the protocol resolves to a filesystem path rather
// than a host:port pair.
func (n NetworkProtocol) IsUnix() bool {
	return n == NetworkUnix || n == NetworkUnixGram
}

func clean(s string) string {
	s = strings.TrimSpace(s)
	for _, q := range []string{`"`, "'", "`"} {
		if strings.HasPrefix(s, q) && strings.HasSuffix(s, q) && len(s) >= 2*len(q) {
			s = s[len(q) : len(s)-len(q)]
		}
	}
	return strings.TrimSpace(s)
}

// Parse returns the NetworkProtocol matching s, case-insensitively, after
// trimming whitespace and a single layer of quoting. Unknown input yields
// NetworkEmpty.
func Parse(s string) NetworkProtocol {
	switch strings.ToLower(clean(s)) {
	case "tcp":
		return NetworkTCP
	case "tcp4":
		return NetworkTCP4
	case "tcp6":
		return NetworkTCP6
	case "udp":
		return NetworkUDP
	case "udp4":
		return NetworkUDP4
	case "udp6":
		return NetworkUDP6
	case "ip":
		return NetworkIP
	case "ip4":
		return NetworkIP4
	case "ip6":
		return NetworkIP6
	case "unix":
		return NetworkUnix
	case "unixgram":
		return NetworkUnixGram
	default:
		return NetworkEmpty
	}
}

// ParseBytes parses a byte slice the same way Parse does.
func ParseBytes(p []byte) NetworkProtocol {
	return Parse(string(p))
}
