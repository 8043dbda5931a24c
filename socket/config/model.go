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

// Package config describes the wire-level addressing of a socket endpoint:
// which network protocol to dial or listen on, the address/path, and the
// optional TLS and unix-permission settings layered on top.
package config

import (
	"errors"
	"net"
	"reflect"

	libtls "github.com/nabbar/eventdance/certificates"
	libdur "github.com/nabbar/eventdance/duration"
	libprm "github.com/nabbar/eventdance/file/perm"
	libptc "github.com/nabbar/eventdance/network/protocol"
	libsiz "github.com/nabbar/eventdance/size"
	libthr "github.com/nabbar/eventdance/throttle"
)

// MaxGID is the highest unix group id accepted by Server.GroupPerm.
const MaxGID = 32767

var (
	ErrInvalidProtocol  = errors.New("config: invalid protocol")
	ErrInvalidTLSConfig = errors.New("config: invalid TLS config")
	ErrInvalidGroup     = errors.New("config: invalid unix group")
)

// Throttle caps one direction of a socket's stream pipeline.
type Throttle struct {
	// Bandwidth bounds bytes/second moved in this direction; 0 disables
	// the cap.
	Bandwidth libsiz.Size `mapstructure:"bandwidth" json:"bandwidth" yaml:"bandwidth" toml:"bandwidth"`

	// Latency is the minimum delay between two consecutive operations;
	// 0 disables it.
	Latency libdur.Duration `mapstructure:"latency" json:"latency" yaml:"latency" toml:"latency"`
}

// New builds the pipeline throttle this config describes, nil when both
// limits are disabled.
func (t Throttle) New() libthr.Throttle {
	cfg := libthr.Config{Bandwidth: t.Bandwidth, Latency: t.Latency}
	if cfg.IsZero() {
		return nil
	}
	return libthr.New(cfg)
}

// TLSClient configures the TLS layer a client dials through.
type TLSClient struct {
	Enabled    bool
	Config     libtls.Config
	ServerName string
}

// TLSServer configures the TLS layer a server accepts through.
type TLSServer struct {
	Enabled bool
	Config  libtls.Config
}

// Client describes the remote endpoint a socket client connects to.
type Client struct {
	Network libptc.NetworkProtocol
	Address string
	TLS     TLSClient

	// ReadThrottle and WriteThrottle rate-limit the two directions of the
	// connection's pipeline, stacked under any throttle passed to Connect.
	ReadThrottle  Throttle
	WriteThrottle Throttle
}

// Server describes the local endpoint a socket server listens on.
type Server struct {
	Network   libptc.NetworkProtocol
	Address   string
	PermFile  libprm.Perm
	GroupPerm int32
	TLS       TLSServer

	// ReadThrottle and WriteThrottle rate-limit each accepted connection's
	// pipeline, stacked under any throttle passed to Listen.
	ReadThrottle  Throttle
	WriteThrottle Throttle

	// ConIdleTimeout bounds how long an accepted connection may sit idle
	// before the reverse-proxy bridge pool reclaims it. Zero disables the
	// timeout.
	ConIdleTimeout libdur.Duration
}

// Validate checks the protocol/address pair and, when TLS is enabled, the
// presence of a server name to verify against.
func (c Client) Validate() error {
	if err := validateAddress(c.Network, c.Address, false); err != nil {
		return err
	}

	if c.TLS.Enabled {
		if isEmptyTLSConfig(c.TLS.Config) {
			return ErrInvalidTLSConfig
		}
		if c.TLS.ServerName == "" {
			return ErrInvalidTLSConfig
		}
	}

	return nil
}

// Validate checks the protocol/address pair, the unix group id bound and the
// TLS configuration when enabled.
func (s Server) Validate() error {
	if err := validateAddress(s.Network, s.Address, true); err != nil {
		return err
	}

	if s.GroupPerm < -1 || s.GroupPerm > MaxGID {
		return ErrInvalidGroup
	}

	if s.TLS.Enabled {
		if isEmptyTLSConfig(s.TLS.Config) {
			return ErrInvalidTLSConfig
		}
	}

	return nil
}

// isEmptyTLSConfig reports whether cfg carries no certificate material at
// all, which Config itself cannot express with a plain zero-value
// comparison since it embeds slice fields.
func isEmptyTLSConfig(cfg libtls.Config) bool {
	return reflect.DeepEqual(cfg, libtls.Config{})
}

func validateAddress(n libptc.NetworkProtocol, addr string, listening bool) error {
	switch n {
	case libptc.NetworkTCP, libptc.NetworkTCP4, libptc.NetworkTCP6:
		_, err := net.ResolveTCPAddr(n.String(), addr)
		return err

	case libptc.NetworkUDP, libptc.NetworkUDP4, libptc.NetworkUDP6:
		_, err := net.ResolveUDPAddr(n.String(), addr)
		return err

	case libptc.NetworkIP, libptc.NetworkIP4, libptc.NetworkIP6:
		_, err := net.ResolveIPAddr(n.String(), addr)
		return err

	case libptc.NetworkUnix, libptc.NetworkUnixGram:
		_, err := net.ResolveUnixAddr(n.String(), addr)
		return err

	default:
		return ErrInvalidProtocol
	}
}
