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

// Package tlsengine is the pull/push TLS session state machine. It wraps
// crypto/tls's *tls.Conn (itself driven over whatever the stream package's
// throttled layer exposes) rather than hand-rolling a record-layer state
// machine - crypto/tls already is a pull/push callback-driven engine, and
// the certificates package already produces the *tls.Config this package
// consumes as the opaque credential blob.
package tlsengine

import (
	"context"
	"io"
	"net"

	libtls "github.com/nabbar/eventdance/certificates"
)

// Mode selects which side of the handshake a Session plays.
type Mode uint8

const (
	ModeClient Mode = iota
	ModeServer
)

// HandshakeState is the handshake lifecycle step of a Session.
type HandshakeState uint8

const (
	NotStarted HandshakeState = iota
	InProgress
	Done
	Closed
)

func (s HandshakeState) String() string {
	switch s {
	case NotStarted:
		return "not-started"
	case InProgress:
		return "in-progress"
	case Done:
		return "done"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// VerifyResult is the peer-certificate verification bitmask, recorded
// during the handshake and read back through Session.VerifyPeerCertificate
// once the handshake is done. A Session never aborts its own handshake on a
// bad peer chain: the caller inspects the bitmask and tears the session
// down itself, so every code below stays observable. VerifyRevoked is the
// one exception - it is declared for bitmask completeness but never set,
// since no revocation source (OCSP/CRL) is wired.
type VerifyResult uint16

const (
	VerifyOK               VerifyResult = 0
	VerifyNoCert           VerifyResult = 1 << iota
	VerifyInvalid
	VerifyRevoked
	VerifySignerNotFound
	VerifySignerNotCA
	VerifyInsecureAlg
	VerifyExpired
	VerifyNotYetActivated
)

func (v VerifyResult) Has(bit VerifyResult) bool { return v&bit != 0 }

// Credentials is the opaque TLS credential handle: a
// certificates.TLSConfig blob, a priority string (defaults to "NORMAL")
// and whether the peer must present a verifiable certificate.
type Credentials struct {
	Config           libtls.TLSConfig
	ServerName       string
	Priority         string
	PeerCertRequired bool
}

// Session is one TLS connection's handshake/read/write/close state
// machine, driven by the socket state machine's TLS_HANDSHAKING step.
type Session interface {
	io.ReadWriteCloser

	// Mode reports CLIENT or SERVER.
	Mode() Mode

	// State reports the current handshake lifecycle step.
	State() HandshakeState

	// Handshake drives the handshake to completion or a fatal error.
	// Cancelling ctx aborts an in-progress handshake with a context error.
	Handshake(ctx context.Context) error

	// ShutdownWrite closes only the TLS write direction (a "WR"-only TLS
	// close_notify), required before closing the underlying socket's
	// write half.
	ShutdownWrite() error

	// VerifyPeerCertificate returns the bitmask recorded during Handshake.
	// Callers that require a verified peer must check for VerifyOK after a
	// successful Handshake and close the session otherwise.
	VerifyPeerCertificate() VerifyResult
}

// New wraps conn (normally the stream package's throttled net.Conn layer)
// in a TLS Session using cred.
func New(conn net.Conn, mode Mode, cred Credentials) (Session, error) {
	return newSession(conn, mode, cred)
}
