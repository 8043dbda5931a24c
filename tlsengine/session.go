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

package tlsengine

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

type session struct {
	mode Mode
	cred Credentials

	conn  *tls.Conn
	roots *x509.CertPool

	mu     sync.Mutex
	state  HandshakeState
	verify atomic.Uint32
}

func newSession(conn net.Conn, mode Mode, cred Credentials) (*session, error) {
	if cred.Config == nil {
		return nil, ErrorInvalidCredentials.Error(nil)
	}

	cfg := cred.Config.TlsConfig(cred.ServerName)
	if cfg == nil {
		return nil, ErrorInvalidCredentials.Error(nil)
	}
	cfg = cfg.Clone()

	s := &session{mode: mode, cred: cred, state: NotStarted}
	s.verify.Store(uint32(VerifyOK))

	// Peer verification is recorded, never enforced, during the handshake:
	// the callback below classifies the presented chain into the
	// VerifyResult bitmask and the caller decides after Handshake whether
	// to keep the session. crypto/tls's own enforcement is therefore
	// switched off (it would abort the handshake before the callback could
	// observe anything other than an already-valid chain).
	switch mode {
	case ModeClient:
		cfg.InsecureSkipVerify = true
		s.roots = cfg.RootCAs
	default:
		if cred.PeerCertRequired {
			cfg.ClientAuth = tls.RequestClientCert
		}
		s.roots = cfg.ClientCAs
	}

	cfg.VerifyPeerCertificate = func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
		return s.recordVerify(rawCerts)
	}

	switch mode {
	case ModeClient:
		s.conn = tls.Client(conn, cfg)
	default:
		s.conn = tls.Server(conn, cfg)
	}

	return s, nil
}

// recordVerify classifies the peer's presented chain into the VerifyResult
// bitmask. It always returns nil: a bad peer fails the post-handshake
// VerifyPeerCertificate check, not the handshake itself.
func (s *session) recordVerify(rawCerts [][]byte) error {
	var result VerifyResult

	if len(rawCerts) == 0 {
		if s.cred.PeerCertRequired {
			result |= VerifyNoCert
		}
		s.verify.Store(uint32(result))
		return nil
	}

	certs := make([]*x509.Certificate, 0, len(rawCerts))
	for _, raw := range rawCerts {
		c, err := x509.ParseCertificate(raw)
		if err != nil {
			s.verify.Store(uint32(result | VerifyInvalid))
			return nil
		}
		certs = append(certs, c)
	}

	leaf := certs[0]
	now := time.Now()

	if now.After(leaf.NotAfter) {
		result |= VerifyExpired
	}
	if now.Before(leaf.NotBefore) {
		result |= VerifyNotYetActivated
	}

	for _, c := range certs {
		if insecureSigAlg(c.SignatureAlgorithm) {
			result |= VerifyInsecureAlg
		}
	}
	for _, c := range certs[1:] {
		if !c.IsCA {
			result |= VerifySignerNotCA
		}
	}

	result |= s.classifyChain(leaf, certs[1:], now)

	s.verify.Store(uint32(result))
	return nil
}

// classifyChain runs the x509 path build crypto/tls would have done before
// enforcement was switched off, folding its failure classes into bitmask
// bits instead of a fatal handshake error.
func (s *session) classifyChain(leaf *x509.Certificate, inters []*x509.Certificate, now time.Time) VerifyResult {
	pool := x509.NewCertPool()
	for _, c := range inters {
		pool.AddCert(c)
	}

	opts := x509.VerifyOptions{
		Roots:         s.roots,
		Intermediates: pool,
		CurrentTime:   now,
	}

	if s.mode == ModeClient {
		opts.DNSName = s.cred.ServerName
		opts.KeyUsages = []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth}
	} else {
		opts.KeyUsages = []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth}
	}

	if _, err := leaf.Verify(opts); err != nil {
		switch e := err.(type) {
		case x509.UnknownAuthorityError:
			return VerifySignerNotFound
		case x509.CertificateInvalidError:
			switch e.Reason {
			case x509.Expired:
				return VerifyExpired
			case x509.NotAuthorizedToSign:
				return VerifySignerNotCA
			default:
				return VerifyInvalid
			}
		default:
			return VerifyInvalid
		}
	}

	return VerifyOK
}

// insecureSigAlg reports signature algorithms the bitmask flags as too weak
// to trust (broken digests).
func insecureSigAlg(alg x509.SignatureAlgorithm) bool {
	switch alg {
	case x509.MD2WithRSA, x509.MD5WithRSA, x509.SHA1WithRSA,
		x509.DSAWithSHA1, x509.DSAWithSHA256, x509.ECDSAWithSHA1:
		return true
	default:
		return false
	}
}

func (s *session) Mode() Mode { return s.mode }

func (s *session) State() HandshakeState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *session) Handshake(ctx context.Context) error {
	s.mu.Lock()
	if s.state == Done {
		s.mu.Unlock()
		return nil
	}
	if s.state == Closed {
		s.mu.Unlock()
		return ErrorClosed.Error(nil)
	}
	s.state = InProgress
	s.mu.Unlock()

	err := s.conn.HandshakeContext(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.state = Closed
		return ErrorHandshake.Error(err)
	}

	s.state = Done
	return nil
}

func (s *session) Read(p []byte) (int, error) {
	if s.State() != Done {
		return 0, ErrorNotHandshaked.Error(nil)
	}
	return s.conn.Read(p)
}

func (s *session) Write(p []byte) (int, error) {
	if s.State() != Done {
		return 0, ErrorNotHandshaked.Error(nil)
	}
	return s.conn.Write(p)
}

func (s *session) ShutdownWrite() error {
	return s.conn.CloseWrite()
}

func (s *session) Close() error {
	s.mu.Lock()
	s.state = Closed
	s.mu.Unlock()

	return s.conn.Close()
}

func (s *session) VerifyPeerCertificate() VerifyResult {
	return VerifyResult(s.verify.Load())
}

var _ Session = (*session)(nil)
