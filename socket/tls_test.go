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

package socket_test

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	libtls "github.com/nabbar/eventdance/certificates"
	tlscas "github.com/nabbar/eventdance/certificates/ca"
	tlscrt "github.com/nabbar/eventdance/certificates/certs"
	tlscpr "github.com/nabbar/eventdance/certificates/cipher"
	tlscrv "github.com/nabbar/eventdance/certificates/curves"
	tlsvrs "github.com/nabbar/eventdance/certificates/tlsversion"
	libptc "github.com/nabbar/eventdance/network/protocol"
	libsck "github.com/nabbar/eventdance/socket"
	sktcfg "github.com/nabbar/eventdance/socket/config"
)

// genSelfSignedPair mints a throwaway ECDSA certificate valid for localhost,
// the way socket/config's own tls_helper_test.go does for config.Validate
// coverage.
func genSelfSignedPair() (certPEM, keyPEM string) {
	privKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	Expect(err).ToNot(HaveOccurred())

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	Expect(err).ToNot(HaveOccurred())

	tpl := x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{Organization: []string{"Test Organization"}, CommonName: "localhost"},
		NotBefore:             time.Now(),
		NotAfter:              time.Now().Add(time.Hour),
		KeyUsage:              x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		DNSNames:              []string{"localhost", "127.0.0.1"},
	}

	der, err := x509.CreateCertificate(rand.Reader, &tpl, &tpl, &privKey.PublicKey, privKey)
	Expect(err).ToNot(HaveOccurred())

	crtBuf := bytes.NewBuffer(nil)
	Expect(pem.Encode(crtBuf, &pem.Block{Type: "CERTIFICATE", Bytes: der})).To(Succeed())

	keyDER, err := x509.MarshalECPrivateKey(privKey)
	Expect(err).ToNot(HaveOccurred())

	keyBuf := bytes.NewBuffer(nil)
	Expect(pem.Encode(keyBuf, &pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})).To(Succeed())

	return crtBuf.String(), keyBuf.String()
}

// genServerPair mints the self-signed pair and returns both the server Config
// built from it and the raw certificate PEM, so the client side can trust it
// as a root CA without reaching out to a real certificate authority.
func genServerPair() (cfg libtls.Config, certPEM string) {
	crt, key := genSelfSignedPair()
	pair, err := tlscrt.ParsePair(key, crt)
	Expect(err).ToNot(HaveOccurred())

	return libtls.Config{
		CurveList:  tlscrv.List(),
		CipherList: tlscpr.List(),
		Certs:      []tlscrt.Certif{pair.Model()},
		VersionMin: tlsvrs.VersionTLS12,
		VersionMax: tlsvrs.VersionTLS13,
	}, crt
}

func clientTLSConfig(serverCertPEM string) libtls.Config {
	root, err := tlscas.Parse(serverCertPEM)
	Expect(err).ToNot(HaveOccurred())

	return libtls.Config{
		RootCA:     []tlscas.Cert{root},
		VersionMin: tlsvrs.VersionTLS12,
		VersionMax: tlsvrs.VersionTLS13,
	}
}

var _ = Describe("Socket TLS handshake", func() {
	var eng *libsck.Engine

	BeforeEach(func() {
		eng = libsck.NewEngine(nil)
	})

	AfterEach(func() {
		eng.Close()
	})

	It("autostarts TLS on both sides and echoes over the encrypted pipeline", func() {
		server := libsck.New(eng)

		accepted := make(chan *libsck.Socket, 1)
		server.OnAccept(func(child *libsck.Socket) {
			child.OnRead(func(p []byte) { _, _ = child.Write(p) })
			accepted <- child
		})

		srvTLS, certPEM := genServerPair()
		srvCfg := sktcfg.Server{
			Network: libptc.NetworkTCP,
			Address: "127.0.0.1:0",
			TLS:     sktcfg.TLSServer{Enabled: true, Config: srvTLS},
		}
		Expect(server.Listen(srvCfg, nil, nil)).To(Succeed())
		Eventually(server.State).Should(Equal(libsck.StateListening))

		var addr string
		Eventually(func() string {
			if a := server.Addr(); a != nil {
				addr = a.String()
			}
			return addr
		}, time.Second).ShouldNot(BeEmpty())

		client := libsck.New(eng)
		received := make(chan []byte, 1)
		client.OnRead(func(p []byte) { received <- p })

		cliCfg := sktcfg.Client{
			Network: libptc.NetworkTCP,
			Address: addr,
			TLS:     sktcfg.TLSClient{Enabled: true, Config: clientTLSConfig(certPEM), ServerName: "localhost"},
		}
		Expect(client.Connect(cliCfg, 2*time.Second, nil, nil)).To(Succeed())

		Eventually(client.State, 2*time.Second).Should(Equal(libsck.StateConnected))
		Eventually(accepted, 2*time.Second).Should(Receive())

		_, err := client.Write([]byte("over tls"))
		Expect(err).ToNot(HaveOccurred())

		var got []byte
		Eventually(received, 2*time.Second).Should(Receive(&got))
		Expect(string(got)).To(Equal("over tls"))
	})
})

var _ = Describe("Socket delayed close", func() {
	var eng *libsck.Engine

	BeforeEach(func() {
		eng = libsck.NewEngine(nil)
	})

	AfterEach(func() {
		eng.Close()
	})

	It("delivers pending data before closing when the peer sends then hangs up", func() {
		server := libsck.New(eng)

		accepted := make(chan *libsck.Socket, 1)
		server.OnAccept(func(child *libsck.Socket) { accepted <- child })

		srvCfg := sktcfg.Server{Network: libptc.NetworkTCP, Address: "127.0.0.1:0"}
		Expect(server.Listen(srvCfg, nil, nil)).To(Succeed())
		Eventually(server.State).Should(Equal(libsck.StateListening))

		var addr string
		Eventually(func() string {
			if a := server.Addr(); a != nil {
				addr = a.String()
			}
			return addr
		}, time.Second).ShouldNot(BeEmpty())

		client := libsck.New(eng)
		cliCfg := sktcfg.Client{Network: libptc.NetworkTCP, Address: addr}
		Expect(client.Connect(cliCfg, time.Second, nil, nil)).To(Succeed())
		Eventually(client.State, time.Second).Should(Equal(libsck.StateConnected))

		var childSocket *libsck.Socket
		Eventually(accepted, time.Second).Should(Receive(&childSocket))

		received := make(chan []byte, 1)
		closed := make(chan struct{})
		childSocket.OnRead(func(p []byte) { received <- p })
		childSocket.OnClose(func() { close(closed) })

		_, err := client.Write([]byte("last words"))
		Expect(err).ToNot(HaveOccurred())
		Expect(client.Close()).To(Succeed())

		var got []byte
		Eventually(received, time.Second).Should(Receive(&got))
		Expect(string(got)).To(Equal("last words"))

		Eventually(closed, time.Second).Should(BeClosed())
	})

	It("defers the close after a hangup until pushed-back bytes are drained", func() {
		server := libsck.New(eng)

		accepted := make(chan *libsck.Socket, 1)
		server.OnAccept(func(child *libsck.Socket) { accepted <- child })

		srvCfg := sktcfg.Server{Network: libptc.NetworkTCP, Address: "127.0.0.1:0"}
		Expect(server.Listen(srvCfg, nil, nil)).To(Succeed())
		Eventually(server.State).Should(Equal(libsck.StateListening))

		var addr string
		Eventually(func() string {
			if a := server.Addr(); a != nil {
				addr = a.String()
			}
			return addr
		}, time.Second).ShouldNot(BeEmpty())

		client := libsck.New(eng)
		cliCfg := sktcfg.Client{Network: libptc.NetworkTCP, Address: addr}
		Expect(client.Connect(cliCfg, time.Second, nil, nil)).To(Succeed())
		Eventually(client.State, time.Second).Should(Equal(libsck.StateConnected))

		var child *libsck.Socket
		Eventually(accepted, time.Second).Should(Receive(&child))

		firstByte := make(chan byte, 1)
		closed := make(chan struct{})
		delivered := false
		child.OnRead(func(p []byte) {
			if delivered || len(p) == 0 {
				return
			}
			delivered = true
			firstByte <- p[0]
			child.Unread(p[1:])
		})
		child.OnClose(func() { close(closed) })

		_, err := client.Write([]byte("abcde"))
		Expect(err).ToNot(HaveOccurred())
		Expect(client.Close()).To(Succeed())

		Eventually(firstByte, time.Second).Should(Receive(Equal(byte('a'))))

		// The hang-up must not take the child down while pushed-back
		// bytes remain unconsumed.
		Consistently(closed, 300*time.Millisecond).ShouldNot(BeClosed())

		buf := make([]byte, 8)
		n, rerr := child.Read(buf)
		Expect(rerr).ToNot(HaveOccurred())
		Expect(string(buf[:n])).To(Equal("bcde"))

		Eventually(closed, time.Second).Should(BeClosed())
	})
})
