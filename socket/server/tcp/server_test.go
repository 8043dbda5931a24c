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

package tcp_test

import (
	"net"
	"time"

	libptc "github.com/nabbar/eventdance/network/protocol"
	libsck "github.com/nabbar/eventdance/socket"
	sktcfg "github.com/nabbar/eventdance/socket/config"
	scksrv "github.com/nabbar/eventdance/socket/server/tcp"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func echoHandler(conn *libsck.Socket) {
	conn.OnRead(func(p []byte) {
		_, _ = conn.Write(p)
	})
}

var _ = Describe("TCP Server", func() {
	Context("creation", func() {
		It("should create a server with a minimal configuration", func() {
			srv, err := scksrv.New(echoHandler, sktcfg.Server{Network: libptc.NetworkTCP, Address: "127.0.0.1:0"})
			Expect(err).ToNot(HaveOccurred())
			Expect(srv.IsRunning()).To(BeFalse())
			Expect(srv.IsGone()).To(BeTrue())
			Expect(srv.OpenConnections()).To(Equal(int64(0)))
		})

		It("should refuse a nil handler", func() {
			srv, err := scksrv.New(nil, sktcfg.Server{Network: libptc.NetworkTCP, Address: "127.0.0.1:0"})
			Expect(err).To(MatchError(scksrv.ErrHandler))
			Expect(srv).To(BeNil())
		})

		It("should refuse a non-tcp network", func() {
			srv, err := scksrv.New(echoHandler, sktcfg.Server{Network: libptc.NetworkUDP, Address: "127.0.0.1:0"})
			Expect(err).To(MatchError(scksrv.ErrNetwork))
			Expect(srv).To(BeNil())
		})

		It("should refuse an invalid address", func() {
			srv, err := scksrv.New(echoHandler, sktcfg.Server{Network: libptc.NetworkTCP, Address: "not-an-address"})
			Expect(err).To(MatchError(scksrv.ErrAddress))
			Expect(srv).To(BeNil())
		})
	})

	Context("listening", func() {
		var eng *libsck.Engine

		BeforeEach(func() {
			eng = libsck.NewEngine(nil)
		})

		AfterEach(func() {
			eng.Close()
		})

		It("accepts connections, counts them and echoes bytes", func() {
			srv, err := scksrv.New(echoHandler, sktcfg.Server{Network: libptc.NetworkTCP, Address: "127.0.0.1:0"})
			Expect(err).ToNot(HaveOccurred())

			Expect(srv.Listen(eng, nil, nil)).To(Succeed())
			Eventually(srv.IsRunning, time.Second).Should(BeTrue())

			var addr net.Addr
			Eventually(func() net.Addr {
				addr = srv.Addr()
				return addr
			}, time.Second).ShouldNot(BeNil())

			conn, err := net.Dial("tcp", addr.String())
			Expect(err).ToNot(HaveOccurred())
			defer func() { _ = conn.Close() }()

			Eventually(srv.OpenConnections, time.Second).Should(Equal(int64(1)))

			_, err = conn.Write([]byte("echo me"))
			Expect(err).ToNot(HaveOccurred())

			buf := make([]byte, 16)
			Expect(conn.SetReadDeadline(time.Now().Add(2 * time.Second))).To(Succeed())
			n, err := conn.Read(buf)
			Expect(err).ToNot(HaveOccurred())
			Expect(string(buf[:n])).To(Equal("echo me"))

			Expect(srv.Close()).To(Succeed())
			Eventually(srv.IsGone, time.Second).Should(BeTrue())
		})

		It("refuses to listen twice", func() {
			srv, err := scksrv.New(echoHandler, sktcfg.Server{Network: libptc.NetworkTCP, Address: "127.0.0.1:0"})
			Expect(err).ToNot(HaveOccurred())

			Expect(srv.Listen(eng, nil, nil)).To(Succeed())
			Eventually(srv.IsRunning, time.Second).Should(BeTrue())

			Expect(srv.Listen(eng, nil, nil)).To(MatchError(scksrv.ErrRunning))
			Expect(srv.Close()).To(Succeed())
		})
	})
})
