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

package stream_test

import (
	"net"

	. "github.com/nabbar/eventdance/stream"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	libsize "github.com/nabbar/eventdance/size"
	libthr "github.com/nabbar/eventdance/throttle"
)

func tcpPair() (net.Conn, net.Conn) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	Expect(err).ToNot(HaveOccurred())
	defer func() { _ = ln.Close() }()

	accepted := make(chan net.Conn, 1)
	go func() {
		c, _ := ln.Accept()
		accepted <- c
	}()

	client, err := net.Dial("tcp", ln.Addr().String())
	Expect(err).ToNot(HaveOccurred())

	server := <-accepted
	Expect(server).ToNot(BeNil())
	return client, server
}

var _ = Describe("Pipeline", func() {
	It("moves bytes end to end with no throttle installed", func() {
		client, server := tcpPair()
		defer func() { _ = client.Close() }()
		defer func() { _ = server.Close() }()

		cp := New(client, nil, nil)
		sp := New(server, nil, nil)
		defer func() { _ = cp.Close() }()
		defer func() { _ = sp.Close() }()

		n, err := cp.Write([]byte("ping"))
		Expect(err).ToNot(HaveOccurred())
		Expect(n).To(Equal(4))

		buf := make([]byte, 4)
		_, err = sp.Read(buf)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(buf)).To(Equal("ping"))
	})

	It("replays Unread data before new bytes from the conn", func() {
		client, server := tcpPair()
		defer func() { _ = client.Close() }()
		defer func() { _ = server.Close() }()

		sp := New(server, nil, nil)
		defer func() { _ = sp.Close() }()

		sp.Unread([]byte("abc"))

		buf := make([]byte, 3)
		n, err := sp.Read(buf)
		Expect(err).ToNot(HaveOccurred())
		Expect(n).To(Equal(3))
		Expect(string(buf)).To(Equal("abc"))
	})

	It("fires OnDrained exactly once after the unread buffer empties", func() {
		_, server := tcpPair()
		defer func() { _ = server.Close() }()

		sp := New(server, nil, nil)
		defer func() { _ = sp.Close() }()

		drainedCount := 0
		sp.OnDrained(func() { drainedCount++ })

		sp.Unread([]byte("xy"))

		buf := make([]byte, 1)
		_, _ = sp.Read(buf)
		Expect(drainedCount).To(Equal(0))

		_, _ = sp.Read(buf)
		Expect(drainedCount).To(Equal(1))
	})

	It("rejects a second StartTLS with ErrorAlreadyActive-shaped error", func() {
		client, _ := tcpPair()
		defer func() { _ = client.Close() }()

		cp := New(client, nil, nil)
		defer func() { _ = cp.Close() }()

		err := cp.StartTLS(nil)
		Expect(err).ToNot(HaveOccurred())

		err = cp.StartTLS(nil)
		Expect(err).To(HaveOccurred())
	})

	It("denies writes once the write throttle's bandwidth cap is exhausted", func() {
		client, server := tcpPair()
		defer func() { _ = client.Close() }()
		defer func() { _ = server.Close() }()

		wt := libthr.New(libthr.Config{Bandwidth: libsize.SizeKilo})
		cp := New(client, nil, wt)
		defer func() { _ = cp.Close() }()

		delayed := false
		cp.OnDelayWrite(func(waitMs int64) { delayed = true })

		big := make([]byte, 4096)
		n, err := cp.Write(big)

		if err == nil {
			Expect(n).To(BeNumerically("<=", len(big)))
		} else {
			Expect(delayed).To(BeTrue())
		}
	})
})
