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

package udp

import (
	"sync"
	"time"

	libsck "github.com/nabbar/eventdance/socket"
	sktcfg "github.com/nabbar/eventdance/socket/config"
	libthr "github.com/nabbar/eventdance/throttle"
)

// Client is a validated udp endpoint; each Connect dials a fresh datagram
// socket on the given Engine.
type Client struct {
	cfg sktcfg.Client

	mu  sync.Mutex
	skt *libsck.Socket
}

// Config returns the validated endpoint configuration.
func (c *Client) Config() sktcfg.Client {
	return c.cfg
}

// Connect dials the endpoint. For udp the dial itself cannot block on the
// remote side, so the socket reaches CONNECTED as soon as the local
// descriptor is bound.
func (c *Client) Connect(eng *libsck.Engine, timeout time.Duration, readT, writeT libthr.Throttle) (*libsck.Socket, error) {
	s := libsck.New(eng)

	if err := s.Connect(c.cfg, timeout, readT, writeT); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.skt = s
	c.mu.Unlock()

	return s, nil
}

// Socket returns the socket of the most recent Connect, or nil.
func (c *Client) Socket() *libsck.Socket {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.skt
}

// Close closes the current socket if one exists.
func (c *Client) Close() error {
	c.mu.Lock()
	s := c.skt
	c.skt = nil
	c.mu.Unlock()

	if s == nil {
		return nil
	}
	return s.Close()
}
