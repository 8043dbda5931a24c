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

// Package reproxy implements a reverse-proxy backend pool: a bounded set
// of pre-connected Bridges to one upstream address, grown and shrunk
// around an adaptively-learned idle timeout. The worker fan-out used to
// open new bridges is bounded through the same semaphore package the
// ioutils aggregator workers use.
package reproxy

import (
	"time"

	libdur "github.com/nabbar/eventdance/duration"
	liblog "github.com/nabbar/eventdance/logger"
	libsck "github.com/nabbar/eventdance/socket"
)

// Bridge is one pre-connected upstream leg of the pool.
type Bridge interface {
	// Conn is the underlying connection to the backend address, driven
	// non-blockingly through the pool's shared Engine.
	Conn() *libsck.Socket

	// LastActivity is when NotifyActivity was last called for this bridge.
	LastActivity() time.Time

	// Closed reports whether the bridge has been torn down.
	Closed() bool
}

// Config tunes a Backend.
type Config struct {
	Address    string
	MinPool    int
	MaxPool    int
	IdleTimout libdur.Duration
}

// DefaultConfig returns the stock pool sizing for address: min 1, max 5,
// 60s starting idle timeout.
func DefaultConfig(address string) Config {
	return Config{
		Address:    address,
		MinPool:    1,
		MaxPool:    5,
		IdleTimout: libdur.Duration(60 * time.Second),
	}
}

// Backend is the pool of Bridges to one upstream address.
type Backend interface {
	// HasFreeBridge reports whether a bridge is immediately available,
	// opportunistically opening a new one (subject to MaxPool) when not.
	HasFreeBridge() bool

	// Acquire pops a free bridge into the busy set. Fails with
	// ErrorNoBridgeAvailable if none is free.
	Acquire() (Bridge, error)

	// Release returns bridge from busy back to the pool: refreshed in
	// place (reconnected) when clients are waiting or the pool is below
	// MinPool, destroyed otherwise.
	Release(b Bridge)

	// NotifyActivity records activity on b and nudges the learned idle
	// timeout toward the observed inter-activity gap.
	NotifyActivity(b Bridge)

	// ReportError retires b after an upstream error, lowering the learned
	// idle timeout toward its inactivity and pruning free bridges that now
	// exceed it.
	ReportError(b Bridge, err error)

	// Counts returns the current free/busy/connecting sizes.
	Counts() (free, busy, connecting int)

	// Close tears down every bridge and stops growing the pool.
	Close()
}

// New starts a Backend dialing cfg.Address through eng (the caller's
// socket.Engine - every bridge dial runs on its reactor/scheduler/resolver
// rather than blocking a goroutine in net.Dial), logging through log (may be
// nil).
func New(cfg Config, eng *libsck.Engine, log liblog.FuncLog) Backend {
	return newBackend(cfg, eng, log)
}
