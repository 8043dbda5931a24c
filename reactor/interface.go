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

// Package reactor is the process's single OS-level readiness engine:
// one dedicated goroutine per watched direction blocks on the
// socket's raw fd through runtime netpoll (via syscall.RawConn.Read/Write)
// and posts a single readiness event per arm, edge-triggered style - once a
// direction fires it is not watched again until Modify re-arms it. All
// events converge onto one channel so that exactly one scheduler goroutine
// (see the scheduler package) ever observes them.
package reactor

import (
	"syscall"

	liblog "github.com/nabbar/eventdance/logger"
)

// Interest is a bitmask of directions to watch.
type Interest uint8

const (
	Readable Interest = 1 << iota
	Writable
)

func (i Interest) Has(bit Interest) bool { return i&bit != 0 }

func (i Interest) String() string {
	switch i {
	case Readable:
		return "readable"
	case Writable:
		return "writable"
	case Readable | Writable:
		return "readable|writable"
	default:
		return "none"
	}
}

// Event is posted once per armed direction that became ready. ID is
// whatever opaque value was passed to Add/Modify, normally the owning
// Socket's identity.
type Event struct {
	ID        any
	Readiness Interest
}

// Watchable is the subset of net.Conn the reactor needs to hook into
// runtime netpoll. net.TCPConn, net.UnixConn and os.File all implement it.
type Watchable interface {
	SyscallConn() (syscall.RawConn, error)
}

// Reactor is the process-wide readiness engine: it watches sockets for
// read/write readiness and reports each observation exactly once.
type Reactor interface {
	// Add registers conn under id and arms watches for the requested
	// directions. Re-adding an id that still has an armed direction in
	// common with interest fails with ErrorAlreadyActive.
	Add(id any, conn Watchable, interest Interest) error

	// Modify arms additional directions for an already-registered id.
	// Directions already armed are left untouched (no error).
	Modify(id any, interest Interest) error

	// Remove cancels every armed watch for id. Safe to call more than once
	// or after the underlying handle has already been closed.
	Remove(id any)

	// Events returns the channel every readiness event is posted to.
	Events() <-chan Event

	// Close stops the reactor and releases every watcher goroutine.
	Close()
}

// New returns a Reactor posting events onto a channel of the given buffer
// size (0 means unbuffered). Watcher failures that never reach a caller
// (a wait aborted by the runtime on a dying fd) are logged through log,
// which may be nil.
func New(bufferSize int, log liblog.FuncLog) Reactor {
	return newReactor(bufferSize, log)
}
