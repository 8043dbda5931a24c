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

// Package peer implements the transport-independent endpoint identity:
// a Peer carries a UUIDv4 id, an ordered send backlog and
// a liveness timeout, and the Manager is the process-wide registry that
// sweeps dead peers on a timer. Nothing in this package knows how bytes
// actually move; that is the concrete transport's job (package transport),
// which imports Manager to mint and register peers.
package peer

import (
	"time"

	libdur "github.com/nabbar/eventdance/duration"
	liblog "github.com/nabbar/eventdance/logger"
)

// CloseState is the lifecycle of a Peer's close sequence.
type CloseState uint8

const (
	// StateOpen is the normal, connected-or-reachable state.
	StateOpen CloseState = iota
	// StateClosing means a graceful close is in flight: backlog is being
	// flushed and a close frame sent, awaiting acknowledgement.
	StateClosing
	// StateClosed means the peer is fully torn down; backlog discarded.
	StateClosed
)

// ConnectedFunc reports whether the owning transport currently considers
// the peer reachable over an open channel. Supplied by the transport at
// peer creation time so this package never imports transport.
type ConnectedFunc func() bool

// View is the transient buffer a transport attaches to a Peer for the
// duration of a receive-signal emission. It is zeroed
// immediately after the signal handler returns; a consumer that needs to
// retain the bytes must copy them within the handler, or call
// Peer.ReceiveText which does that copy for them.
type View struct {
	Buffer []byte
	Size   int
}

// Peer is the transport-agnostic identity of a remote endpoint.
type Peer interface {
	// ID is this peer's UUIDv4, unique for the lifetime of the process.
	ID() string

	// LastActivity is the timestamp of the most recent Touch.
	LastActivity() time.Time

	// Touch records activity now, used by both inbound receive and
	// outbound send to reset the liveness clock.
	Touch()

	// IsAlive reports whether the peer is alive: its transport reports
	// it connected, or time since last activity is under timeout.
	IsAlive(timeout time.Duration) bool

	// CloseState returns the current close lifecycle state.
	CloseState() CloseState

	// BeginClose moves the peer to StateClosing (graceful) or directly to
	// StateClosed (abrupt, backlog discarded). Idempotent.
	BeginClose(graceful bool)

	// Backlog is the ordered queue of frames not yet delivered.
	Backlog() *Backlog

	// View returns the transport's most recently attached receive buffer,
	// valid only for the duration of the receive signal that set it.
	View() View

	// ReceiveText copies the current View's bytes into an owned string,
	// safe to retain past the receive signal handler's return.
	ReceiveText() string

	// SetView and ClearView are called by a concrete transport to
	// implement the attach/zero discipline: SetView right before invoking
	// the receive signal handler, ClearView right after it returns.
	SetView(v View)
	ClearView()
}

// Manager is the process-wide peer registry: a lazily created singleton
// mapping peer-id to Peer, swept for dead entries at most
// once every CleanupInterval.
type Manager interface {
	// New mints a fresh Peer with a UUIDv4 id, registers it, and returns
	// it. connected is consulted by the cleanup sweep and by IsAlive.
	New(connected ConnectedFunc) Peer

	// Lookup returns the peer for id if it is still alive; otherwise it
	// removes the entry and reports false.
	Lookup(id string) (Peer, bool)

	// Remove unconditionally drops id from the registry.
	Remove(id string)

	// OnPeerClosed registers a callback invoked once per peer the sweep
	// removes as dead.
	OnPeerClosed(fn func(Peer))

	// Count returns the number of peers currently registered.
	Count() int

	// Close stops the cleanup sweep. The registry itself is left intact.
	Close()
}

// Config tunes a Manager and the Peers it mints.
type Config struct {
	// Timeout is the liveness window: a disconnected peer is considered
	// dead once time-since-last-activity exceeds this.
	Timeout libdur.Duration

	// CleanupInterval is how often the sweep runs; default 10s, floored
	// at 10s so the sweep never runs more often than that.
	CleanupInterval libdur.Duration

	// BacklogLimit bounds each peer's send backlog; 0 means
	// DefaultBacklogLimit.
	BacklogLimit int

	// Logger receives sweep-removal entries; nil disables logging.
	Logger liblog.FuncLog
}

// DefaultBacklogLimit bounds a peer's backlog when Config.BacklogLimit is
// unset, so a permanently-unreachable peer cannot grow its backlog without
// limit between cleanup sweeps.
const DefaultBacklogLimit = 4096

// DefaultConfig returns the stock tuning: 10s cleanup interval, no
// liveness timeout override (callers should set Timeout explicitly; zero
// means "never times out while disconnected", matching a peer that only
// ever expires via its transport reporting PeerIsConnected()==false).
func DefaultConfig() Config {
	return Config{
		CleanupInterval: libdur.Duration(10 * time.Second),
		BacklogLimit:    DefaultBacklogLimit,
	}
}

// NewManager starts a Manager with cfg, sweeping on its own goroutine.
func NewManager(cfg Config) Manager {
	return newManager(cfg)
}

// Global returns the process-wide Manager, creating it with DefaultConfig
// on first use.
func Global() Manager {
	return globalOnce()
}
