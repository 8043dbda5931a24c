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

// Package transport implements the polymorphic byte-message delivery
// contract of the core. A concrete Transport binds Peers (package
// peer) to whatever byte-stream carries their frames; the core mandates
// at-most-once delivery per message and leaves any at-least-once framing to
// the concrete transport (WebSocket, long-poll, ...). This package ships one
// concrete Transport, Frame, a length-prefixed message transport over the
// socket package's Reader/Writer contract.
package transport

import (
	libpeer "github.com/nabbar/eventdance/peer"
)

// OnReceive is called once per inbound message, synchronously, with the
// message view attached to p for the duration of the call.
// A handler that needs the bytes past this call must copy them, or call
// p.ReceiveText().
type OnReceive func(p libpeer.Peer, view libpeer.View)

// OnNewPeer is called once when a transport recognizes a new remote
// endpoint and mints a Peer for it.
type OnNewPeer func(p libpeer.Peer)

// OnPeerClosed is called once when a peer's channel is gone, graceful
// reporting whether the close followed the flush-then-ack sequence or was
// abrupt.
type OnPeerClosed func(p libpeer.Peer, graceful bool)

// Transport is the byte-message delivery contract: send/receive/close
// against a Peer, independent of whatever concrete carrier moves the
// bytes.
type Transport interface {
	// Send delivers data to p. If the transport cannot write immediately
	// (no open channel right now), data is pushed to p's backlog instead
	// of being reported as an error.
	Send(p libpeer.Peer, data []byte) error

	// PeerIsConnected reports whether p currently has an open channel on
	// this transport.
	PeerIsConnected(p libpeer.Peer) bool

	// ClosePeer closes p's channel. Graceful flushes the backlog and
	// sends a close frame, waiting for acknowledgement; abrupt discards
	// the backlog and reports peer-closed immediately.
	ClosePeer(p libpeer.Peer, graceful bool)

	// CreateNewPeer mints a Peer not yet bound to an open channel (used
	// by an outbound dial path before the connection exists).
	CreateNewPeer() libpeer.Peer

	// SetOnReceive, SetOnNewPeer and SetOnPeerClosed register the
	// transport's signal handlers (receive, new_peer, peer_closed). Nil
	// clears a previously registered handler.
	SetOnReceive(fn OnReceive)
	SetOnNewPeer(fn OnNewPeer)
	SetOnPeerClosed(fn OnPeerClosed)

	// Close tears down every open channel abruptly and stops accepting
	// new ones.
	Close()
}
