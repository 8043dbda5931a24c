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

// Package dbus implements a D-Bus control bridge: a thin, validating
// dispatcher over a line-framed `[cmd, serial, subject, args]` command
// wire format. The actual D-Bus wire codec and bus connection are external
// collaborators; this package talks to them only through the Agent
// interface, which a real binding implements.
package dbus

import (
	libpeer "github.com/nabbar/eventdance/peer"
	libtrn "github.com/nabbar/eventdance/transport"
)

// Command is the cmd:uint8 discriminant of the wire tuple.
type Command uint8

const (
	CmdError             Command = 1
	CmdReply             Command = 2
	CmdNewConnection     Command = 3
	CmdCloseConnection   Command = 4
	CmdOwnName           Command = 5
	CmdUnownName         Command = 6
	CmdNameAcquired      Command = 7
	CmdNameLost          Command = 8
	CmdRegisterObject    Command = 9
	CmdUnregisterObject  Command = 10
	CmdNewProxy          Command = 11
	CmdCloseProxy        Command = 12
	CmdCallMethod        Command = 13
	CmdCallMethodReturn  Command = 14
	CmdEmitSignal        Command = 15
)

// ErrCode is the closed error-code taxonomy for CmdError replies.
type ErrCode int

const (
	ErrFailed            ErrCode = 0
	ErrInvalidMsg        ErrCode = 1
	ErrUnknownCommand    ErrCode = 2
	ErrInvalidSubject    ErrCode = 3
	ErrInvalidArgs       ErrCode = 4
	ErrConnectionFailed  ErrCode = 5
	ErrAlreadyRegistered ErrCode = 6
	ErrProxyFailed       ErrCode = 7
	ErrUnknownMethod     ErrCode = 8
)

// Message is one decoded wire frame: `[cmd, serial, subject, args]`,
// with args already split into its tuple per the command's signature.
type Message struct {
	Cmd     Command
	Serial  uint64
	Subject uint32
	Args    []any
}

// Agent is the underlying D-Bus binding a Bridge dispatches into. Every
// method schedules its eventual reply through the reply callback passed at
// Bridge construction; none may block.
type Agent interface {
	NewConnection(serial uint64, subject uint32, address string)
	CloseConnection(serial uint64, subject uint32)
	OwnName(serial uint64, subject uint32, name string, flags uint32)
	UnownName(serial uint64, subject uint32, owningID uint32)
	RegisterObject(serial uint64, subject uint32, objectPath, interfaceXML string)
	UnregisterObject(serial uint64, subject uint32)
	NewProxy(serial uint64, subject uint32, name, objectPath, iface string, flags uint32)
	CloseProxy(serial uint64, subject uint32)
	CallMethod(serial uint64, subject uint32, method, jsonArgs, signature string, flags uint32, timeout int32)
	EmitSignal(serial uint64, subject uint32, name, jsonArgs, signature string)
}

// Bridge dispatches inbound wire frames to an Agent and marshals outbound
// replies (REPLY, ERROR, NAME_ACQUIRED, ...) back onto a transport.Transport.
type Bridge interface {
	// Attach wires the bridge into t's receive signal, dispatching every
	// frame arriving from p to agent.
	Attach(t libtrn.Transport, agent Agent)

	// Reply sends a CmdReply frame with payload for serial/subject back to
	// p over t.
	Reply(t libtrn.Transport, p libpeer.Peer, serial uint64, subject uint32, payload string) error

	// Error sends a CmdError frame for serial/subject back to p over t.
	Error(t libtrn.Transport, p libpeer.Peer, serial uint64, subject uint32, code ErrCode, msg string) error

	// NameAcquired, NameLost, CallMethodReturn and EmitSignal send their
	// eponymous wire frames, the asynchronous replies an Agent issues for
	// OWN_NAME, CALL_METHOD and signal delivery respectively.
	NameAcquired(t libtrn.Transport, p libpeer.Peer, serial uint64, subject uint32, owningID uint32) error
	NameLost(t libtrn.Transport, p libpeer.Peer, serial uint64, subject uint32, owningID uint32) error
	CallMethodReturn(t libtrn.Transport, p libpeer.Peer, serial uint64, subject uint32, jsonResult, signature string) error
	EmitSignal(t libtrn.Transport, p libpeer.Peer, serial uint64, subject uint32, name, jsonArgs, signature string) error
}

// New returns a Bridge with no Agent attached yet.
func New() Bridge {
	return newBridge()
}
