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

package dbus

import (
	"encoding/json"

	libpeer "github.com/nabbar/eventdance/peer"
	libtrn "github.com/nabbar/eventdance/transport"
)

type bridge struct {
	agent Agent
}

func newBridge() *bridge {
	return &bridge{}
}

func (b *bridge) Attach(t libtrn.Transport, agent Agent) {
	b.agent = agent

	t.SetOnReceive(func(p libpeer.Peer, v libpeer.View) {
		buf := make([]byte, v.Size)
		copy(buf, v.Buffer[:v.Size])
		b.dispatch(t, p, buf)
	})
}

// dispatch decodes one wire frame, validates it against its command's
// signature, and routes it to the Agent. A malformed envelope is dropped
// silently (nothing to reply to); a recognized-but-invalid frame gets
// exactly one ERROR reply carrying the originating serial.
func (b *bridge) dispatch(t libtrn.Transport, p libpeer.Peer, raw []byte) {
	var env wireEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return
	}

	tuple, err := decodeAndValidate(env.Cmd, env.Args)
	if err != nil {
		code := ErrInvalidArgs
		if env.Cmd < CmdError || env.Cmd > CmdEmitSignal {
			code = ErrUnknownCommand
		}
		_ = b.Error(t, p, env.Serial, env.Subject, code, err.Error())
		return
	}

	if b.agent == nil {
		return
	}

	switch env.Cmd {
	case CmdNewConnection:
		b.agent.NewConnection(env.Serial, env.Subject, tuple[0].(string))
	case CmdCloseConnection:
		b.agent.CloseConnection(env.Serial, env.Subject)
	case CmdOwnName:
		b.agent.OwnName(env.Serial, env.Subject, tuple[0].(string), uint32(tuple[1].(float64)))
	case CmdUnownName:
		b.agent.UnownName(env.Serial, env.Subject, uint32(tuple[0].(float64)))
	case CmdRegisterObject:
		b.agent.RegisterObject(env.Serial, env.Subject, tuple[0].(string), tuple[1].(string))
	case CmdUnregisterObject:
		b.agent.UnregisterObject(env.Serial, env.Subject)
	case CmdNewProxy:
		b.agent.NewProxy(env.Serial, env.Subject, tuple[0].(string), tuple[1].(string), tuple[2].(string), uint32(tuple[3].(float64)))
	case CmdCloseProxy:
		b.agent.CloseProxy(env.Serial, env.Subject)
	case CmdCallMethod:
		b.agent.CallMethod(env.Serial, env.Subject, tuple[0].(string), tuple[1].(string), tuple[2].(string), uint32(tuple[3].(float64)), int32(tuple[4].(float64)))
	case CmdEmitSignal:
		b.agent.EmitSignal(env.Serial, env.Subject, tuple[0].(string), tuple[1].(string), tuple[2].(string))
	default:
		_ = b.Error(t, p, env.Serial, env.Subject, ErrUnknownCommand, "unhandled command from peer")
	}
}

func (b *bridge) send(t libtrn.Transport, p libpeer.Peer, cmd Command, serial uint64, subject uint32, args []any) error {
	encoded, err := encodeArgs(args)
	if err != nil {
		return err
	}

	env := wireEnvelope{Cmd: cmd, Serial: serial, Subject: subject, Args: encoded}
	body, err := json.Marshal(env)
	if err != nil {
		return err
	}

	return t.Send(p, body)
}

func (b *bridge) Reply(t libtrn.Transport, p libpeer.Peer, serial uint64, subject uint32, payload string) error {
	return b.send(t, p, CmdReply, serial, subject, []any{payload})
}

func (b *bridge) Error(t libtrn.Transport, p libpeer.Peer, serial uint64, subject uint32, code ErrCode, msg string) error {
	args := []any{int(code)}
	if msg != "" {
		args = append(args, msg)
	}
	return b.send(t, p, CmdError, serial, subject, args)
}

func (b *bridge) NameAcquired(t libtrn.Transport, p libpeer.Peer, serial uint64, subject uint32, owningID uint32) error {
	return b.send(t, p, CmdNameAcquired, serial, subject, []any{owningID})
}

func (b *bridge) NameLost(t libtrn.Transport, p libpeer.Peer, serial uint64, subject uint32, owningID uint32) error {
	return b.send(t, p, CmdNameLost, serial, subject, []any{owningID})
}

func (b *bridge) CallMethodReturn(t libtrn.Transport, p libpeer.Peer, serial uint64, subject uint32, jsonResult, signature string) error {
	return b.send(t, p, CmdCallMethodReturn, serial, subject, []any{jsonResult, signature})
}

func (b *bridge) EmitSignal(t libtrn.Transport, p libpeer.Peer, serial uint64, subject uint32, name, jsonArgs, signature string) error {
	return b.send(t, p, CmdEmitSignal, serial, subject, []any{name, jsonArgs, signature})
}
