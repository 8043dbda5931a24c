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

import "encoding/json"

type argKind int

const (
	kindString argKind = iota
	kindNumber
)

// signatures gives the args tuple shape for every command in the wire
// table; CmdError's trailing msg is optional, modeled by minLen.
type signature struct {
	kinds  []argKind
	minLen int
}

var signatures = map[Command]signature{
	CmdError:            {kinds: []argKind{kindNumber, kindString}, minLen: 1},
	CmdReply:             {kinds: []argKind{kindString}, minLen: 1},
	CmdNewConnection:     {kinds: []argKind{kindString}, minLen: 1},
	CmdCloseConnection:   {kinds: []argKind{}, minLen: 0},
	CmdOwnName:           {kinds: []argKind{kindString, kindNumber}, minLen: 2},
	CmdUnownName:         {kinds: []argKind{kindNumber}, minLen: 1},
	CmdNameAcquired:      {kinds: []argKind{kindNumber}, minLen: 1},
	CmdNameLost:          {kinds: []argKind{kindNumber}, minLen: 1},
	CmdRegisterObject:    {kinds: []argKind{kindString, kindString}, minLen: 2},
	CmdUnregisterObject:  {kinds: []argKind{}, minLen: 0},
	CmdNewProxy:          {kinds: []argKind{kindString, kindString, kindString, kindNumber}, minLen: 4},
	CmdCloseProxy:        {kinds: []argKind{}, minLen: 0},
	CmdCallMethod:        {kinds: []argKind{kindString, kindString, kindString, kindNumber, kindNumber}, minLen: 5},
	CmdCallMethodReturn:  {kinds: []argKind{kindString, kindString}, minLen: 2},
	CmdEmitSignal:        {kinds: []argKind{kindString, kindString, kindString}, minLen: 3},
}

// wireEnvelope is the outer `[cmd, serial, subject, args]` frame; args
// carries the inner tuple pre-encoded as a JSON string (args-as-JSON-
// escaped-text).
type wireEnvelope struct {
	Cmd     Command
	Serial  uint64
	Subject uint32
	Args    string
}

func (w wireEnvelope) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{w.Cmd, w.Serial, w.Subject, w.Args})
}

func (w *wireEnvelope) UnmarshalJSON(data []byte) error {
	var raw [4]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if err := json.Unmarshal(raw[0], &w.Cmd); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[1], &w.Serial); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[2], &w.Subject); err != nil {
		return err
	}
	return json.Unmarshal(raw[3], &w.Args)
}

// encodeArgs renders args as the JSON-array text carried inside the
// envelope's args string.
func encodeArgs(args []any) (string, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// decodeAndValidate parses the args string for cmd into a tuple and checks
// it against cmd's signature, reporting ErrorInvalidArgs on a mismatch
// (NEW_CONNECTION with `[]` is a wrong signature, for example).
func decodeAndValidate(cmd Command, args string) ([]any, error) {
	sig, ok := signatures[cmd]
	if !ok {
		return nil, ErrorUnknownCommand.Error(nil)
	}

	var tuple []any
	if args == "" {
		tuple = []any{}
	} else if err := json.Unmarshal([]byte(args), &tuple); err != nil {
		return nil, ErrorInvalidArgs.Error(err)
	}

	if len(tuple) < sig.minLen || len(tuple) > len(sig.kinds) {
		return nil, ErrorInvalidArgs.Error(nil)
	}

	for i, v := range tuple {
		switch sig.kinds[i] {
		case kindString:
			if _, isStr := v.(string); !isStr {
				return nil, ErrorInvalidArgs.Error(nil)
			}
		case kindNumber:
			if _, isNum := v.(float64); !isNum {
				return nil, ErrorInvalidArgs.Error(nil)
			}
		}
	}

	return tuple, nil
}
