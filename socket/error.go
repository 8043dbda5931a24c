/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
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

package socket

import (
	"strings"

	liberr "github.com/nabbar/eventdance/errors"
)

// ErrorFilter swallows the error net.Listener/net.Conn always return once
// Close has already been called on them, so shutdown paths don't have to
// special-case it at every call site.
func ErrorFilter(err error) error {
	if err == nil {
		return nil
	}

	if strings.Contains(err.Error(), "use of closed network connection") {
		return nil
	}

	return err
}

// The Socket state machine's failure taxonomy. WOULD_BLOCK
// is deliberately absent: it never surfaces, it only triggers a reactor
// rearm (see stream.IsWouldBlock).
const (
	ErrorInvalidAddress liberr.CodeError = iota + liberr.MinPkgSocket
	ErrorAlreadyActive
	ErrorNotConnected
	ErrorResolveAddress
	ErrorConnectTimeout
	ErrorConnectRefused
	ErrorSocketAccept
	ErrorNotReadable
	ErrorNotWritable
	ErrorTLSHandshake
	ErrorTLSPeerInvalid
	ErrorProtocolViolation
	ErrorCancelled
	ErrorClosed
)

var isCodeError = false

func IsCodeError() bool {
	return isCodeError
}

func init() {
	isCodeError = liberr.ExistInMapMessage(ErrorInvalidAddress)
	liberr.RegisterIdFctMessage(ErrorInvalidAddress, getMessage)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case liberr.UNK_ERROR:
		return ""
	case ErrorInvalidAddress:
		return "socket: invalid address"
	case ErrorAlreadyActive:
		return "socket: operation already active"
	case ErrorNotConnected:
		return "socket: not connected"
	case ErrorResolveAddress:
		return "socket: address resolution failed"
	case ErrorConnectTimeout:
		return "socket: connect timed out"
	case ErrorConnectRefused:
		return "socket: connection refused"
	case ErrorSocketAccept:
		return "socket: accept failed"
	case ErrorNotReadable:
		return "socket: not readable in current state"
	case ErrorNotWritable:
		return "socket: not writable in current state"
	case ErrorTLSHandshake:
		return "socket: TLS handshake failed"
	case ErrorTLSPeerInvalid:
		return "socket: TLS peer certificate invalid"
	case ErrorProtocolViolation:
		return "socket: protocol violation"
	case ErrorCancelled:
		return "socket: operation cancelled"
	case ErrorClosed:
		return "socket: closed"
	}

	return ""
}
