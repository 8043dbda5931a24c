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

package stream

import (
	"errors"

	liberr "github.com/nabbar/eventdance/errors"
)

const (
	ErrorClosed liberr.CodeError = iota + liberr.MinPkgStream
	ErrorAlreadyActive
	ErrorNoTLSLayer
)

var isCodeError = false

func IsCodeError() bool {
	return isCodeError
}

func init() {
	isCodeError = liberr.ExistInMapMessage(ErrorClosed)
	liberr.RegisterIdFctMessage(ErrorClosed, getMessage)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case liberr.UNK_ERROR:
		return ""
	case ErrorClosed:
		return "stream: pipeline closed"
	case ErrorAlreadyActive:
		return "stream: TLS layer already installed"
	case ErrorNoTLSLayer:
		return "stream: no TLS layer installed"
	}

	return ""
}

// errWouldBlock is an internal-only sentinel: it is raised by
// the raw layer when the OS reports no data/room, never returned from a
// public Pipeline method - callers observe it only through the Drained /
// Filled / delay callbacks that result from it.
var errWouldBlock = errors.New("stream: would block")

// IsWouldBlock reports whether err is the internal would-block condition,
// without exposing the sentinel value itself - the socket state machine
// uses this to decide when to rearm reactor readiness instead of closing.
func IsWouldBlock(err error) bool {
	return err == errWouldBlock
}
