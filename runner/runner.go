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

// Package runner holds the small set of goroutine-lifecycle helpers shared by
// the reactor, scheduler and logger hooks: every long-lived goroutine in this
// module recovers through RecoveryCaller instead of letting a panic take the
// process down silently.
package runner

import (
	"fmt"
	"os"
	"runtime/debug"
)

// RecoveryCaller logs a recovered panic value with the caller name and an
// optional extra context string, plus a stack trace, to stderr. recovered is
// the value returned by recover(); a nil value is a no-op.
func RecoveryCaller(caller string, recovered any, extra ...string) {
	if recovered == nil {
		return
	}

	msg := fmt.Sprintf("panic recovered in %s: %v", caller, recovered)
	for _, e := range extra {
		if e != "" {
			msg += " (" + e + ")"
		}
	}

	_, _ = fmt.Fprintln(os.Stderr, msg)
	_, _ = fmt.Fprintln(os.Stderr, string(debug.Stack()))
}
