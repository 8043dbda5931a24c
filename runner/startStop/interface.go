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

// Package startStop wraps a pair of start/stop functions into a restartable
// background task: the reactor, scheduler and every ioutils aggregator run
// on top of it instead of hand-rolling their own goroutine bookkeeping.
package startStop

import (
	"context"
	"time"
)

// FuncStart is launched in its own goroutine by Start. It should block until
// ctx is cancelled by a matching Stop/Restart/Start call.
type FuncStart func(ctx context.Context) error

// FuncStop is invoked synchronously by Stop, after the running FuncStart's
// context has been cancelled.
type FuncStop func(ctx context.Context) error

// StartStop restarts a single background goroutine and tracks its health.
type StartStop interface {
	// Start cancels any instance already running, then launches a fresh one
	// in a new goroutine. It returns immediately; errors raised by the start
	// or stop function are reported through ErrorsLast/ErrorsList.
	Start(ctx context.Context) error

	// Stop cancels the running instance and calls the stop function. It is
	// idempotent: calling it when nothing is running is a no-op.
	Stop(ctx context.Context) error

	// Restart is Stop followed by Start.
	Restart(ctx context.Context) error

	// IsRunning reports whether a start function is currently executing.
	IsRunning() bool

	// Uptime reports how long the current run has been active, or zero when
	// not running.
	Uptime() time.Duration

	// ErrorsLast returns the most recent error raised since the last Start,
	// or nil.
	ErrorsLast() error

	// ErrorsList returns every error raised since the last Start.
	ErrorsList() []error
}
