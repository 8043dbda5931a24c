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

// Package scheduler implements the single-threaded cooperative task queue
// that every socket state transition runs on. Exactly
// one goroutine ever calls a scheduled function; all synchronization between
// the reactor's readiness events and the rest of the core collapses to
// sending a *task down this package's intake channel.
package scheduler

import (
	"time"

	liblog "github.com/nabbar/eventdance/logger"
)

// Priority orders tasks within the same tick: lower runs first. Ties are
// broken by post order.
type Priority int

const (
	// PriorityHigh is used for listener accept-loops and connect/listen
	// bring-up, which run elevated until the socket settles.
	PriorityHigh Priority = -100
	PriorityDefault Priority = 0
	PriorityLow Priority = 100
)

// Handle is returned by Post/PostAfter. Cancel is idempotent and a no-op
// once the task has started or already finished running.
type Handle interface {
	// Cancel prevents a pending task from running. Returns false if the
	// task already ran or was already cancelled.
	Cancel() bool
}

// Scheduler is the thread-default "main context" of the process: the
// single place every socket-state mutation is posted to, in priority order,
// ties broken by insertion order.
type Scheduler interface {
	// Post enqueues fn to run as soon as the scheduler goroutine is free,
	// ordered by priority then insertion order.
	Post(priority Priority, fn func()) Handle

	// PostAfter enqueues fn to run no earlier than delay from now. A
	// negative or zero delay behaves like Post.
	PostAfter(delay time.Duration, priority Priority, fn func()) Handle

	// Close stops the scheduler goroutine. Tasks already running are let
	// finish; tasks still queued are dropped without running.
	Close()
}

// New starts a scheduler goroutine and returns a handle to it. log may be
// nil.
func New(log liblog.FuncLog) Scheduler {
	return newScheduler(log)
}
