/*
 * MIT License
 *
 * Copyright (c) 2019 Nicolas JUHEL
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

// Package semaphore caps the number of goroutines running concurrently,
// optionally rendering an mpb progress bar per worker. The reverse-proxy
// backend pool and the ioutils aggregator both bound their worker fan-out
// through it instead of an unbounded go func().
package semaphore

import "context"

// Bar is a single progress indicator, backed by mpb when its owning
// Semaphore was created with progress enabled, or a no-op otherwise.
type Bar interface {
	// NewWorker acquires a slot on the owning Semaphore before the unit of
	// work associated with this bar starts.
	NewWorker() error

	// DeferWorker increments the bar by one and releases the Semaphore slot
	// acquired by NewWorker.
	DeferWorker()

	// Total returns the bar's configured total, or zero when progress
	// rendering is disabled.
	Total() int64

	// Inc advances the bar by n units.
	Inc(n int)

	// Inc64 advances the bar by n units.
	Inc64(n int64)

	// Complete marks the bar as finished, forcing it to its total.
	Complete()

	// Completed reports whether Complete has been called.
	Completed() bool
}

// Semaphore bounds concurrent access and doubles as a cancellable
// context.Context for every worker it admits.
type Semaphore interface {
	context.Context

	// NewWorker blocks until a slot is available or the context is done.
	NewWorker() error

	// NewWorkerTry acquires a slot without blocking.
	NewWorkerTry() bool

	// DeferWorker releases a slot acquired by NewWorker/NewWorkerTry.
	DeferWorker()

	// WaitAll blocks until every outstanding worker has released its slot.
	WaitAll() error

	// DeferMain waits for any progress rendering to flush, then cancels the
	// Semaphore's context.
	DeferMain()

	// Weighted returns the configured concurrency limit, or -1 when
	// unlimited.
	Weighted() int64

	// BarBytes creates a byte-counter progress bar queued after prev (nil
	// for none).
	BarBytes(title, message string, total int64, dropOnComplete bool, prev Bar) Bar

	// BarTime creates an elapsed-time progress bar queued after prev.
	BarTime(title, message string, total int64, dropOnComplete bool, prev Bar) Bar

	// BarNumber creates a plain counter progress bar queued after prev.
	BarNumber(title, message string, total int64, dropOnComplete bool, prev Bar) Bar

	// BarOpts creates a bar with no decorators, for callers that render
	// their own labels.
	BarOpts(total int64, dropOnComplete bool) Bar
}

// New returns a Semaphore bounding concurrency to n simultaneous workers (or
// unlimited when n <= 0), rendering progress bars through mpb when
// withProgress is true.
func New(ctx context.Context, n int, withProgress bool) Semaphore {
	return newSemaphore(ctx, int64(n), withProgress)
}

// NewSemaphoreWithContext is an alias of New with progress rendering
// disabled, kept for callers that only need the concurrency limiter.
func NewSemaphoreWithContext(ctx context.Context, n int) Semaphore {
	return New(ctx, n, false)
}
