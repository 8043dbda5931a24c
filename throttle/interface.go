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

// Package throttle implements a token-bucket rate and minimum-latency
// limiter. A Throttle never performs I/O itself: it
// only tells the stream pipeline how many of the requested bytes it may
// move right now, and how long to wait before asking again.
package throttle

import (
	libdur "github.com/nabbar/eventdance/duration"
	libsize "github.com/nabbar/eventdance/size"
)

// Config is the immutable tuning of one Throttle. Bandwidth of 0 disables
// the byte-rate cap; Latency of 0 disables the minimum inter-operation
// delay.
type Config struct {
	// Bandwidth bounds bytes/second moved through this throttle.
	Bandwidth libsize.Size

	// Latency is the minimum delay between two consecutive allowed
	// operations.
	Latency libdur.Duration
}

// IsZero reports whether cfg disables both limits, in which case New would
// return a throttle that always allows everything.
func (c Config) IsZero() bool {
	return c.Bandwidth == 0 && c.Latency == 0
}

// Throttle is a per-direction rate and latency limiter.
type Throttle interface {
	// Request asks permission to move up to size bytes right now. allowed
	// is always <= size. When allowed < size, waitMs is how long the
	// caller should wait before calling Request again.
	Request(size int) (allowed int, waitMs int64)

	// Report records that n bytes were actually moved, feeding both the
	// current-second byte counter and the last-operation timestamp.
	Report(n int)
}

// New returns a Throttle configured per cfg.
func New(cfg Config) Throttle {
	return newThrottle(cfg)
}

// Stack composes several throttles (e.g. a per-socket one and a per-group
// one) into a single Throttle whose Request returns the minimum allowance
// of all of them. Report is forwarded
// to every member.
func Stack(members ...Throttle) Throttle {
	return stacked(members)
}
