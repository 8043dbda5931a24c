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

package throttle

import (
	"sync"
	"time"
)

type bucket struct {
	mu sync.Mutex

	bandwidth int64
	latencyUs int64

	secondStart  time.Time
	consumed     int64
	lastOpTime   time.Time
	hasLastOp    bool
}

func newThrottle(cfg Config) *bucket {
	return &bucket{
		bandwidth: cfg.Bandwidth.Int64(),
		latencyUs: cfg.Latency.Time().Microseconds(),
	}
}

func (b *bucket) Request(size int) (int, int64) {
	if size <= 0 {
		return 0, 0
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()

	if b.latencyUs > 0 && b.hasLastOp {
		elapsed := now.Sub(b.lastOpTime)
		minGap := time.Duration(b.latencyUs) * time.Microsecond
		if elapsed < minGap {
			waitMs := (minGap - elapsed).Milliseconds()
			if waitMs <= 0 {
				waitMs = 1
			}
			return 0, waitMs
		}
	}

	if b.bandwidth <= 0 {
		return size, 0
	}

	if b.secondStart.IsZero() || now.Sub(b.secondStart) >= time.Second {
		b.secondStart = now
		b.consumed = 0
	}

	remaining := b.bandwidth - b.consumed
	if remaining < 0 {
		remaining = 0
	}

	allowed := int64(size)
	if allowed > remaining {
		allowed = remaining
	}

	if allowed < int64(size) {
		until := b.secondStart.Add(time.Second).Sub(now)
		waitMs := until.Milliseconds()
		if waitMs <= 0 {
			waitMs = 1
		}
		return int(allowed), waitMs
	}

	return int(allowed), 0
}

func (b *bucket) Report(n int) {
	if n <= 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()

	if b.secondStart.IsZero() || now.Sub(b.secondStart) >= time.Second {
		b.secondStart = now
		b.consumed = 0
	}
	b.consumed += int64(n)

	b.lastOpTime = now
	b.hasLastOp = true
}

type stack []Throttle

func stacked(members []Throttle) Throttle {
	out := make(stack, 0, len(members))
	for _, m := range members {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}

func (s stack) Request(size int) (int, int64) {
	if len(s) == 0 {
		return size, 0
	}

	allowed := size
	var wait int64

	for _, t := range s {
		a, w := t.Request(allowed)
		if a < allowed {
			allowed = a
		}
		if w > wait {
			wait = w
		}
	}

	return allowed, wait
}

func (s stack) Report(n int) {
	for _, t := range s {
		t.Report(n)
	}
}
