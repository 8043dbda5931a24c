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

package peer

import "sync"

// Backlog is a peer's ordered queue of not-yet-delivered byte frames,
// flushed on next channel availability. It is a bounded ring so a
// permanently-unreachable peer cannot grow without limit; Push reports
// overflow instead of blocking or silently growing.
type Backlog struct {
	mu       sync.Mutex
	frames   [][]byte
	limit    int
	overflow uint64
}

func newBacklog(limit int) *Backlog {
	if limit <= 0 {
		limit = DefaultBacklogLimit
	}
	return &Backlog{limit: limit}
}

// Push appends frame to the tail. Reports ErrorBacklogFull without
// dropping an existing frame when the backlog is at limit; the caller
// decides whether to retry, escalate to an abrupt close, or drop frame.
func (b *Backlog) Push(frame []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.frames) >= b.limit {
		b.overflow++
		return ErrorBacklogFull.Error(nil)
	}

	cp := make([]byte, len(frame))
	copy(cp, frame)
	b.frames = append(b.frames, cp)
	return nil
}

// Pop removes and returns the head frame, or (nil, false) if empty.
func (b *Backlog) Pop() ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.frames) == 0 {
		return nil, false
	}
	f := b.frames[0]
	b.frames = b.frames[1:]
	return f, true
}

// Len reports the number of frames currently queued.
func (b *Backlog) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.frames)
}

// Overflow reports the cumulative count of Push calls rejected for being
// over limit, exposed for monitoring.
func (b *Backlog) Overflow() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.overflow
}

// Discard empties the backlog without delivering any frame (abrupt close).
func (b *Backlog) Discard() {
	b.mu.Lock()
	b.frames = nil
	b.mu.Unlock()
}

// Drain removes and returns every queued frame in order (graceful close
// flush, or channel-available flush).
func (b *Backlog) Drain() [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := b.frames
	b.frames = nil
	return out
}
