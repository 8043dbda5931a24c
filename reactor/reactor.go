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

package reactor

import (
	"sync"

	liblog "github.com/nabbar/eventdance/logger"
	loglvl "github.com/nabbar/eventdance/logger/level"
	librun "github.com/nabbar/eventdance/runner"
)

// watchSet tracks, for one registered id, which directions currently have a
// live single-shot watcher goroutine plus the means to cancel them all.
type watchSet struct {
	mu      sync.Mutex
	conn    Watchable
	armed   Interest
	cancel  map[Interest]chan struct{}
	removed bool
}

type react struct {
	mu     sync.Mutex
	set    map[any]*watchSet
	events chan Event
	log    liblog.FuncLog

	closeOnce sync.Once
	closed    chan struct{}
}

func newReactor(buf int, log liblog.FuncLog) *react {
	return &react{
		set:    make(map[any]*watchSet),
		events: make(chan Event, buf),
		log:    log,
		closed: make(chan struct{}),
	}
}

func (r *react) logf(lvl loglvl.Level, msg string, args ...any) {
	if r.log == nil {
		return
	}
	if l := r.log(); l != nil {
		l.Entry(lvl, msg, args...).Log()
	}
}

func (r *react) Events() <-chan Event {
	return r.events
}

func (r *react) Add(id any, conn Watchable, interest Interest) error {
	r.mu.Lock()
	ws, ok := r.set[id]
	if !ok {
		ws = &watchSet{conn: conn, cancel: make(map[Interest]chan struct{})}
		r.set[id] = ws
	}
	r.mu.Unlock()

	return r.arm(id, ws, interest)
}

func (r *react) Modify(id any, interest Interest) error {
	r.mu.Lock()
	ws, ok := r.set[id]
	r.mu.Unlock()

	if !ok {
		return ErrorNotWatched.Error(nil)
	}

	return r.arm(id, ws, interest)
}

func (r *react) arm(id any, ws *watchSet, interest Interest) error {
	ws.mu.Lock()
	if ws.removed {
		ws.mu.Unlock()
		return ErrorClosed.Error(nil)
	}

	var toStart []Interest
	for _, bit := range []Interest{Readable, Writable} {
		if interest.Has(bit) {
			if ws.armed.Has(bit) {
				ws.mu.Unlock()
				return ErrorAlreadyActive.Error(nil)
			}
			toStart = append(toStart, bit)
		}
	}

	raw, err := ws.conn.SyscallConn()
	if err != nil {
		ws.mu.Unlock()
		return ErrorUnsupportedConn.Error(err)
	}

	for _, bit := range toStart {
		stop := make(chan struct{})
		ws.cancel[bit] = stop
		ws.armed |= bit
		go r.watch(id, ws, raw, bit, stop)
	}
	ws.mu.Unlock()

	return nil
}

// watch blocks until the runtime reports fd readiness in direction bit,
// posts exactly one Event, then exits - the caller must Modify to re-arm,
// the edge-triggered discipline: readiness, once reported, is assumed to
// persist until an operation returns would-block.
func (r *react) watch(id any, ws *watchSet, raw rawConnLike, bit Interest, stop chan struct{}) {
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer func() { librun.RecoveryCaller("reactor.watch", recover()) }()
		ready := func(uintptr) bool { return true }

		var err error
		if bit == Readable {
			err = raw.Read(ready)
		} else {
			err = raw.Write(ready)
		}
		if err != nil {
			// The fd died under the watcher (closed mid-wait, usually);
			// no caller is waiting on this goroutine, so the failure is
			// only observable through the log.
			r.logf(loglvl.WarnLevel, "reactor: wait for %v readiness aborted: %v", bit, err)
			return
		}

		ws.mu.Lock()
		ws.armed &^= bit
		delete(ws.cancel, bit)
		cancelled := ws.removed
		ws.mu.Unlock()

		if cancelled {
			return
		}

		select {
		case r.events <- Event{ID: id, Readiness: bit}:
		case <-r.closed:
		}
	}()

	select {
	case <-done:
	case <-stop:
	case <-r.closed:
	}
}

func (r *react) Remove(id any) {
	r.mu.Lock()
	ws, ok := r.set[id]
	if ok {
		delete(r.set, id)
	}
	r.mu.Unlock()

	if !ok {
		return
	}

	ws.mu.Lock()
	ws.removed = true
	for bit, stop := range ws.cancel {
		close(stop)
		delete(ws.cancel, bit)
	}
	ws.mu.Unlock()
}

func (r *react) Close() {
	r.closeOnce.Do(func() {
		close(r.closed)
	})
}

// rawConnLike is the subset of syscall.RawConn reactor needs; kept as its
// own interface so tests can fake it without a real fd.
type rawConnLike interface {
	Read(f func(fd uintptr) (done bool)) error
	Write(f func(fd uintptr) (done bool)) error
}
