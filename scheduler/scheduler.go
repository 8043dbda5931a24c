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

package scheduler

import (
	"container/heap"
	"sync"
	"sync/atomic"
	"time"

	liblog "github.com/nabbar/eventdance/logger"
	loglvl "github.com/nabbar/eventdance/logger/level"
	librun "github.com/nabbar/eventdance/runner"
)

type task struct {
	seq       uint64
	priority  Priority
	runAt     time.Time
	fn        func()
	cancelled atomic.Bool
	started   atomic.Bool
}

// taskHeap orders pending (ready) tasks by (priority, seq).
type taskHeap []*task

func (h taskHeap) Len() int { return len(h) }
func (h taskHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority < h[j].priority
	}
	return h[i].seq < h[j].seq
}
func (h taskHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *taskHeap) Push(x any)   { *h = append(*h, x.(*task)) }
func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return t
}

// delayedHeap orders not-yet-due tasks by runAt.
type delayedHeap []*task

func (h delayedHeap) Len() int            { return len(h) }
func (h delayedHeap) Less(i, j int) bool  { return h[i].runAt.Before(h[j].runAt) }
func (h delayedHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *delayedHeap) Push(x any)         { *h = append(*h, x.(*task)) }
func (h *delayedHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return t
}

type handle struct{ t *task }

func (h handle) Cancel() bool {
	if h.t.started.Load() {
		return false
	}
	return h.t.cancelled.CompareAndSwap(false, true)
}

type sched struct {
	log liblog.FuncLog

	seq atomic.Uint64
	in  chan *task

	closeOnce sync.Once
	closeCh   chan struct{}
	closed    atomic.Bool
}

func newScheduler(log liblog.FuncLog) *sched {
	s := &sched{
		log:     log,
		in:      make(chan *task, 256),
		closeCh: make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *sched) logf(lvl loglvl.Level, msg string, args ...any) {
	if s.log == nil {
		return
	}
	if l := s.log(); l != nil {
		l.Entry(lvl, msg, args...).Log()
	}
}

func (s *sched) Post(priority Priority, fn func()) Handle {
	return s.post(priority, time.Time{}, fn)
}

func (s *sched) PostAfter(delay time.Duration, priority Priority, fn func()) Handle {
	if delay <= 0 {
		return s.post(priority, time.Time{}, fn)
	}
	return s.post(priority, time.Now().Add(delay), fn)
}

func (s *sched) post(priority Priority, runAt time.Time, fn func()) Handle {
	t := &task{
		seq:      s.seq.Add(1),
		priority: priority,
		runAt:    runAt,
		fn:       fn,
	}

	if s.closed.Load() {
		t.cancelled.Store(true)
		s.logf(loglvl.WarnLevel, "scheduler: post after close, task %d dropped", t.seq)
		return handle{t}
	}

	select {
	case s.in <- t:
	case <-s.closeCh:
		t.cancelled.Store(true)
	}

	return handle{t}
}

func (s *sched) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		close(s.closeCh)
	})
}

// run is the single goroutine that owns every scheduled task. No other
// goroutine ever calls a user fn() registered with this scheduler.
func (s *sched) run() {
	var ready taskHeap
	var delayed delayedHeap
	heap.Init(&ready)
	heap.Init(&delayed)

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	resetTimer := func() {
		if len(delayed) == 0 {
			if timer != nil {
				timer.Stop()
				timer = nil
			}
			return
		}
		d := time.Until(delayed[0].runAt)
		if d < 0 {
			d = 0
		}
		if timer == nil {
			timer = time.NewTimer(d)
		} else {
			timer.Reset(d)
		}
	}

	enqueue := func(t *task) {
		if t.runAt.IsZero() || !t.runAt.After(time.Now()) {
			heap.Push(&ready, t)
			return
		}
		heap.Push(&delayed, t)
		resetTimer()
	}

	promoteDue := func() {
		now := time.Now()
		for len(delayed) > 0 && !delayed[0].runAt.After(now) {
			heap.Push(&ready, heap.Pop(&delayed).(*task))
		}
		resetTimer()
	}

	runOne := func(t *task) {
		if t.cancelled.Load() {
			return
		}
		t.started.Store(true)
		if t.fn != nil {
			func() {
				defer func() { librun.RecoveryCaller("scheduler.task", recover()) }()
				t.fn()
			}()
		}
	}

drain:
	for {
		select {
		case t := <-s.in:
			enqueue(t)
			continue drain
		default:
		}

		if len(ready) > 0 {
			runOne(heap.Pop(&ready).(*task))
			continue drain
		}

		var timerC <-chan time.Time
		if timer != nil {
			timerC = timer.C
		}

		select {
		case t := <-s.in:
			enqueue(t)
		case <-timerC:
			promoteDue()
		case <-s.closeCh:
			// Drain whatever already landed in the channel so Post callers
			// blocked on s.in don't deadlock against a closed scheduler.
			for {
				select {
				case t := <-s.in:
					t.cancelled.Store(true)
				default:
					return
				}
			}
		}
	}
}
