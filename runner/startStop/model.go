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

package startStop

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	librun "github.com/nabbar/eventdance/runner"
)

type runner struct {
	start FuncStart
	stop  FuncStop

	running atomic.Bool

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	startAt time.Time

	errMu sync.Mutex
	errs  []error
}

// New returns a StartStop wrapping start and stop. Either may be nil; the
// missing side is reported as an error the next time it would have run.
func New(start FuncStart, stop FuncStop) StartStop {
	return &runner{start: start, stop: stop}
}

func (r *runner) addErr(e error) {
	if e == nil {
		return
	}
	r.errMu.Lock()
	r.errs = append(r.errs, e)
	r.errMu.Unlock()
}

func (r *runner) resetErrs() {
	r.errMu.Lock()
	r.errs = nil
	r.errMu.Unlock()
}

func (r *runner) ErrorsLast() error {
	r.errMu.Lock()
	defer r.errMu.Unlock()

	if len(r.errs) == 0 {
		return nil
	}
	return r.errs[len(r.errs)-1]
}

func (r *runner) ErrorsList() []error {
	r.errMu.Lock()
	defer r.errMu.Unlock()

	out := make([]error, len(r.errs))
	copy(out, r.errs)
	return out
}

func (r *runner) IsRunning() bool {
	return r.running.Load()
}

func (r *runner) Uptime() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.startAt.IsZero() || !r.running.Load() {
		return 0
	}
	return time.Since(r.startAt)
}

func (r *runner) Start(ctx context.Context) error {
	r.doStop(ctx)
	r.resetErrs()

	cctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	r.mu.Lock()
	r.cancel = cancel
	r.done = done
	r.startAt = time.Now()
	r.mu.Unlock()

	r.running.Store(true)

	go r.run(cctx, done)

	return nil
}

func (r *runner) Stop(ctx context.Context) error {
	r.doStop(ctx)
	return nil
}

func (r *runner) Restart(ctx context.Context) error {
	return r.Start(ctx)
}

func (r *runner) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer func() {
		if rec := recover(); rec != nil {
			librun.RecoveryCaller("runner/startStop.run", rec)
			r.addErr(fmt.Errorf("panic in start function: %v", rec))
		}

		r.running.Store(false)
		r.mu.Lock()
		r.startAt = time.Time{}
		r.mu.Unlock()
	}()

	fn := r.start
	if fn == nil {
		r.addErr(fmt.Errorf("invalid start function"))
		return
	}

	if err := fn(ctx); err != nil {
		r.addErr(err)
	}
}

// doStop cancels and waits for any running instance, then runs the stop
// callback. It is the shared body of Stop and of Start's preemption of a
// previous instance.
func (r *runner) doStop(ctx context.Context) {
	if !r.running.CompareAndSwap(true, false) {
		return
	}

	r.mu.Lock()
	cancel := r.cancel
	done := r.done
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	r.callStop(ctx)

	if done != nil {
		select {
		case <-done:
		case <-time.After(5 * time.Second):
		}
	}
}

func (r *runner) callStop(ctx context.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			librun.RecoveryCaller("runner/startStop.stop", rec)
			r.addErr(fmt.Errorf("panic in stop function: %v", rec))
		}
	}()

	fn := r.stop
	if fn == nil {
		r.addErr(fmt.Errorf("invalid stop function"))
		return
	}

	if err := fn(ctx); err != nil {
		r.addErr(err)
	}
}
