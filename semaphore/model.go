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

package semaphore

import (
	"context"
	"runtime"
	"sync/atomic"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	xsync "golang.org/x/sync/semaphore"
)

var simultaneous atomic.Int64

func init() {
	simultaneous.Store(int64(runtime.GOMAXPROCS(0)))
}

// MaxSimultaneous returns the current default concurrency limit, seeded
// from runtime.GOMAXPROCS.
func MaxSimultaneous() int64 {
	return simultaneous.Load()
}

// SetSimultaneous sets the default concurrency limit to n and returns it.
// Non-positive values leave the limit untouched and return the current
// value.
func SetSimultaneous(n int64) int64 {
	if n <= 0 {
		return MaxSimultaneous()
	}
	simultaneous.Store(n)
	return n
}

type sem struct {
	context.Context
	cancel context.CancelFunc

	weight int64
	pool   *xsync.Weighted
	prog   *mpb.Progress
}

func newSemaphore(ctx context.Context, n int64, withProgress bool) Semaphore {
	if ctx == nil {
		ctx = context.Background()
	}

	c, cancel := context.WithCancel(ctx)

	s := &sem{
		Context: c,
		cancel:  cancel,
		weight:  n,
	}

	if n > 0 {
		s.pool = xsync.NewWeighted(n)
	}

	if withProgress {
		s.prog = mpb.NewWithContext(c)
	}

	return s
}

func (s *sem) NewWorker() error {
	if s.pool == nil {
		return nil
	}
	return s.pool.Acquire(s.Context, 1)
}

func (s *sem) NewWorkerTry() bool {
	if s.pool == nil {
		return true
	}
	return s.pool.TryAcquire(1)
}

func (s *sem) DeferWorker() {
	if s.pool != nil {
		s.pool.Release(1)
	}
}

func (s *sem) WaitAll() error {
	if s.pool == nil {
		return nil
	}
	if err := s.pool.Acquire(s.Context, s.weight); err != nil {
		return err
	}
	s.pool.Release(s.weight)
	return nil
}

func (s *sem) DeferMain() {
	if s.prog != nil {
		s.prog.Wait()
	}
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *sem) Weighted() int64 {
	return s.weight
}

func (s *sem) buildBar(title, message string, total int64, drop bool, prev Bar, value decor.Decorator) Bar {
	if s.prog == nil {
		return &bar{sem: s}
	}

	opts := []mpb.BarOption{
		mpb.PrependDecorators(decor.Name(title), decor.Name(" "+message+" ")),
		mpb.AppendDecorators(value),
	}

	if drop {
		opts = append(opts, mpb.BarRemoveOnComplete())
	}

	if p, ok := prev.(*bar); ok && p != nil && p.raw != nil {
		opts = append(opts, mpb.BarQueueAfter(p.raw, false))
	}

	return &bar{sem: s, total: total, raw: s.prog.AddBar(total, opts...)}
}

func (s *sem) BarBytes(title, message string, total int64, drop bool, prev Bar) Bar {
	return s.buildBar(title, message, total, drop, prev, decor.CountersKibiByte("% .2f / % .2f"))
}

func (s *sem) BarTime(title, message string, total int64, drop bool, prev Bar) Bar {
	return s.buildBar(title, message, total, drop, prev, decor.Elapsed(decor.ET_STYLE_GO, 0))
}

func (s *sem) BarNumber(title, message string, total int64, drop bool, prev Bar) Bar {
	return s.buildBar(title, message, total, drop, prev, decor.CountersNoUnit("%d / %d"))
}

func (s *sem) BarOpts(total int64, drop bool) Bar {
	if s.prog == nil {
		return &bar{sem: s}
	}

	var opts []mpb.BarOption
	if drop {
		opts = append(opts, mpb.BarRemoveOnComplete())
	}

	return &bar{sem: s, total: total, raw: s.prog.AddBar(total, opts...)}
}

type bar struct {
	sem   *sem
	total int64
	raw   *mpb.Bar
	done  atomic.Bool
}

func (b *bar) NewWorker() error {
	return b.sem.NewWorker()
}

func (b *bar) DeferWorker() {
	if b.raw != nil {
		b.raw.Increment()
	}
	b.sem.DeferWorker()
}

func (b *bar) Total() int64 {
	return b.total
}

func (b *bar) Inc(n int) {
	if b.raw != nil {
		b.raw.IncrBy(n)
	}
}

func (b *bar) Inc64(n int64) {
	if b.raw != nil {
		b.raw.IncrInt64(n)
	}
}

func (b *bar) Complete() {
	if !b.done.CompareAndSwap(false, true) {
		return
	}
	if b.raw != nil {
		b.raw.SetTotal(b.total, true)
	}
}

func (b *bar) Completed() bool {
	if b.raw != nil {
		return b.raw.Completed()
	}
	return b.done.Load()
}
