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

package scheduler_test

import (
	"sync"
	"sync/atomic"
	"time"

	. "github.com/nabbar/eventdance/scheduler"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Scheduler", func() {
	var s Scheduler

	BeforeEach(func() {
		s = New(nil)
	})

	AfterEach(func() {
		s.Close()
	})

	It("runs posted tasks in priority order", func() {
		var mu sync.Mutex
		var order []int
		var wg sync.WaitGroup
		wg.Add(3)

		record := func(n int) func() {
			return func() {
				mu.Lock()
				order = append(order, n)
				mu.Unlock()
				wg.Done()
			}
		}

		s.Post(PriorityLow, record(3))
		s.Post(PriorityHigh, record(1))
		s.Post(PriorityDefault, record(2))

		wg.Wait()
		Expect(order).To(Equal([]int{1, 2, 3}))
	})

	It("breaks ties by insertion order", func() {
		var mu sync.Mutex
		var order []int
		var wg sync.WaitGroup
		wg.Add(3)

		record := func(n int) func() {
			return func() {
				mu.Lock()
				order = append(order, n)
				mu.Unlock()
				wg.Done()
			}
		}

		s.Post(PriorityDefault, record(1))
		s.Post(PriorityDefault, record(2))
		s.Post(PriorityDefault, record(3))

		wg.Wait()
		Expect(order).To(Equal([]int{1, 2, 3}))
	})

	It("defers a delayed task until its delay elapses", func() {
		start := time.Now()
		done := make(chan time.Duration, 1)

		s.PostAfter(80*time.Millisecond, PriorityDefault, func() {
			done <- time.Since(start)
		})

		var elapsed time.Duration
		Eventually(done, time.Second).Should(Receive(&elapsed))
		Expect(elapsed).To(BeNumerically(">=", 70*time.Millisecond))
	})

	It("never runs a task cancelled before it fires", func() {
		var ran atomic.Bool
		h := s.PostAfter(50*time.Millisecond, PriorityDefault, func() {
			ran.Store(true)
		})

		Expect(h.Cancel()).To(BeTrue())
		Consistently(ran.Load, 150*time.Millisecond, 20*time.Millisecond).Should(BeFalse())
	})

	It("makes cancel a no-op once the task already started", func() {
		started := make(chan struct{})
		release := make(chan struct{})

		h := s.Post(PriorityDefault, func() {
			close(started)
			<-release
		})

		Eventually(started).Should(BeClosed())
		Expect(h.Cancel()).To(BeFalse())
		close(release)
	})

	It("drops queued tasks once closed without running them", func() {
		s2 := New(nil)
		var ran atomic.Bool
		s2.Close()
		s2.Post(PriorityDefault, func() { ran.Store(true) })
		Consistently(ran.Load, 100*time.Millisecond, 10*time.Millisecond).Should(BeFalse())
	})
})
