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

package socket

import (
	"sync"

	liblog "github.com/nabbar/eventdance/logger"
	libreact "github.com/nabbar/eventdance/reactor"
	libres "github.com/nabbar/eventdance/resolver"
	libsch "github.com/nabbar/eventdance/scheduler"
)

// Engine is the shared runtime a group of Sockets is built on: one Reactor,
// one Scheduler and one Resolver, under a single-scheduler-thread
// discipline - every state transition below runs on the Engine's
// Scheduler goroutine, whether triggered by a reactor event, a resolver
// callback or a direct user call.
type Engine struct {
	react libreact.Reactor
	sched libsch.Scheduler
	res   libres.Resolver

	mu      sync.Mutex
	sockets map[any]*Socket
}

// NewEngine starts the reactor and scheduler goroutines backing every
// Socket created with it. log may be nil.
func NewEngine(log liblog.FuncLog) *Engine {
	e := &Engine{
		react:   libreact.New(256, log),
		sched:   libsch.New(log),
		res:     libres.New(),
		sockets: make(map[any]*Socket),
	}
	go e.dispatch()
	return e
}

// Close releases the reactor and scheduler goroutines. Sockets already
// created continue to exist but will no longer receive readiness events.
func (e *Engine) Close() {
	e.react.Close()
	e.sched.Close()
}

func (e *Engine) register(s *Socket) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sockets[s] = s
}

func (e *Engine) unregister(s *Socket) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.sockets, s)
}

// dispatch forwards every reactor event onto the scheduler, so the actual
// state mutation it triggers runs serialized with everything else.
func (e *Engine) dispatch() {
	for ev := range e.react.Events() {
		s, ok := ev.ID.(*Socket)
		if !ok {
			continue
		}

		priority := s.currentPriority()
		if ev.Readiness.Has(libreact.Readable) {
			e.sched.Post(priority, s.onReadable)
		}
		if ev.Readiness.Has(libreact.Writable) {
			e.sched.Post(priority, s.onWritable)
		}
	}
}
