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

package reproxy

import (
	"context"
	"sync"
	"time"

	liblog "github.com/nabbar/eventdance/logger"
	loglvl "github.com/nabbar/eventdance/logger/level"
	libptc "github.com/nabbar/eventdance/network/protocol"
	librun "github.com/nabbar/eventdance/runner"
	libsem "github.com/nabbar/eventdance/semaphore"
	libsck "github.com/nabbar/eventdance/socket"
	sktcfg "github.com/nabbar/eventdance/socket/config"
)

// dialTimeout bounds how long openOne waits for a bridge's Connect to reach
// CONNECTED or report an error before giving up on it.
const dialTimeout = 5 * time.Second

type bridge struct {
	sock   *libsck.Socket
	mu     sync.Mutex
	last   time.Time
	closed bool
}

func (b *bridge) Conn() *libsck.Socket { return b.sock }

func (b *bridge) LastActivity() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last
}

func (b *bridge) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

func (b *bridge) touch() {
	b.mu.Lock()
	b.last = time.Now()
	b.mu.Unlock()
}

func (b *bridge) close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()
	_ = b.sock.Close()
}

type backend struct {
	cfg Config
	eng *libsck.Engine
	log liblog.FuncLog
	sem libsem.Semaphore

	mu         sync.Mutex
	free       []*bridge
	busy       map[*bridge]struct{}
	connecting int
	waiters    int

	learnedIdle time.Duration

	closed bool
}

func newBackend(cfg Config, eng *libsck.Engine, log liblog.FuncLog) *backend {
	if cfg.MinPool <= 0 {
		cfg.MinPool = 1
	}
	if cfg.MaxPool < cfg.MinPool {
		cfg.MaxPool = cfg.MinPool
	}

	b := &backend{
		cfg:         cfg,
		eng:         eng,
		log:         log,
		sem:         libsem.New(context.Background(), cfg.MaxPool, false),
		busy:        make(map[*bridge]struct{}),
		learnedIdle: cfg.IdleTimout.Time(),
	}

	for i := 0; i < cfg.MinPool; i++ {
		b.openOne()
	}

	return b
}

func (b *backend) logf(lvl loglvl.Level, msg string, args ...any) {
	if b.log == nil {
		return
	}
	if l := b.log(); l != nil {
		l.Entry(lvl, msg, args...).Log()
	}
}

func (b *backend) Counts() (free, busy, connecting int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.free), len(b.busy), b.connecting
}

func (b *backend) HasFreeBridge() bool {
	b.mu.Lock()
	hasFree := len(b.free) > 0
	canOpen := !hasFree && len(b.free)+len(b.busy)+b.connecting < b.cfg.MaxPool
	b.mu.Unlock()

	if hasFree {
		return true
	}
	if canOpen {
		b.openOne()
	}
	return false
}

// dial opens a new Socket against cfg.Address through the pool's Engine and
// blocks the calling (already-pooled) goroutine until the non-blocking
// Connect reaches CONNECTED or reports an error, so openOne's worker budget
// still gates one in-flight dial per goroutine the way the aggregator's
// semaphore-bounded worker pool expects.
func (b *backend) dial() (*libsck.Socket, error) {
	sock := libsck.New(b.eng)

	result := make(chan error, 1)
	report := func(err error) {
		select {
		case result <- err:
		default:
		}
	}

	sock.OnStateChange(func(st libsck.State) {
		if st == libsck.StateConnected {
			report(nil)
		}
	})
	sock.OnError(func(err error) { report(err) })

	cliCfg := sktcfg.Client{Network: libptc.NetworkTCP, Address: b.cfg.Address}
	if err := sock.Connect(cliCfg, dialTimeout, nil, nil); err != nil {
		return nil, err
	}

	select {
	case err := <-result:
		if err != nil {
			return nil, err
		}
		return sock, nil
	case <-time.After(dialTimeout + time.Second):
		_ = sock.Close()
		return nil, ErrorNoBridgeAvailable.Error(nil)
	}
}

func (b *backend) openOne() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.connecting++
	b.mu.Unlock()

	go func() {
		defer func() { librun.RecoveryCaller("reproxy.openOne", recover()) }()
		defer func() {
			b.mu.Lock()
			b.connecting--
			b.mu.Unlock()
		}()

		if !b.sem.NewWorkerTry() {
			return
		}
		defer b.sem.DeferWorker()

		sock, err := b.dial()
		if err != nil {
			b.logf(loglvl.WarnLevel, "reproxy: dial %s failed: %v", b.cfg.Address, err)
			return
		}

		br := &bridge{sock: sock, last: time.Now()}

		// A newly-opened bridge always lands in free, even when waiters
		// triggered it: a waiter's retry of Acquire pops it straight back
		// out, and while clients wait |free|+|connecting| stays >= 1.
		b.mu.Lock()
		if b.waiters > 0 {
			b.waiters--
		}
		b.free = append(b.free, br)
		b.mu.Unlock()

		b.refill()
	}()
}

// refill opens additional bridges while clients are waiting or the free
// pool has dropped under MinPool.
func (b *backend) refill() {
	b.mu.Lock()
	need := b.waiters > 0 || len(b.free) < b.cfg.MinPool
	room := len(b.free) + len(b.busy) + b.connecting < b.cfg.MaxPool
	b.mu.Unlock()

	if need && room {
		b.openOne()
	}
}

func (b *backend) Acquire() (Bridge, error) {
	b.mu.Lock()
	if len(b.free) == 0 {
		b.waiters++
		b.mu.Unlock()
		b.openOne()
		return nil, ErrorNoBridgeAvailable.Error(nil)
	}

	br := b.free[0]
	b.free = b.free[1:]
	b.busy[br] = struct{}{}
	b.mu.Unlock()

	return br, nil
}

func (b *backend) Release(bi Bridge) {
	br, ok := bi.(*bridge)
	if !ok {
		return
	}

	b.mu.Lock()
	delete(b.busy, br)
	refresh := b.waiters > 0 || len(b.free)+len(b.busy)+b.connecting < b.cfg.MinPool
	b.mu.Unlock()

	if refresh {
		br.close()
		b.openOne()
		return
	}

	br.close()
}

func (b *backend) NotifyActivity(bi Bridge) {
	br, ok := bi.(*bridge)
	if !ok {
		return
	}

	last := br.LastActivity()
	br.touch()

	if last.IsZero() {
		return
	}

	gap := time.Since(last)

	b.mu.Lock()
	if gap > b.learnedIdle {
		b.learnedIdle += (gap - b.learnedIdle) / 2
	}
	b.mu.Unlock()
}

func (b *backend) ReportError(bi Bridge, err error) {
	br, ok := bi.(*bridge)
	if !ok {
		return
	}

	inactivity := time.Since(br.LastActivity())

	b.mu.Lock()
	if inactivity < b.learnedIdle {
		b.learnedIdle = inactivity
	}
	threshold := b.learnedIdle

	var keep []*bridge
	for _, f := range b.free {
		if time.Since(f.LastActivity()) > threshold {
			f.close()
			continue
		}
		keep = append(keep, f)
	}
	b.free = keep
	delete(b.busy, br)
	b.mu.Unlock()

	b.logf(loglvl.WarnLevel, "reproxy: bridge error, retiring: %v", err)
	br.close()
}

func (b *backend) Close() {
	b.mu.Lock()
	b.closed = true
	all := append([]*bridge{}, b.free...)
	for br := range b.busy {
		all = append(all, br)
	}
	b.free = nil
	b.busy = make(map[*bridge]struct{})
	b.mu.Unlock()

	for _, br := range all {
		br.close()
	}
}
