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

import (
	"sync"
	"time"

	loglvl "github.com/nabbar/eventdance/logger/level"
)

type manager struct {
	cfg Config

	mu     sync.RWMutex
	peers  map[string]*peer
	onDead []func(Peer)

	closeOnce sync.Once
	closeCh   chan struct{}
}

func newManager(cfg Config) *manager {
	if cfg.CleanupInterval.Time() <= 0 {
		cfg.CleanupInterval = DefaultConfig().CleanupInterval
	}
	if cfg.BacklogLimit <= 0 {
		cfg.BacklogLimit = DefaultBacklogLimit
	}

	m := &manager{
		cfg:     cfg,
		peers:   make(map[string]*peer),
		closeCh: make(chan struct{}),
	}

	go m.sweepLoop()

	return m
}

func (m *manager) logf(lvl loglvl.Level, msg string, args ...any) {
	if m.cfg.Logger == nil {
		return
	}
	if l := m.cfg.Logger(); l != nil {
		l.Entry(lvl, msg, args...).Log()
	}
}

func (m *manager) New(connected ConnectedFunc) Peer {
	p := newPeer(connected, m.cfg.BacklogLimit)

	m.mu.Lock()
	m.peers[p.id] = p
	m.mu.Unlock()

	return p
}

func (m *manager) Lookup(id string) (Peer, bool) {
	m.mu.RLock()
	p, ok := m.peers[id]
	m.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if !p.IsAlive(m.cfg.Timeout.Time()) {
		m.Remove(id)
		return nil, false
	}

	return p, true
}

func (m *manager) Remove(id string) {
	m.mu.Lock()
	delete(m.peers, id)
	m.mu.Unlock()
}

func (m *manager) OnPeerClosed(fn func(Peer)) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	m.onDead = append(m.onDead, fn)
	m.mu.Unlock()
}

func (m *manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.peers)
}

func (m *manager) Close() {
	m.closeOnce.Do(func() {
		close(m.closeCh)
	})
}

// sweepLoop removes peers that are both disconnected and past the liveness
// timeout, at most once per CleanupInterval.
func (m *manager) sweepLoop() {
	interval := m.cfg.CleanupInterval.Time()
	if interval <= 0 {
		interval = 10 * time.Second
	}

	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-m.closeCh:
			return
		case <-t.C:
			m.sweepOnce()
		}
	}
}

func (m *manager) sweepOnce() {
	timeout := m.cfg.Timeout.Time()

	m.mu.Lock()
	var dead []*peer
	for id, p := range m.peers {
		if p.connected() {
			continue
		}
		if timeout > 0 && time.Since(p.LastActivity()) < timeout {
			continue
		}
		dead = append(dead, p)
		delete(m.peers, id)
	}
	handlers := append([]func(Peer){}, m.onDead...)
	m.mu.Unlock()

	for _, p := range dead {
		m.logf(loglvl.InfoLevel, "peer: sweeping dead peer %s (inactive %s)", p.ID(), time.Since(p.LastActivity()).Round(time.Millisecond))
		p.BeginClose(false)
		for _, h := range handlers {
			h(p)
		}
	}
}

var (
	globalMu  sync.Mutex
	globalMgr Manager
)

func globalOnce() Manager {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalMgr == nil {
		globalMgr = NewManager(DefaultConfig())
	}

	return globalMgr
}
