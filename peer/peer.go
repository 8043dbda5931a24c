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
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

type peer struct {
	id        string
	connected ConnectedFunc
	backlog   *Backlog

	mu    sync.Mutex
	last  time.Time
	state CloseState
	view  View

	closing atomic.Bool
}

func newPeer(connected ConnectedFunc, backlogLimit int) *peer {
	if connected == nil {
		connected = func() bool { return false }
	}
	return &peer{
		id:        uuid.NewString(),
		connected: connected,
		backlog:   newBacklog(backlogLimit),
		last:      time.Now(),
	}
}

func (p *peer) ID() string { return p.id }

func (p *peer) LastActivity() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

func (p *peer) Touch() {
	p.mu.Lock()
	p.last = time.Now()
	p.mu.Unlock()
}

func (p *peer) IsAlive(timeout time.Duration) bool {
	if p.connected() {
		return true
	}
	if timeout <= 0 {
		return false
	}
	return time.Since(p.LastActivity()) < timeout
}

func (p *peer) CloseState() CloseState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *peer) BeginClose(graceful bool) {
	if !p.closing.CompareAndSwap(false, true) {
		return
	}

	if !graceful {
		p.backlog.Discard()
		p.mu.Lock()
		p.state = StateClosed
		p.mu.Unlock()
		return
	}

	p.mu.Lock()
	p.state = StateClosing
	p.mu.Unlock()
}

// FinishClose is called by a transport once a graceful close's backlog
// flush and close-frame ack have completed.
func (p *peer) FinishClose() {
	p.mu.Lock()
	p.state = StateClosed
	p.mu.Unlock()
}

func (p *peer) Backlog() *Backlog { return p.backlog }

func (p *peer) View() View {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.view
}

func (p *peer) ReceiveText() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.view.Size == 0 {
		return ""
	}
	return string(p.view.Buffer[:p.view.Size])
}

func (p *peer) SetView(v View) {
	p.mu.Lock()
	p.view = v
	p.mu.Unlock()
}

func (p *peer) ClearView() {
	p.mu.Lock()
	p.view = View{}
	p.mu.Unlock()
}
