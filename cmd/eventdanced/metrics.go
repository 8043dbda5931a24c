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

package main

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	libpeer "github.com/nabbar/eventdance/peer"
	"github.com/nabbar/eventdance/reproxy"
)

// daemonMetrics exposes reverse-proxy pool and peer-manager gauges. It
// registers against prometheus' default registry; the daemon itself never
// serves an HTTP scrape endpoint, leaving that to whatever embeds this
// wiring.
type daemonMetrics struct {
	backendFree       prometheus.Gauge
	backendBusy       prometheus.Gauge
	backendConnecting prometheus.Gauge
	peerCount         prometheus.Gauge
}

func newDaemonMetrics() *daemonMetrics {
	m := &daemonMetrics{
		backendFree: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "eventdanced",
			Subsystem: "backend",
			Name:      "bridges_free",
			Help:      "Number of idle reverse-proxy bridges available for use.",
		}),
		backendBusy: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "eventdanced",
			Subsystem: "backend",
			Name:      "bridges_busy",
			Help:      "Number of reverse-proxy bridges currently in use.",
		}),
		backendConnecting: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "eventdanced",
			Subsystem: "backend",
			Name:      "bridges_connecting",
			Help:      "Number of reverse-proxy bridges currently dialing.",
		}),
		peerCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "eventdanced",
			Subsystem: "peer",
			Name:      "live_count",
			Help:      "Number of peers currently registered in the manager.",
		}),
	}

	prometheus.MustRegister(m.backendFree, m.backendBusy, m.backendConnecting, m.peerCount)
	return m
}

// run samples backend and mgr on every tick until stop is closed. backend
// may be nil when no upstream is configured.
func (m *daemonMetrics) run(interval time.Duration, backend reproxy.Backend, mgr libpeer.Manager, stop <-chan struct{}) {
	if interval <= 0 {
		interval = 5 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if backend != nil {
				free, busy, connecting := backend.Counts()
				m.backendFree.Set(float64(free))
				m.backendBusy.Set(float64(busy))
				m.backendConnecting.Set(float64(connecting))
			}
			m.peerCount.Set(float64(mgr.Count()))
		}
	}
}
