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
	"context"
	"encoding/json"
	"fmt"

	libtls "github.com/nabbar/eventdance/certificates"
	libdbus "github.com/nabbar/eventdance/dbus"
	libdur "github.com/nabbar/eventdance/duration"
	liblog "github.com/nabbar/eventdance/logger"
	loglvl "github.com/nabbar/eventdance/logger/level"
	libptc "github.com/nabbar/eventdance/network/protocol"
	libpeer "github.com/nabbar/eventdance/peer"
	"github.com/nabbar/eventdance/reproxy"
	"github.com/nabbar/eventdance/rpc"
	libsiz "github.com/nabbar/eventdance/size"
	libsck "github.com/nabbar/eventdance/socket"
	sckcfg "github.com/nabbar/eventdance/socket/config"
	libtrn "github.com/nabbar/eventdance/transport"
)

// logAgent is a minimal dbus.Agent that logs every command instead of
// driving a real D-Bus connection; it lets this example daemon exercise
// the Bridge dispatch path end to end.
type logAgent struct {
	log liblog.FuncLog
}

func (a logAgent) entry(msg string, args ...interface{}) {
	if a.log == nil {
		return
	}
	if l := a.log(); l != nil {
		l.Entry(loglvl.InfoLevel, msg, args...).Log()
	}
}

func (a logAgent) NewConnection(serial uint64, subject uint32, address string) {
	a.entry("dbus: NEW_CONNECTION serial=%d subject=%d address=%s", serial, subject, address)
}
func (a logAgent) CloseConnection(serial uint64, subject uint32) {
	a.entry("dbus: CLOSE_CONNECTION serial=%d subject=%d", serial, subject)
}
func (a logAgent) OwnName(serial uint64, subject uint32, name string, flags uint32) {
	a.entry("dbus: OWN_NAME serial=%d subject=%d name=%s flags=%d", serial, subject, name, flags)
}
func (a logAgent) UnownName(serial uint64, subject uint32, owningID uint32) {
	a.entry("dbus: UNOWN_NAME serial=%d subject=%d owningID=%d", serial, subject, owningID)
}
func (a logAgent) RegisterObject(serial uint64, subject uint32, objectPath, interfaceXML string) {
	a.entry("dbus: REGISTER_OBJECT serial=%d subject=%d path=%s", serial, subject, objectPath)
}
func (a logAgent) UnregisterObject(serial uint64, subject uint32) {
	a.entry("dbus: UNREGISTER_OBJECT serial=%d subject=%d", serial, subject)
}
func (a logAgent) NewProxy(serial uint64, subject uint32, name, objectPath, iface string, flags uint32) {
	a.entry("dbus: NEW_PROXY serial=%d subject=%d name=%s path=%s iface=%s", serial, subject, name, objectPath, iface)
}
func (a logAgent) CloseProxy(serial uint64, subject uint32) {
	a.entry("dbus: CLOSE_PROXY serial=%d subject=%d", serial, subject)
}
func (a logAgent) CallMethod(serial uint64, subject uint32, method, jsonArgs, signature string, flags uint32, timeout int32) {
	a.entry("dbus: CALL_METHOD serial=%d subject=%d method=%s", serial, subject, method)
}
func (a logAgent) EmitSignal(serial uint64, subject uint32, name, jsonArgs, signature string) {
	a.entry("dbus: EMIT_SIGNAL serial=%d subject=%d name=%s", serial, subject, name)
}

// runServe wires the substrate this repository implements into one
// long-running process: a JSON-RPC peer transport, an optional D-Bus
// control bridge, and an optional reverse-proxy backend pool.
func runServe(ctx context.Context, cfg daemonConfig) error {
	logCore := liblog.New(ctx)
	if cfg.LogFile != "" {
		// Routing through a file hook (backed by ioutils/aggregator's
		// startStop-managed writer goroutine) gives this daemon's logging
		// a real background lifecycle instead of just console output.
		if err := logCore.SetOptions(&liblog.Options{
			LogFile: liblog.OptionsFiles{{
				Filepath:   cfg.LogFile,
				Create:     true,
				CreatePath: true,
			}},
		}); err != nil {
			return fmt.Errorf("configuring log file %q: %w", cfg.LogFile, err)
		}
	}
	logFn := func() liblog.Logger { return logCore }
	defer func() { _ = logCore.Close() }()

	mgr := libpeer.NewManager(libpeer.Config{CleanupInterval: cfg.peerCleanupDuration(), Logger: logFn})
	defer mgr.Close()

	// One Engine (one Reactor, one Scheduler, one Resolver) drives every
	// Socket this process owns: the rpc listener, the optional dbus
	// listener and every
	// backend bridge the reverse-proxy pool dials all run their state
	// transitions serialized on this Engine's Scheduler goroutine.
	eng := libsck.NewEngine(logFn)
	defer eng.Close()

	var backend reproxy.Backend
	if cfg.Upstream != "" {
		bc := reproxy.DefaultConfig(cfg.Upstream)
		if cfg.BackendMinPool > 0 {
			bc.MinPool = cfg.BackendMinPool
		}
		if cfg.BackendMaxPool > 0 {
			bc.MaxPool = cfg.BackendMaxPool
		}
		if cfg.BackendIdle > 0 {
			bc.IdleTimout = cfg.backendIdleDuration()
		}
		backend = reproxy.New(bc, eng, logFn)
		defer backend.Close()
	}

	metrics := newDaemonMetrics()
	stopMetrics := make(chan struct{})
	defer close(stopMetrics)
	go metrics.run(cfg.MetricsInterval, backend, mgr, stopMetrics)

	rpcTransport := libtrn.NewFrame(mgr, logFn, libtrn.Config{})
	session := rpc.New()
	session.RegisterMethod("ping", func(params json.RawMessage, respond rpc.RespondFunc) {
		respond("pong", nil)
	})
	session.Attach(rpcTransport)

	rpcSrvCfg := sckcfg.Server{
		Network:       libptc.NetworkTCP,
		Address:       cfg.Listen,
		ReadThrottle:  sckcfg.Throttle{Bandwidth: libsiz.Size(cfg.BandwidthIn), Latency: libdur.Duration(cfg.LatencyIn)},
		WriteThrottle: sckcfg.Throttle{Bandwidth: libsiz.Size(cfg.BandwidthOut), Latency: libdur.Duration(cfg.LatencyOut)},
	}
	if cfg.TLSEnabled {
		rpcSrvCfg.TLS = sckcfg.TLSServer{Enabled: true, Config: *libtls.Default.Config()}
	}

	errc := make(chan error, 2)
	reportErr := func(err error) {
		select {
		case errc <- err:
		default:
		}
	}

	rpcListener := libsck.New(eng)
	rpcListener.OnAccept(func(child *libsck.Socket) { rpcTransport.BindSocket(child) })
	rpcListener.OnError(reportErr)
	if err := rpcListener.Listen(rpcSrvCfg, nil, nil); err != nil {
		return fmt.Errorf("building rpc listener: %w", err)
	}
	defer func() { _ = rpcListener.Close() }()

	if cfg.DBusListen != "" {
		dbusTransport := libtrn.NewFrame(mgr, logFn, libtrn.Config{})
		bridge := libdbus.New()
		bridge.Attach(dbusTransport, logAgent{log: logFn})

		dbusSrvCfg := sckcfg.Server{Network: libptc.NetworkTCP, Address: cfg.DBusListen}
		dbusListener := libsck.New(eng)
		dbusListener.OnAccept(func(child *libsck.Socket) { dbusTransport.BindSocket(child) })
		dbusListener.OnError(reportErr)
		if err := dbusListener.Listen(dbusSrvCfg, nil, nil); err != nil {
			return fmt.Errorf("building dbus listener: %w", err)
		}
		defer func() { _ = dbusListener.Close() }()
	}

	select {
	case <-ctx.Done():
		return nil
	case e := <-errc:
		return e
	}
}
