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

// Command eventdanced is a thin wiring example, not a framework: it runs
// the JSON-RPC peer transport, the D-Bus control bridge and the
// reverse-proxy pool as one daemon (spf13/cobra, spf13/viper).
package main

import (
	"github.com/spf13/cobra"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "eventdanced",
		Short: "EventDance peer-transport daemon",
		Long: "eventdanced wires a JSON-RPC peer transport, an optional D-Bus control " +
			"bridge, and an optional reverse-proxy backend pool over this repository's " +
			"reactor/socket/peer substrate.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml/json/toml)")
	root.PersistentFlags().String("listen", "", "address the JSON-RPC peer transport listens on")
	root.PersistentFlags().String("upstream", "", "reverse-proxy upstream address (disabled when empty)")
	root.PersistentFlags().String("dbus-listen", "", "address the D-Bus control bridge listens on (disabled when empty)")
	root.PersistentFlags().Bool("tls-enabled", false, "terminate TLS on the JSON-RPC listener")
	root.PersistentFlags().String("log-file", "", "write structured logs to this file in addition to stdout (disabled when empty)")
	root.PersistentFlags().Int64("bandwidth-in", 0, "cap inbound bytes/second per connection (0 = unlimited)")
	root.PersistentFlags().Int64("bandwidth-out", 0, "cap outbound bytes/second per connection (0 = unlimited)")
	root.PersistentFlags().Duration("latency-in", 0, "minimum delay between two reads on a connection (0 = none)")
	root.PersistentFlags().Duration("latency-out", 0, "minimum delay between two writes on a connection (0 = none)")

	return root
}
