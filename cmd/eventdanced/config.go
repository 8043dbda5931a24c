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
	"fmt"
	"time"

	libval "github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	libdur "github.com/nabbar/eventdance/duration"
)

// daemonConfig is the eventdanced example daemon's tunables, loaded through
// viper the way certificates.Config is validated with
// go-playground/validator/v10.
type daemonConfig struct {
	Listen          string        `mapstructure:"listen" validate:"required,hostname_port"`
	DBusListen      string        `mapstructure:"dbusListen" validate:"omitempty,hostname_port"`
	Upstream        string        `mapstructure:"upstream" validate:"omitempty,hostname_port"`
	TLSEnabled      bool          `mapstructure:"tlsEnabled"`
	PeerCleanup     time.Duration `mapstructure:"peerCleanup"`
	BackendMinPool  int           `mapstructure:"backendMinPool"`
	BackendMaxPool  int           `mapstructure:"backendMaxPool"`
	BackendIdle     time.Duration `mapstructure:"backendIdle"`
	MetricsInterval time.Duration `mapstructure:"metricsInterval"`
	LogFile         string        `mapstructure:"logFile"`

	// BandwidthIn/BandwidthOut cap each accepted connection's pipeline in
	// bytes/second; LatencyIn/LatencyOut set a minimum delay between two
	// reads/writes. Zero disables the corresponding limit.
	BandwidthIn  int64         `mapstructure:"bandwidthIn" validate:"min=0"`
	BandwidthOut int64         `mapstructure:"bandwidthOut" validate:"min=0"`
	LatencyIn    time.Duration `mapstructure:"latencyIn" validate:"min=0"`
	LatencyOut   time.Duration `mapstructure:"latencyOut" validate:"min=0"`
}

func defaultDaemonConfig() daemonConfig {
	return daemonConfig{
		Listen:          "127.0.0.1:4317",
		PeerCleanup:     10 * time.Second,
		BackendMinPool:  1,
		BackendMaxPool:  5,
		BackendIdle:     60 * time.Second,
		MetricsInterval: 5 * time.Second,
	}
}

func (c daemonConfig) validate() error {
	if err := libval.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func (c daemonConfig) peerCleanupDuration() libdur.Duration {
	return libdur.Duration(c.PeerCleanup)
}

func (c daemonConfig) backendIdleDuration() libdur.Duration {
	return libdur.Duration(c.BackendIdle)
}

// loadConfig reads cfgFile (if non-empty), CLI flags and EVENTDANCED_-prefixed
// environment overrides, in that ascending precedence, into a daemonConfig
// seeded with defaultDaemonConfig.
func loadConfig(cfgFile string, flags *pflag.FlagSet) (daemonConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("eventdanced")
	v.AutomaticEnv()

	cfg := defaultDaemonConfig()
	v.SetDefault("listen", cfg.Listen)
	v.SetDefault("peerCleanup", cfg.PeerCleanup)
	v.SetDefault("backendMinPool", cfg.BackendMinPool)
	v.SetDefault("backendMaxPool", cfg.BackendMaxPool)
	v.SetDefault("backendIdle", cfg.BackendIdle)
	v.SetDefault("metricsInterval", cfg.MetricsInterval)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return cfg, fmt.Errorf("reading config %q: %w", cfgFile, err)
		}
	}

	if flags != nil {
		bindings := map[string]string{
			"listen":       "listen",
			"upstream":     "upstream",
			"dbusListen":   "dbus-listen",
			"tlsEnabled":   "tls-enabled",
			"logFile":      "log-file",
			"bandwidthIn":  "bandwidth-in",
			"bandwidthOut": "bandwidth-out",
			"latencyIn":    "latency-in",
			"latencyOut":   "latency-out",
		}
		for key, flagName := range bindings {
			if f := flags.Lookup(flagName); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return cfg, fmt.Errorf("binding flag %q: %w", flagName, err)
				}
			}
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding configuration: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}
