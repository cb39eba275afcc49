/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package telemetry sends anonymous, opt-in usage events and crash reports.
// Nothing is sent unless the user opted in and an endpoint is configured.
package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"mockboard/internal/config"
	"mockboard/internal/editor"
	applog "mockboard/internal/log"
	"mockboard/internal/version"
)

// Environment variables read by FromEnv. Opt-in itself comes from the config
// (general.telemetry_opt_in or MBK_TELEMETRY_OPT_IN).
const (
	EnvEventsURL = "MBK_TELEMETRY_URL"
	EnvCrashURL  = "MBK_CRASH_UPLOAD_URL"
	EnvTimeoutMs = "MBK_TELEMETRY_TIMEOUT_MS"
	EnvDebug     = "MBK_TELEMETRY_DEBUG"
)

type Config struct {
	OptIn        bool
	EventsURL    string
	CrashURL     string
	Timeout      time.Duration
	DebugLogging bool
}

// FromEnv builds a Config from the general settings plus the endpoint variables.
func FromEnv(general config.GeneralConfig) Config {
	cfg := Config{
		OptIn:        general.TelemetryOptIn,
		EventsURL:    strings.TrimSpace(os.Getenv(EnvEventsURL)),
		CrashURL:     strings.TrimSpace(os.Getenv(EnvCrashURL)),
		Timeout:      1500 * time.Millisecond,
		DebugLogging: os.Getenv(EnvDebug) != "",
	}
	if ms := strings.TrimSpace(os.Getenv(EnvTimeoutMs)); ms != "" {
		if v, err := time.ParseDuration(ms + "ms"); err == nil && v > 0 {
			cfg.Timeout = v
		}
	}
	return cfg
}

// Event is the JSON body posted for every usage event. Props must not carry
// identifiers or document content.
type Event struct {
	Name    string            `json:"name"`
	TS      string            `json:"ts"`
	Version string            `json:"version"`
	OS      string            `json:"os"`
	Arch    string            `json:"arch"`
	Props   map[string]string `json:"props,omitempty"`
}

// Client sends events from a bounded queue on a background goroutine. Events are
// dropped when the queue is full or a send fails.
type Client struct {
	cfg  Config
	log  *slog.Logger
	cli  *http.Client
	q    chan Event
	once sync.Once
	quit chan struct{}
	done chan struct{}
}

var (
	defaultMu     sync.Mutex
	defaultClient *Client
)

// SetDefault installs c as the package-level client and returns the previous one.
func SetDefault(c *Client) *Client {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	prev := defaultClient
	defaultClient = c
	return prev
}

// Default returns the package-level client, which may be nil.
func Default() *Client {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultClient
}

func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 1500 * time.Millisecond
	}
	c := &Client{
		cfg:  cfg,
		log:  applog.WithComponent("telemetry"),
		cli:  &http.Client{Timeout: cfg.Timeout},
		q:    make(chan Event, 64),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	go c.loop()
	return c
}

// Enabled reports whether events would be sent.
func (c *Client) Enabled() bool { return c != nil && c.cfg.OptIn && c.cfg.EventsURL != "" }

// Event queues a usage event. It never blocks.
func (c *Client) Event(name string, props map[string]string) {
	if !c.Enabled() || name == "" {
		return
	}
	ev := Event{
		Name:    name,
		TS:      time.Now().UTC().Format(time.RFC3339Nano),
		Version: version.String(),
		OS:      runtime.GOOS,
		Arch:    runtime.GOARCH,
	}
	if len(props) > 0 {
		ev.Props = make(map[string]string, len(props))
		for k, v := range props {
			ev.Props[k] = v
		}
	}
	select {
	case c.q <- ev:
	default:
	}
}

// TrackStore reports the kind of every document edit made through s. Selection
// changes are not reported. The returned function stops tracking.
func (c *Client) TrackStore(s *editor.Store) (cancel func()) {
	if !c.Enabled() {
		return func() {}
	}
	return s.Subscribe(func(ch editor.Change) {
		if ch.Op == editor.OpSelectionChanged {
			return
		}
		c.Event("edit", map[string]string{"op": string(ch.Op)})
	})
}

// Flush waits until the queue is empty, ctx is done, or half a second has passed.
func (c *Client) Flush(ctx context.Context) {
	if c == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	deadline := time.Now().Add(500 * time.Millisecond)
	for len(c.q) > 0 && time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return
		case <-time.After(25 * time.Millisecond):
		}
	}
}

// Close stops the sender and waits for an in-flight send to finish.
func (c *Client) Close() {
	if c == nil {
		return
	}
	c.once.Do(func() { close(c.quit) })
	<-c.done
}

func (c *Client) loop() {
	defer close(c.done)
	for {
		select {
		case <-c.quit:
			return
		case ev := <-c.q:
			if err := c.post(context.Background(), c.cfg.EventsURL, "application/json", mustJSON(ev)); err != nil && c.cfg.DebugLogging {
				c.log.Debug("telemetry send failed", slog.String("event", ev.Name), slog.Any("err", err))
			}
		}
	}
}

// UploadCrash posts a crash report synchronously. It is a no-op returning nil when the
// user has not opted in or no crash endpoint is configured.
func (c *Client) UploadCrash(ctx context.Context, report []byte) error {
	if c == nil || !c.cfg.OptIn || c.cfg.CrashURL == "" {
		return nil
	}
	if err := c.post(ctx, c.cfg.CrashURL, "text/plain; charset=utf-8", report); err != nil {
		return fmt.Errorf("upload crash report: %w", err)
	}
	if c.cfg.DebugLogging {
		c.log.Debug("crash report uploaded", slog.Int("bytes", len(report)))
	}
	return nil
}

func (c *Client) post(ctx context.Context, url, contentType string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	resp, err := c.cli.Do(req)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

func mustJSON(v any) []byte {
	b, _ := json.Marshal(v)
	return b
}
