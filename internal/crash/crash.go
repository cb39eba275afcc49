/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package crash

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	"mockboard/internal/editor"
	applog "mockboard/internal/log"
	"mockboard/internal/storage"
	"mockboard/internal/telemetry"
	"mockboard/internal/version"
)

// exitFn is used to allow testing of Recover without terminating the test process.
var exitFn = os.Exit

// Session is the state Recover rescues. Every field is optional.
type Session struct {
	Dir       string // where reports go; os.TempDir() when empty
	Store     *editor.Store
	ProjectID string
	Telemetry *telemetry.Client
}

// Recover captures a panic, writes a crash report plus an autosave of the live
// document, uploads the report when telemetry allows it, and exits with code 2.
//
// s is read only after a panic, so callers may fill it in as work progresses.
//
// Usage: defer crash.Recover(&sess)
func Recover(s *Session) {
	r := recover()
	if r == nil {
		return
	}
	if s == nil {
		s = &Session{}
	}
	l := applog.WithComponent("crash")
	stack := debug.Stack()
	l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

	res := Handle(*s, r, stack)
	if res.ReportPath != "" {
		_, _ = fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", res.ReportPath)
	}
	if res.AutosavePath != "" {
		_, _ = fmt.Fprintf(os.Stderr, "Your dashboard was saved to: %s\n", res.AutosavePath)
	}
	_, _ = fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH)
	exitFn(2)
}

// Result lists what Handle managed to write.
type Result struct {
	ReportPath   string
	AutosavePath string
}

// Handle does the work of Recover without exiting. Failures are logged and skipped so
// that one broken step never prevents the others.
func Handle(s Session, panicVal any, stack []byte) Result {
	l := applog.WithComponent("crash")
	dir := s.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		l.Error("create crash dir failed", slog.Any("err", err), slog.String("dir", dir))
	}
	stamp := time.Now().Format("20060102-150405")
	var res Result

	if s.Store != nil {
		path, err := autosave(dir, stamp, s)
		if err != nil {
			l.Error("autosave crash snapshot failed", slog.Any("err", err))
		} else {
			res.AutosavePath = path
			l.Info("autosave crash snapshot written", slog.String("path", path))
		}
	}

	report := buildReport(s, res.AutosavePath, panicVal, stack)
	path := filepath.Join(dir, fmt.Sprintf("crash-%s.log", stamp))
	if err := os.WriteFile(path, report, 0o644); err != nil {
		l.Error("write crash report failed", slog.Any("err", err), slog.String("path", path))
	} else {
		res.ReportPath = path
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := s.Telemetry.UploadCrash(ctx, report); err != nil {
		l.Warn("crash upload failed", slog.Any("err", err))
	}
	return res
}

func buildReport(s Session, autosavePath string, panicVal any, stack []byte) []byte {
	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "Mockboard Crash Report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if s.ProjectID != "" {
		_, _ = fmt.Fprintf(&buf, "Project: %s\n", s.ProjectID)
	}
	if autosavePath != "" {
		_, _ = fmt.Fprintf(&buf, "Autosave: %s\n", autosavePath)
	}
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))
	return buf.Bytes()
}

// autosave writes the store's document as JSON in the persisted document shape.
func autosave(dir, stamp string, s Session) (string, error) {
	name := "dashboard"
	if storage.ValidateProjectID(s.ProjectID) == nil {
		name = s.ProjectID
	}
	data, err := json.MarshalIndent(s.Store.Document(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal document: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("crash-%s-%s.json", stamp, name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write autosave: %w", err)
	}
	return path, nil
}
