/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/zalando/go-keyring"
)

// isolate points the config path at an empty temp dir so a developer's real config
// never leaks into the tests.
func isolate(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv(EnvConfigPath, path)
	keyring.MockInit()
	return path
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	isolate(t)
	cfg, tok, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if tok != "" {
		t.Fatalf("token = %q, want empty", tok)
	}
	if cfg.Storage.Driver != DriverFile || cfg.Export.DPI != 96 {
		t.Fatalf("defaults not applied: %#v", cfg)
	}
}

func TestLoadMergesFile(t *testing.T) {
	path := isolate(t)
	yml := "storage:\n  driver: SQLite\n  sqlite_path: /tmp/mb.sqlite\nlogging:\n  level: DEBUG\nexport:\n  dpi: 144\n"
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Storage.Driver != DriverSQLite || cfg.Storage.SQLitePath != "/tmp/mb.sqlite" {
		t.Fatalf("storage not merged: %#v", cfg.Storage)
	}
	if cfg.Logging.Level != "debug" || cfg.Export.DPI != 144 {
		t.Fatalf("logging/export not merged: %#v %#v", cfg.Logging, cfg.Export)
	}
	if cfg.Storage.TimeoutMs != 15000 {
		t.Fatalf("unset fields should keep defaults, timeout = %d", cfg.Storage.TimeoutMs)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := isolate(t)
	if err := os.WriteFile(path, []byte("storage: [not, a, map"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, _, err := Load(); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestValidateDriver(t *testing.T) {
	isolate(t)
	t.Setenv(EnvStorageDriver, "mongo")
	if _, _, err := Load(); err == nil {
		t.Fatalf("expected unknown driver error")
	}
}

func TestEnvOverridesStorage(t *testing.T) {
	isolate(t)
	t.Setenv(EnvStorageDriver, "http")
	t.Setenv(EnvBackendURL, "https://example.test:8443")
	t.Setenv(EnvBackendTimeoutMs, "2500")
	t.Setenv(EnvBackendTLSInsec, "yes")
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	s := cfg.Storage
	if s.Driver != DriverHTTP || s.BaseURL != "https://example.test:8443" || !s.TLSInsecure {
		t.Fatalf("storage env overrides not applied: %#v", s)
	}
	if s.Timeout() != 2500*time.Millisecond {
		t.Fatalf("timeout = %v", s.Timeout())
	}
	if name, ok := EnvOverrideFor("storage.base_url"); !ok || name != EnvBackendURL {
		t.Fatalf("EnvOverrideFor = %q,%v", name, ok)
	}
	if _, ok := EnvOverrideFor("storage.root"); ok {
		t.Fatalf("storage.root is not overridden")
	}
}

func TestEnvOverridesTelemetry(t *testing.T) {
	isolate(t)
	t.Setenv(EnvTelemetryOptIn, "true")
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !cfg.General.TelemetryOptIn {
		t.Fatalf("General.TelemetryOptIn expected true from env override")
	}
}

func TestMergeIncludesLogging(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Logging.Level = "debug"
	src.Logging.Format = "json"
	src.Logging.Source = true
	src.Logging.File = "C:/tmp/mbk.log"
	mergeInto(&dst, &src)
	if dst.Logging.Level != "debug" || dst.Logging.Format != "json" || !dst.Logging.Source || dst.Logging.File != "C:/tmp/mbk.log" {
		t.Fatalf("logging fields not merged correctly: %#v", dst.Logging)
	}
}

func TestEnvOverridesLogging(t *testing.T) {
	isolate(t)
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogFormat, "json")
	t.Setenv(EnvLogSource, "1")
	t.Setenv(EnvLogFile, "X:/mbk.log")
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Logging.Level != "error" || cfg.Logging.Format != "json" || !cfg.Logging.Source || cfg.Logging.File != "X:/mbk.log" {
		t.Fatalf("env overrides not applied to logging: %#v", cfg.Logging)
	}
}

func TestSaveRoundTripWithToken(t *testing.T) {
	isolate(t)
	cfg := Defaults()
	cfg.Storage.Driver = DriverPostgres
	if err := Save(cfg, "s3cret"); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	got, tok, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got.Storage.Driver != DriverPostgres || tok != "s3cret" {
		t.Fatalf("round trip lost data: driver=%q token=%q", got.Storage.Driver, tok)
	}
	if err := ClearToken(); err != nil {
		t.Fatalf("ClearToken() error: %v", err)
	}
	if tok, err := Token(); err != nil || tok != "" {
		t.Fatalf("token after clear = %q, %v", tok, err)
	}
}

type mapStore map[string]string

func (m mapStore) Get(s, k string) (string, error) {
	v, ok := m[s+"/"+k]
	if !ok {
		return "", keyring.ErrNotFound
	}
	return v, nil
}
func (m mapStore) Set(s, k, v string) error { m[s+"/"+k] = v; return nil }
func (m mapStore) Delete(s, k string) error { delete(m, s+"/"+k); return nil }

func TestSetTokenStore(t *testing.T) {
	m := mapStore{}
	restore := SetTokenStore(m)
	defer restore()
	if err := tokenStore.Set(keyringService, keyringToken, "abc"); err != nil {
		t.Fatal(err)
	}
	if tok, _ := Token(); tok != "abc" {
		t.Fatalf("token = %q", tok)
	}
}
