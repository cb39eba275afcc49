/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"path/filepath"
	"testing"

	"mockboard/internal/domain"
)

func openSQLiteForTest(t *testing.T) (*SQLiteStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "db", "mockboard.sqlite")
	s, err := OpenSQLite(context.Background(), path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestSQLiteStoreContract(t *testing.T) {
	s, _ := openSQLiteForTest(t)
	exerciseBackend(t, s, "sales-q1")
}

func TestSQLiteMigrationsAndReopen(t *testing.T) {
	s, path := openSQLiteForTest(t)
	ctx := context.Background()
	v, err := s.SchemaVersion(ctx)
	if err != nil || v != sqliteSchemaVersion {
		t.Fatalf("schema version = %d, %v; want %d", v, err, sqliteSchemaVersion)
	}
	if err := s.Save(ctx, "p1", domain.Document{Screens: []domain.Screen{{ID: "s1", Name: "A", IsActive: true}}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	again, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = again.Close() }()
	if v, _ := again.SchemaVersion(ctx); v != sqliteSchemaVersion {
		t.Fatalf("schema version after reopen = %d", v)
	}
	rec, err := again.Load(ctx, "p1")
	if err != nil {
		t.Fatalf("load after reopen: %v", err)
	}
	if string(rec.Screens) == "" || rec.CreatedAt.IsZero() {
		t.Fatalf("record incomplete: %+v", rec)
	}
}

func TestSQLiteWALEnabled(t *testing.T) {
	s, _ := openSQLiteForTest(t)
	var mode string
	if err := s.db.QueryRow(`PRAGMA journal_mode;`).Scan(&mode); err != nil {
		t.Fatalf("pragma: %v", err)
	}
	if mode != "wal" {
		t.Fatalf("journal_mode = %q, want wal", mode)
	}
}

func TestSQLiteSkipsUndecodableTemplates(t *testing.T) {
	s, _ := openSQLiteForTest(t)
	ctx := context.Background()
	good := domain.Template{ID: "t1", Name: "Good", Screens: []domain.Screen{}, Elements: []domain.Element{}}
	if err := s.SaveTemplates(ctx, []domain.Template{good}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.db.ExecContext(ctx, sqliteInsertTemplate, "t2", "Bad", 1, []byte{0xc1, 0xff}, "x", "x"); err != nil {
		t.Fatal(err)
	}
	ts, err := s.LoadTemplates(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(ts) != 1 || ts[0].ID != "t1" {
		t.Fatalf("templates = %+v", ts)
	}
}

