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
	"encoding/json"
	"errors"
	"testing"
	"time"

	"mockboard/internal/domain"
	"mockboard/internal/editor"
	applog "mockboard/internal/log"
)

// seedStore builds a small two-screen document.
func seedStore(t *testing.T, b Backend) *editor.Store {
	t.Helper()
	s := editor.New(editor.WithAdapter(b), editor.WithTemplateRepository(b), editor.WithLogger(applog.Nop()))
	id, ok := s.AddElement(domain.SimpleTable, domain.Position{X: 10, Y: 20})
	if !ok {
		t.Fatalf("AddElement failed")
	}
	s.UpdateElementProperties(id, domain.Properties{"title": "Orders"})
	s.AddScreen()
	s.AddElement(domain.KPI, domain.Position{X: 300, Y: 40})
	return s
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

// exerciseBackend runs the adapter contract shared by every driver.
func exerciseBackend(t *testing.T, b Backend, projectID string) {
	t.Helper()
	ctx := context.Background()

	if _, err := b.Load(ctx, projectID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load(missing) err = %v, want ErrNotFound", err)
	}

	for _, bad := range []string{"", "../escape", "a b"} {
		if _, err := b.Load(ctx, bad); !errors.Is(err, ErrInvalidProjectID) {
			t.Fatalf("Load(%q) err = %v, want ErrInvalidProjectID", bad, err)
		}
		if err := b.Save(ctx, bad, domain.Document{}); !errors.Is(err, ErrInvalidProjectID) {
			t.Fatalf("Save(%q) err = %v, want ErrInvalidProjectID", bad, err)
		}
	}

	src := seedStore(t, b)
	if err := src.SaveProjectToDatabase(ctx, projectID); err != nil {
		t.Fatalf("save: %v", err)
	}
	dst := editor.New(editor.WithAdapter(b), editor.WithLogger(applog.Nop()))
	if err := dst.LoadProjectFromDatabase(ctx, projectID); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got, want := mustJSON(t, dst.Document().Elements), mustJSON(t, src.Document().Elements); got != want {
		t.Fatalf("elements differ after round trip\n got: %s\nwant: %s", got, want)
	}
	if got, want := mustJSON(t, dst.Screens()), mustJSON(t, src.Screens()); got != want {
		t.Fatalf("screens differ after round trip\n got: %s\nwant: %s", got, want)
	}

	// second save overwrites (last write wins)
	src.CreateNewTemplate()
	if err := src.SaveProjectToDatabase(ctx, projectID); err != nil {
		t.Fatalf("second save: %v", err)
	}
	if err := dst.LoadProjectFromDatabase(ctx, projectID); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if n := len(dst.Elements()); n != 0 {
		t.Fatalf("expected empty document after overwrite, got %d elements", n)
	}

	list, err := b.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	found := false
	for _, p := range list {
		found = found || p.ID == projectID
	}
	if !found {
		t.Fatalf("project %q missing from list %v", projectID, list)
	}

	// template library
	lib := seedStore(t, b)
	lib.SaveTemplate("first")
	lib.SaveTemplate("second")
	if err := lib.SaveTemplateLibrary(ctx); err != nil {
		t.Fatalf("save templates: %v", err)
	}
	ts, err := b.LoadTemplates(ctx)
	if err != nil {
		t.Fatalf("load templates: %v", err)
	}
	want := lib.Templates()
	if len(ts) != len(want) {
		t.Fatalf("templates = %d, want %d", len(ts), len(want))
	}
	for i := range want {
		if ts[i].ID != want[i].ID || ts[i].Name != want[i].Name {
			t.Fatalf("template %d = %s/%s, want %s/%s", i, ts[i].ID, ts[i].Name, want[i].ID, want[i].Name)
		}
		if got, w := mustJSON(t, ts[i].Elements), mustJSON(t, want[i].Elements); got != w {
			t.Fatalf("template %d elements differ\n got: %s\nwant: %s", i, got, w)
		}
		if !ts[i].CreatedAt.Equal(want[i].CreatedAt.Truncate(time.Microsecond)) && !ts[i].CreatedAt.Equal(want[i].CreatedAt) {
			t.Fatalf("template %d created_at = %v, want %v", i, ts[i].CreatedAt, want[i].CreatedAt)
		}
	}
	if err := b.SaveTemplates(ctx, nil); err != nil {
		t.Fatalf("clear templates: %v", err)
	}
	if ts, err := b.LoadTemplates(ctx); err != nil || len(ts) != 0 {
		t.Fatalf("templates after clear = %v, %v", ts, err)
	}
}
