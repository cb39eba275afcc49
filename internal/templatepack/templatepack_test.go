/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package templatepack

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mockboard/internal/domain"
	"mockboard/internal/editor"
	applog "mockboard/internal/log"
)

func sample(id, name string) domain.Template {
	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return domain.Template{
		ID:   id,
		Name: name,
		Screens: []domain.Screen{
			{ID: "s1", Name: "Overview", IsActive: true},
		},
		Elements: []domain.Element{{
			ID: "e1", Type: domain.Button, ScreenID: "s1",
			Position:   domain.Position{X: 100, Y: 100},
			Size:       domain.Size{Width: 120, Height: 40},
			Properties: domain.Properties{"text": "Go"},
		}},
		CreatedAt: ts,
		UpdatedAt: ts,
	}
}

func TestExportReadRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	in := []domain.Template{sample("b", "Second"), sample("a", "First")}
	if err := Export(&buf, in); err != nil {
		t.Fatalf("Export: %v", err)
	}
	out, err := Read(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(out) != 2 || out[0].ID != "b" || out[1].ID != "a" {
		t.Fatalf("order or count lost: %+v", out)
	}
	if out[0].Elements[0].Properties["text"] != "Go" || !out[0].CreatedAt.Equal(in[0].CreatedAt) {
		t.Fatalf("content lost: %+v", out[0])
	}
}

func TestExportKeepsIDsThatSanitizeAlike(t *testing.T) {
	var buf bytes.Buffer
	in := []domain.Template{sample("a/b", "First"), sample("a_b", "Second"), sample("A_B", "Third")}
	if err := Export(&buf, in); err != nil {
		t.Fatalf("Export: %v", err)
	}
	out, err := Read(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("exported %d templates, read back %d", len(in), len(out))
	}
	for i := range in {
		if out[i].ID != in[i].ID || out[i].Name != in[i].Name {
			t.Fatalf("template %d = %s/%s, want %s/%s", i, out[i].ID, out[i].Name, in[i].ID, in[i].Name)
		}
	}
}

func TestExportRejectsDuplicateIDs(t *testing.T) {
	var buf bytes.Buffer
	if err := Export(&buf, []domain.Template{sample("a", "x"), sample("a", "y")}); err == nil {
		t.Fatalf("expected duplicate id error")
	}
	if err := Export(&buf, []domain.Template{sample("", "x")}); err == nil {
		t.Fatalf("expected missing id error")
	}
}

func TestExportFileErrorArgs(t *testing.T) {
	if err := ExportFile("", nil); err == nil {
		t.Fatalf("expected error on empty path")
	}
	if _, err := ReadFile(""); err == nil {
		t.Fatalf("expected error on empty path")
	}
	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.zip")); err == nil {
		t.Fatalf("expected error for missing pack")
	}
}

func writeZip(t *testing.T, entries map[string]string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "pack.zip")
	f, err := os.Create(p)
	if err != nil {
		t.Fatalf("create zip: %v", err)
	}
	zw := zip.NewWriter(f)
	for name, body := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create entry: %v", err)
		}
		_, _ = w.Write([]byte(body))
	}
	_ = zw.Close()
	_ = f.Close()
	return p
}

func TestReadSkipsMalformedEntries(t *testing.T) {
	p := writeZip(t, map[string]string{
		"templates/good.json":   `{"id":"good","name":"Good","screens":[],"elements":[]}`,
		"templates/broken.json": `{"id":`,
		"templates/noid.json":   `{"name":"No id"}`,
		"readme.txt":            "ignored",
		"templates/other.txt":   "ignored",
	})
	out, err := ReadFile(p)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(out) != 1 || out[0].ID != "good" {
		t.Fatalf("expected only the good template, got %+v", out)
	}
}

func TestReadRejectsForeignManifest(t *testing.T) {
	p := writeZip(t, map[string]string{ManifestName: `{"format":"brush-pack","version":1}`})
	if _, err := ReadFile(p); err == nil {
		t.Fatalf("expected format error")
	}
}

func TestReadRejectsNonZip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "x.zip")
	if err := os.WriteFile(p, []byte("not a zip"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadFile(p); err == nil {
		t.Fatalf("expected zip error")
	}
}

func TestInstallSkipsExisting(t *testing.T) {
	n := 0
	s := editor.New(editor.WithLogger(applog.Nop()), editor.WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}))
	existing := s.SaveTemplate("Mine")

	p := filepath.Join(t.TempDir(), "out", "pack.zip")
	if err := ExportFile(p, []domain.Template{sample(existing, "Clash"), sample("fresh", "Fresh")}); err != nil {
		t.Fatalf("ExportFile: %v", err)
	}
	added, err := Install(s, p)
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if added != 1 {
		t.Fatalf("added = %d, want 1", added)
	}
	if tpl, ok := s.Template(existing); !ok || tpl.Name != "Mine" {
		t.Fatalf("existing template overwritten: %+v", tpl)
	}
	if _, ok := s.Template("fresh"); !ok {
		t.Fatalf("fresh template not installed")
	}
}

func TestSafeName(t *testing.T) {
	if got := safeName("../a b/c"); got != ".._a_b_c" {
		t.Fatalf("safeName = %q", got)
	}
}
