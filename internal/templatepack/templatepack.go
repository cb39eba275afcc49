/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package templatepack moves template libraries between installations as zip archives:
//
//	manifest.json
//	templates/<id>.json
//
// One JSON file per template keeps packs diffable and lets a damaged entry be skipped
// without losing the rest.
package templatepack

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"mockboard/internal/domain"
	"mockboard/internal/editor"
	applog "mockboard/internal/log"
	"mockboard/internal/version"
)

const (
	ManifestName = "manifest.json"
	Format       = "mockboard-templates"
	FormatVer    = 1

	templatesDir = "templates/"
	maxEntrySize = 16 << 20
)

// Manifest describes a pack.
type Manifest struct {
	Format    string      `json:"format"`
	Version   int         `json:"version"`
	App       string      `json:"app"`
	CreatedAt time.Time   `json:"createdAt"`
	Templates []EntryInfo `json:"templates"`
}

type EntryInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	File string `json:"file"`
}

// Export writes ts as a pack to w.
func Export(w io.Writer, ts []domain.Template) error {
	l := applog.WithOperation(applog.WithComponent("templatepack"), "export")
	zw := zip.NewWriter(w)
	m := Manifest{Format: Format, Version: FormatVer, App: version.String(), CreatedAt: time.Now().UTC()}
	seen := map[string]bool{}
	used := map[string]bool{}
	for _, t := range ts {
		if t.ID == "" || seen[t.ID] {
			return fmt.Errorf("template %q: missing or duplicate id", t.Name)
		}
		seen[t.ID] = true
		name := entryName(t.ID, used)
		data, err := json.MarshalIndent(t, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal template %s: %w", t.ID, err)
		}
		fw, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("add %s: %w", name, err)
		}
		if _, err := fw.Write(data); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		m.Templates = append(m.Templates, EntryInfo{ID: t.ID, Name: t.Name, File: name})
	}
	mb, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	fw, err := zw.Create(ManifestName)
	if err != nil {
		return fmt.Errorf("add manifest: %w", err)
	}
	if _, err := fw.Write(mb); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finish zip: %w", err)
	}
	l.Info("template pack exported", slog.Int("templates", len(ts)))
	return nil
}

// ExportFile writes the pack to destZipPath, creating parent folders.
func ExportFile(destZipPath string, ts []domain.Template) error {
	if strings.TrimSpace(destZipPath) == "" {
		return errors.New("destZipPath is required")
	}
	if err := os.MkdirAll(filepath.Dir(destZipPath), 0o755); err != nil {
		return fmt.Errorf("ensure zip dir: %w", err)
	}
	var buf bytes.Buffer
	if err := Export(&buf, ts); err != nil {
		return err
	}
	// On Windows, remove destination if present before create
	_ = os.Remove(destZipPath)
	return os.WriteFile(destZipPath, buf.Bytes(), 0o644)
}

// Read returns the templates of a pack in manifest order, followed by any entries the
// manifest does not list. Malformed entries are skipped and logged.
func Read(r io.ReaderAt, size int64) ([]domain.Template, error) {
	l := applog.WithOperation(applog.WithComponent("templatepack"), "read")
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("open pack: %w", err)
	}
	files := map[string]*zip.File{}
	var order []string
	var manifest *Manifest
	for _, f := range zr.File {
		switch {
		case f.Name == ManifestName:
			var m Manifest
			if err := readJSON(f, &m); err != nil {
				l.Warn("ignoring unreadable manifest", slog.Any("err", err))
				continue
			}
			if m.Format != Format {
				return nil, fmt.Errorf("not a template pack: format %q", m.Format)
			}
			manifest = &m
		case strings.HasPrefix(f.Name, templatesDir) && path.Ext(f.Name) == ".json" && !f.FileInfo().IsDir():
			files[f.Name] = f
			order = append(order, f.Name)
		}
	}
	if manifest != nil {
		listed := make([]string, 0, len(order))
		done := map[string]bool{}
		for _, e := range manifest.Templates {
			if _, ok := files[e.File]; ok && !done[e.File] {
				listed = append(listed, e.File)
				done[e.File] = true
			}
		}
		for _, n := range order {
			if !done[n] {
				listed = append(listed, n)
			}
		}
		order = listed
	}

	out := make([]domain.Template, 0, len(order))
	for _, n := range order {
		var t domain.Template
		if err := readJSON(files[n], &t); err != nil {
			l.Warn("skipping malformed template", slog.String("entry", n), slog.Any("err", err))
			continue
		}
		if t.ID == "" {
			l.Warn("skipping template without id", slog.String("entry", n))
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// ReadFile is Read for a pack on disk.
func ReadFile(packZipPath string) ([]domain.Template, error) {
	if strings.TrimSpace(packZipPath) == "" {
		return nil, errors.New("packZipPath is required")
	}
	data, err := os.ReadFile(packZipPath)
	if err != nil {
		return nil, fmt.Errorf("open pack: %w", err)
	}
	return Read(bytes.NewReader(data), int64(len(data)))
}

// Install reads a pack into the store's template collection. Templates whose id is
// already present are skipped. It returns how many were added.
func Install(s *editor.Store, packZipPath string) (int, error) {
	ts, err := ReadFile(packZipPath)
	if err != nil {
		return 0, err
	}
	n := s.ImportTemplates(ts)
	applog.WithOperation(applog.WithComponent("templatepack"), "install").Info("template pack installed",
		slog.Int("found", len(ts)), slog.Int("added", n))
	return n, nil
}

func readJSON(f *zip.File, v any) error {
	if f.UncompressedSize64 > maxEntrySize {
		return fmt.Errorf("%s: entry too large", f.Name)
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()
	data, err := io.ReadAll(io.LimitReader(rc, maxEntrySize))
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// entryName returns a zip entry for id that no earlier entry uses. Ids that sanitize
// to the same name get a numeric suffix; the manifest maps them back.
func entryName(id string, used map[string]bool) string {
	base := safeName(id)
	name := base
	for n := 2; used[strings.ToLower(name)]; n++ {
		name = fmt.Sprintf("%s-%d", base, n)
	}
	used[strings.ToLower(name)] = true
	return templatesDir + name + ".json"
}

// safeName keeps ids usable as zip entry names.
func safeName(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, id)
}
