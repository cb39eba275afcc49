/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package editor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"mockboard/internal/domain"
	applog "mockboard/internal/log"
)

var (
	// ErrNotFound is returned by adapters when a project or library does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNoAdapter is returned by the persistence entry points of a store built without one.
	ErrNoAdapter = errors.New("no persistence adapter configured")
	// ErrNoTemplateRepository is the template library counterpart of ErrNoAdapter.
	ErrNoTemplateRepository = errors.New("no template repository configured")
)

// Record is a persisted document as an adapter returns it. Screens and Elements stay
// raw so the store can tolerate partial or malformed payloads.
type Record struct {
	Screens   json.RawMessage `json:"screens,omitempty"`
	Elements  json.RawMessage `json:"elements,omitempty"`
	CreatedAt time.Time       `json:"createdAt,omitempty"`
	UpdatedAt time.Time       `json:"updatedAt,omitempty"`
}

// RecordFromDocument renders doc as the raw record an adapter would return.
func RecordFromDocument(doc domain.Document) (*Record, error) {
	sb, err := json.Marshal(domain.CloneScreens(doc.Screens))
	if err != nil {
		return nil, fmt.Errorf("encode screens: %w", err)
	}
	eb, err := json.Marshal(domain.CloneElements(doc.Elements))
	if err != nil {
		return nil, fmt.Errorf("encode elements: %w", err)
	}
	return &Record{Screens: sb, Elements: eb, CreatedAt: doc.CreatedAt, UpdatedAt: doc.UpdatedAt}, nil
}

// Adapter moves documents between the store and a backend. Implementations live in
// package storage.
type Adapter interface {
	Load(ctx context.Context, projectID string) (*Record, error)
	Save(ctx context.Context, projectID string, doc domain.Document) error
}

// TemplateRepository persists the template library as a whole.
type TemplateRepository interface {
	LoadTemplates(ctx context.Context) ([]domain.Template, error)
	SaveTemplates(ctx context.Context, ts []domain.Template) error
}

// LoadProjectFromDatabase replaces screens and elements with the project's persisted
// document and clears the selection. Malformed parts of the payload fall back to
// defaults. On error the store is left unchanged.
func (s *Store) LoadProjectFromDatabase(ctx context.Context, projectID string) error {
	if s.adapter == nil {
		return ErrNoAdapter
	}
	ctx = applog.WithProject(ctx, projectID)
	l := applog.WithOperation(s.log, "load_project")
	rec, err := s.adapter.Load(ctx, projectID)
	if err != nil {
		l.WarnContext(ctx, "load failed", slog.Any("err", err))
		return fmt.Errorf("load project %q: %w", projectID, err)
	}
	if rec == nil {
		l.DebugContext(ctx, "empty payload, using defaults")
		rec = &Record{}
	}
	screens := decodeScreens(rec.Screens, l)
	els := decodeElements(rec.Elements, l)

	s.mutate("load_project", func(l *slog.Logger) (Change, bool) {
		s.screens, s.elements = normalize(screens, els, s.newID, l)
		s.selected = ""
		s.createdAt = rec.CreatedAt
		if s.createdAt.IsZero() {
			s.createdAt = s.now()
		}
		return Change{Op: OpProjectLoaded, ID: projectID}, true
	})
	l.InfoContext(ctx, "project loaded", slog.Int("screens", len(screens)), slog.Int("elements", len(els)))
	return nil
}

// SaveProjectToDatabase snapshots the document and hands it to the adapter. The lock
// is not held during I/O; last write wins.
func (s *Store) SaveProjectToDatabase(ctx context.Context, projectID string) error {
	if s.adapter == nil {
		return ErrNoAdapter
	}
	ctx = applog.WithProject(ctx, projectID)
	l := applog.WithOperation(s.log, "save_project")
	doc := s.Document()
	if err := s.adapter.Save(ctx, projectID, doc); err != nil {
		l.WarnContext(ctx, "save failed", slog.Any("err", err))
		return fmt.Errorf("save project %q: %w", projectID, err)
	}
	l.InfoContext(ctx, "project saved", slog.Int("screens", len(doc.Screens)), slog.Int("elements", len(doc.Elements)))
	return nil
}

// decodeScreens accepts only a non-empty JSON array of screen objects; anything else
// yields nil and lets normalize supply the default screen.
func decodeScreens(raw json.RawMessage, l *slog.Logger) []domain.Screen {
	items, ok := rawArray(raw)
	if !ok {
		if len(bytes.TrimSpace(raw)) > 0 {
			l.Debug("screens payload is not an array")
		}
		return nil
	}
	var out []domain.Screen
	for _, it := range items {
		var sc domain.Screen
		if err := json.Unmarshal(it, &sc); err != nil {
			l.Debug("skipping malformed screen", slog.Any("err", err))
			continue
		}
		out = append(out, sc)
	}
	return out
}

// decodeElements decodes item by item so one bad element does not cost the rest.
func decodeElements(raw json.RawMessage, l *slog.Logger) []domain.Element {
	items, ok := rawArray(raw)
	if !ok {
		if len(bytes.TrimSpace(raw)) > 0 {
			l.Debug("elements payload is not an array")
		}
		return nil
	}
	out := make([]domain.Element, 0, len(items))
	for _, it := range items {
		var e domain.Element
		if err := json.Unmarshal(it, &e); err != nil {
			l.Debug("skipping malformed element", slog.Any("err", err))
			continue
		}
		out = append(out, e)
	}
	return out
}

func rawArray(raw json.RawMessage) ([]json.RawMessage, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	return items, true
}
