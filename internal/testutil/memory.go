/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package testutil provides in-memory persistence doubles for tests.
package testutil

import (
	"context"
	"encoding/json"
	"sync"

	"mockboard/internal/domain"
	"mockboard/internal/editor"
)

// MemoryAdapter implements editor.Adapter and editor.TemplateRepository in memory.
// Setting LoadErr, SaveErr or TemplatesErr makes the matching calls fail.
type MemoryAdapter struct {
	mu        sync.Mutex
	records   map[string]*editor.Record
	templates []domain.Template

	LoadErr      error
	SaveErr      error
	TemplatesErr error

	Loads int
	Saves int
}

// NewMemoryAdapter returns an empty adapter.
func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{records: make(map[string]*editor.Record)}
}

func (m *MemoryAdapter) Load(_ context.Context, projectID string) (*editor.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Loads++
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	rec, ok := m.records[projectID]
	if !ok {
		return nil, editor.ErrNotFound
	}
	if rec == nil {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (m *MemoryAdapter) Save(_ context.Context, projectID string, doc domain.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Saves++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	rec, err := editor.RecordFromDocument(doc)
	if err != nil {
		return err
	}
	m.records[projectID] = rec
	return nil
}

// Put stores a raw payload, which may be malformed on purpose. A nil rec makes Load
// return a nil record with no error.
func (m *MemoryAdapter) Put(projectID string, rec *editor.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[projectID] = rec
}

// PutRaw stores screens and elements given as JSON text.
func (m *MemoryAdapter) PutRaw(projectID, screens, elements string) {
	rec := &editor.Record{}
	if screens != "" {
		rec.Screens = json.RawMessage(screens)
	}
	if elements != "" {
		rec.Elements = json.RawMessage(elements)
	}
	m.Put(projectID, rec)
}

// Document decodes what was last saved for projectID.
func (m *MemoryAdapter) Document(projectID string) (domain.Document, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[projectID]
	if !ok || rec == nil {
		return domain.Document{}, false
	}
	var doc domain.Document
	if json.Unmarshal(rec.Screens, &doc.Screens) != nil || json.Unmarshal(rec.Elements, &doc.Elements) != nil {
		return domain.Document{}, false
	}
	return doc, true
}

func (m *MemoryAdapter) LoadTemplates(context.Context) ([]domain.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.TemplatesErr != nil {
		return nil, m.TemplatesErr
	}
	out := make([]domain.Template, len(m.templates))
	for i, t := range m.templates {
		out[i] = t.Clone()
	}
	return out, nil
}

func (m *MemoryAdapter) SaveTemplates(_ context.Context, ts []domain.Template) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.TemplatesErr != nil {
		return m.TemplatesErr
	}
	m.templates = make([]domain.Template, len(ts))
	for i, t := range ts {
		m.templates[i] = t.Clone()
	}
	return nil
}
