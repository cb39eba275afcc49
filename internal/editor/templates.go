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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"mockboard/internal/domain"
	applog "mockboard/internal/log"
)

// SaveTemplate snapshots the current screens and elements as a new named template
// and returns its id. A blank name is replaced with "Template N".
func (s *Store) SaveTemplate(name string) string {
	var id string
	s.mutate("save_template", func(*slog.Logger) (Change, bool) {
		name = strings.TrimSpace(name)
		if name == "" {
			name = fmt.Sprintf("Template %d", len(s.templates)+1)
		}
		now := s.now()
		id = s.newID()
		s.templates = append(s.templates, domain.Template{
			ID:        id,
			Name:      name,
			Screens:   domain.CloneScreens(s.screens),
			Elements:  domain.CloneElements(s.elements),
			CreatedAt: now,
			UpdatedAt: now,
		})
		return Change{Op: OpTemplateSaved, ID: id}, true
	})
	return id
}

// LoadTemplate replaces the live screens and elements with a copy of the template's
// and clears the selection. The template itself is never modified.
func (s *Store) LoadTemplate(id string) {
	s.mutate("load_template", func(l *slog.Logger) (Change, bool) {
		i := s.templateIndexLocked(id)
		if i < 0 {
			l.Debug("template not found", slog.String("id", id))
			return Change{}, false
		}
		t := s.templates[i]
		s.screens, s.elements = normalize(t.Screens, t.Elements, s.newID, l)
		s.selected = ""
		return Change{Op: OpTemplateLoaded, ID: id}, true
	})
}

// CreateNewTemplate starts a blank document: one active default screen and no
// elements. The template collection is left alone.
func (s *Store) CreateNewTemplate() {
	s.mutate("new_document", func(*slog.Logger) (Change, bool) {
		s.resetLocked()
		return Change{Op: OpDocumentReset}, true
	})
}

// DeleteTemplate removes a template by id.
func (s *Store) DeleteTemplate(id string) {
	s.mutate("delete_template", func(l *slog.Logger) (Change, bool) {
		i := s.templateIndexLocked(id)
		if i < 0 {
			l.Debug("template not found", slog.String("id", id))
			return Change{}, false
		}
		s.templates = append(s.templates[:i], s.templates[i+1:]...)
		return Change{Op: OpTemplateDeleted, ID: id}, true
	})
}

// Templates returns copies of all templates in creation order.
func (s *Store) Templates() []domain.Template {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Template, len(s.templates))
	for i, t := range s.templates {
		out[i] = t.Clone()
	}
	return out
}

// Template looks up a template by id.
func (s *Store) Template(id string) (domain.Template, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.templateIndexLocked(id)
	if i < 0 {
		return domain.Template{}, false
	}
	return s.templates[i].Clone(), true
}

// ImportTemplates appends copies of ts, skipping ids already present, and returns
// how many were added. Templates without an id get a fresh one.
func (s *Store) ImportTemplates(ts []domain.Template) int {
	added := 0
	s.mutate("import_templates", func(*slog.Logger) (Change, bool) {
		for _, t := range ts {
			if t.ID == "" {
				t.ID = s.newID()
			}
			if s.templateIndexLocked(t.ID) >= 0 {
				continue
			}
			s.templates = append(s.templates, t.Clone())
			added++
		}
		return Change{Op: OpTemplatesReplaced}, added > 0
	})
	return added
}

// LoadTemplateLibrary replaces the template collection with the repository's.
// On failure the collection is left as it was.
func (s *Store) LoadTemplateLibrary(ctx context.Context) error {
	if s.library == nil {
		return ErrNoTemplateRepository
	}
	l := applog.WithOperation(s.log, "load_templates")
	ts, err := s.library.LoadTemplates(ctx)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			ts = nil
		} else {
			l.WarnContext(ctx, "template library load failed", slog.Any("err", err))
			return fmt.Errorf("load template library: %w", err)
		}
	}
	s.mutate("load_templates", func(*slog.Logger) (Change, bool) {
		s.templates = make([]domain.Template, 0, len(ts))
		for _, t := range ts {
			s.templates = append(s.templates, t.Clone())
		}
		return Change{Op: OpTemplatesReplaced}, true
	})
	l.DebugContext(ctx, "template library loaded", slog.Int("count", len(ts)))
	return nil
}

// SaveTemplateLibrary writes the whole template collection to the repository.
func (s *Store) SaveTemplateLibrary(ctx context.Context) error {
	if s.library == nil {
		return ErrNoTemplateRepository
	}
	ts := s.Templates()
	if err := s.library.SaveTemplates(ctx, ts); err != nil {
		applog.WithOperation(s.log, "save_templates").WarnContext(ctx, "template library save failed", slog.Any("err", err))
		return fmt.Errorf("save template library: %w", err)
	}
	return nil
}

func (s *Store) templateIndexLocked(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.templates {
		if s.templates[i].ID == id {
			return i
		}
	}
	return -1
}
