/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package editor implements the document store of a dashboard mockup: it owns the
// screens, the elements placed on them, the single selection pointer and the named
// template snapshots, and exposes the mutation API that keeps them consistent.
//
// Every mutation is synchronous. Lookups by an unknown id and refused invariant
// guards (deleting the last screen, the last table row, ...) are silent no-ops that
// are only visible in DEBUG logs. Persistence is explicit: the composition root calls
// LoadProjectFromDatabase / SaveProjectToDatabase, and only those return errors.
//
// Queries return deep copies, so callers can never alias live state.
package editor

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"mockboard/internal/domain"
	"mockboard/internal/elements"
	applog "mockboard/internal/log"
)

// ElementPatch is a shallow patch for UpdateElement. Nil fields are left untouched.
type ElementPatch struct {
	Position *domain.Position
	Size     *domain.Size
	ScreenID *string
}

// Store is the single source of truth for one open document.
// It is safe for concurrent use; persistence I/O never runs under its lock.
type Store struct {
	mu        sync.RWMutex
	screens   []domain.Screen
	elements  []domain.Element
	templates []domain.Template
	selected  string
	createdAt time.Time
	updatedAt time.Time

	adapter Adapter
	library TemplateRepository
	newID   func() string
	now     func() time.Time
	log     *slog.Logger

	subMu   sync.Mutex
	subs    map[int]func(Change)
	nextSub int
}

// Option configures a Store.
type Option func(*Store)

// WithAdapter sets the persistence adapter used by Load/SaveProjectToDatabase.
func WithAdapter(a Adapter) Option { return func(s *Store) { s.adapter = a } }

// WithTemplateRepository sets where the template library is loaded from and saved to.
func WithTemplateRepository(r TemplateRepository) Option { return func(s *Store) { s.library = r } }

func WithLogger(l *slog.Logger) Option { return func(s *Store) { s.log = l } }

// WithIDGenerator replaces uuid.NewString, mostly for deterministic tests.
func WithIDGenerator(f func() string) Option { return func(s *Store) { s.newID = f } }

func WithClock(f func() time.Time) Option { return func(s *Store) { s.now = f } }

// New returns a store holding a fresh document: one active default screen, no elements.
func New(opts ...Option) *Store {
	s := &Store{
		newID: uuid.NewString,
		now:   time.Now,
		subs:  make(map[int]func(Change)),
	}
	for _, o := range opts {
		o(s)
	}
	if s.log == nil {
		s.log = applog.WithComponent("editor")
	}
	s.resetLocked()
	s.createdAt = s.now()
	s.updatedAt = s.createdAt
	return s
}

// mutate runs fn under the write lock and, when fn reports a change, stamps the
// document and notifies subscribers after the lock is released.
func (s *Store) mutate(op string, fn func(l *slog.Logger) (Change, bool)) bool {
	ch, changed := s.apply(applog.WithOperation(s.log, op), fn)
	if changed {
		s.emit(ch)
	}
	return changed
}

// apply runs fn under the write lock and releases it even if fn panics.
func (s *Store) apply(l *slog.Logger, fn func(l *slog.Logger) (Change, bool)) (Change, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, changed := fn(l)
	if changed {
		s.updatedAt = s.now()
	}
	return ch, changed
}

// AddElement places a new element of the given kind on the active screen, using the
// factory defaults for size and properties, and selects it. It reports false when
// there is no active screen.
func (s *Store) AddElement(kind domain.ElementType, pos domain.Position) (string, bool) {
	var id string
	s.mutate("add_element", func(l *slog.Logger) (Change, bool) {
		active := s.activeIndexLocked()
		if active < 0 {
			l.Debug("no active screen", slog.String("type", string(kind)))
			return Change{}, false
		}
		d := elements.DefaultsFor(kind)
		id = s.newID()
		s.elements = append(s.elements, domain.Element{
			ID:         id,
			Type:       kind,
			Position:   pos,
			Size:       d.Size,
			ScreenID:   s.screens[active].ID,
			Properties: d.Properties,
		})
		s.selected = id
		return Change{Op: OpElementAdded, ID: id}, true
	})
	return id, id != ""
}

// UpdateElement shallow-merges patch into the element. Position and size are taken as
// given; clamping is the caller's job. A ScreenID that does not resolve to a screen is
// ignored so elements always stay owned by an existing screen.
func (s *Store) UpdateElement(id string, patch ElementPatch) {
	s.mutate("update_element", func(l *slog.Logger) (Change, bool) {
		i := s.elementIndexLocked(id)
		if i < 0 {
			l.Debug("element not found", slog.String("id", id))
			return Change{}, false
		}
		el := &s.elements[i]
		if patch.Position != nil {
			el.Position = *patch.Position
		}
		if patch.Size != nil {
			el.Size = *patch.Size
		}
		if patch.ScreenID != nil {
			if s.screenIndexLocked(*patch.ScreenID) >= 0 {
				el.ScreenID = *patch.ScreenID
			} else {
				l.Debug("unknown screen in patch", slog.String("id", id), slog.String("screen", *patch.ScreenID))
			}
		}
		return Change{Op: OpElementUpdated, ID: id}, true
	})
}

// UpdateElementProperties deep-merges props into the element's property bag. Keys not
// present in props keep their values.
func (s *Store) UpdateElementProperties(id string, props domain.Properties) {
	s.mutate("update_properties", func(l *slog.Logger) (Change, bool) {
		i := s.elementIndexLocked(id)
		if i < 0 {
			l.Debug("element not found", slog.String("id", id))
			return Change{}, false
		}
		s.elements[i].Properties = s.elements[i].Properties.Merge(props)
		return Change{Op: OpPropertiesUpdated, ID: id}, true
	})
}

// RemoveElement deletes the element and clears the selection if it pointed at it.
func (s *Store) RemoveElement(id string) {
	s.mutate("remove_element", func(l *slog.Logger) (Change, bool) {
		i := s.elementIndexLocked(id)
		if i < 0 {
			l.Debug("element not found", slog.String("id", id))
			return Change{}, false
		}
		s.elements = append(s.elements[:i], s.elements[i+1:]...)
		if s.selected == id {
			s.selected = ""
		}
		return Change{Op: OpElementRemoved, ID: id}, true
	})
}

// SelectElement moves the selection pointer. An empty id clears it. The id is not
// validated; a stale id simply matches nothing.
func (s *Store) SelectElement(id string) {
	s.mutate("select_element", func(*slog.Logger) (Change, bool) {
		if s.selected == id {
			return Change{}, false
		}
		s.selected = id
		return Change{Op: OpSelectionChanged, ID: id}, true
	})
}

// Selected returns the selected element id, if any.
func (s *Store) Selected() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected, s.selected != ""
}

// Element looks up an element by id.
func (s *Store) Element(id string) (domain.Element, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.elementIndexLocked(id)
	if i < 0 {
		return domain.Element{}, false
	}
	return s.elements[i].Clone(), true
}

// Elements returns every element of the document in placement order.
func (s *Store) Elements() []domain.Element {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneElements(s.elements)
}

// ElementsOnScreen returns the elements owned by screenID in placement order.
func (s *Store) ElementsOnScreen(screenID string) []domain.Element {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Element, 0, len(s.elements))
	for _, e := range s.elements {
		if e.ScreenID == screenID {
			out = append(out, e.Clone())
		}
	}
	return out
}

// ActiveElements returns what a renderer should draw: the active screen's elements.
func (s *Store) ActiveElements() []domain.Element {
	scr, ok := s.ActiveScreen()
	if !ok {
		return []domain.Element{}
	}
	return s.ElementsOnScreen(scr.ID)
}

// Document returns a deep copy of the persisted part of the state.
func (s *Store) Document() domain.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.Document{
		Screens:   domain.CloneScreens(s.screens),
		Elements:  domain.CloneElements(s.elements),
		CreatedAt: s.createdAt,
		UpdatedAt: s.updatedAt,
	}
}

func (s *Store) elementIndexLocked(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.elements {
		if s.elements[i].ID == id {
			return i
		}
	}
	return -1
}

// resetLocked replaces the document with a single default screen and no elements.
func (s *Store) resetLocked() {
	s.screens = []domain.Screen{{ID: s.newID(), Name: "Screen 1", IsActive: true}}
	s.elements = []domain.Element{}
	s.selected = ""
}
