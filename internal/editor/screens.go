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
	"fmt"
	"log/slog"
	"strings"

	"mockboard/internal/domain"
)

// AddScreen appends a screen with a generated name and makes it the active one.
func (s *Store) AddScreen() string {
	var id string
	s.mutate("add_screen", func(*slog.Logger) (Change, bool) {
		id = s.newID()
		for i := range s.screens {
			s.screens[i].IsActive = false
		}
		s.screens = append(s.screens, domain.Screen{ID: id, Name: s.nextScreenNameLocked(), IsActive: true})
		return Change{Op: OpScreenAdded, ID: id}, true
	})
	return id
}

// SwitchScreen activates the screen with the given id and deactivates all others.
// An unknown id leaves the current active screen in place.
func (s *Store) SwitchScreen(id string) {
	s.mutate("switch_screen", func(l *slog.Logger) (Change, bool) {
		if s.screenIndexLocked(id) < 0 {
			l.Debug("screen not found", slog.String("id", id))
			return Change{}, false
		}
		for i := range s.screens {
			s.screens[i].IsActive = s.screens[i].ID == id
		}
		return Change{Op: OpScreenSwitched, ID: id}, true
	})
}

// RenameScreen renames in place. Blank names are refused.
func (s *Store) RenameScreen(id, name string) {
	s.mutate("rename_screen", func(l *slog.Logger) (Change, bool) {
		i := s.screenIndexLocked(id)
		if i < 0 {
			l.Debug("screen not found", slog.String("id", id))
			return Change{}, false
		}
		name = strings.TrimSpace(name)
		if name == "" {
			l.Debug("blank screen name refused", slog.String("id", id))
			return Change{}, false
		}
		s.screens[i].Name = name
		return Change{Op: OpScreenRenamed, ID: id}, true
	})
}

// DeleteScreen removes a screen together with every element it owns. The last screen
// cannot be deleted. When the active screen goes, the first remaining one takes over.
func (s *Store) DeleteScreen(id string) {
	s.mutate("delete_screen", func(l *slog.Logger) (Change, bool) {
		i := s.screenIndexLocked(id)
		if i < 0 {
			l.Debug("screen not found", slog.String("id", id))
			return Change{}, false
		}
		if len(s.screens) <= 1 {
			l.Debug("refusing to delete the last screen", slog.String("id", id))
			return Change{}, false
		}
		wasActive := s.screens[i].IsActive
		s.screens = append(s.screens[:i], s.screens[i+1:]...)

		kept := s.elements[:0]
		removed := 0
		for _, e := range s.elements {
			if e.ScreenID == id {
				if e.ID == s.selected {
					s.selected = ""
				}
				removed++
				continue
			}
			kept = append(kept, e)
		}
		s.elements = kept

		if wasActive {
			s.screens[0].IsActive = true
		}
		l.Debug("screen deleted", slog.String("id", id), slog.Int("cascaded", removed))
		return Change{Op: OpScreenDeleted, ID: id}, true
	})
}

// Screens returns the screens in order.
func (s *Store) Screens() []domain.Screen {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneScreens(s.screens)
}

// ActiveScreen returns the active screen.
func (s *Store) ActiveScreen() (domain.Screen, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.activeIndexLocked()
	if i < 0 {
		return domain.Screen{}, false
	}
	return s.screens[i], true
}

func (s *Store) screenIndexLocked(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.screens {
		if s.screens[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) activeIndexLocked() int {
	for i := range s.screens {
		if s.screens[i].IsActive {
			return i
		}
	}
	return -1
}

func (s *Store) nextScreenNameLocked() string {
	taken := make(map[string]bool, len(s.screens))
	for _, sc := range s.screens {
		taken[sc.Name] = true
	}
	for n := len(s.screens) + 1; ; n++ {
		name := fmt.Sprintf("Screen %d", n)
		if !taken[name] {
			return name
		}
	}
}
