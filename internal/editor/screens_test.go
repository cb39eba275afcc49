/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package editor_test

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mockboard/internal/domain"
)

func countActive(screens []domain.Screen) int {
	n := 0
	for _, sc := range screens {
		if sc.IsActive {
			n++
		}
	}
	return n
}

func TestAddScreenActivatesNewScreen(t *testing.T) {
	s := newStore(t)
	id := s.AddScreen()

	screens := s.Screens()
	require.Len(t, screens, 2)
	assert.Equal(t, "Screen 2", screens[1].Name)
	assert.Equal(t, id, activeScreen(t, s).ID)
	assert.Equal(t, 1, countActive(screens))
}

func TestAddScreenNamesStayUnique(t *testing.T) {
	s := newStore(t)
	second := s.AddScreen()
	s.AddScreen()
	s.DeleteScreen(second)
	s.AddScreen()

	seen := map[string]bool{}
	for _, sc := range s.Screens() {
		assert.False(t, seen[sc.Name], "duplicate name %q", sc.Name)
		seen[sc.Name] = true
	}
}

func TestSwitchScreen(t *testing.T) {
	s := newStore(t)
	s1 := activeScreen(t, s).ID
	s2 := s.AddScreen()
	s.SwitchScreen(s1)

	s.SwitchScreen(s2)
	for _, sc := range s.Screens() {
		assert.Equal(t, sc.ID == s2, sc.IsActive, sc.Name)
	}

	s.SwitchScreen("missing")
	assert.Equal(t, s2, activeScreen(t, s).ID)
}

func TestRenameScreen(t *testing.T) {
	s := newStore(t)
	id := activeScreen(t, s).ID

	s.RenameScreen(id, "  Overview ")
	assert.Equal(t, "Overview", activeScreen(t, s).Name)

	s.RenameScreen(id, "   ")
	assert.Equal(t, "Overview", activeScreen(t, s).Name)
}

func TestDeleteLastScreenIsRefused(t *testing.T) {
	s := newStore(t)
	id := activeScreen(t, s).ID
	el, _ := s.AddElement(domain.Button, domain.Position{})
	before := s.Document()

	s.DeleteScreen(id)

	after := s.Document()
	assert.Equal(t, before.Screens, after.Screens)
	assert.Equal(t, before.Elements, after.Elements)
	_, ok := s.Element(el)
	assert.True(t, ok)
}

func TestDeleteActiveScreenCascades(t *testing.T) {
	s := newStore(t)
	s1 := activeScreen(t, s).ID
	s2 := s.AddScreen()
	s.SwitchScreen(s1)
	e, _ := s.AddElement(domain.Button, domain.Position{})
	s.SwitchScreen(s2)
	keep, _ := s.AddElement(domain.Divider, domain.Position{})
	s.SwitchScreen(s1)
	s.SelectElement(e)

	s.DeleteScreen(s1)

	screens := s.Screens()
	require.Len(t, screens, 1)
	assert.Equal(t, s2, screens[0].ID)
	assert.True(t, screens[0].IsActive)
	_, found := s.Element(e)
	assert.False(t, found, "elements of the deleted screen are removed")
	_, found = s.Element(keep)
	assert.True(t, found)
	_, selected := s.Selected()
	assert.False(t, selected)
}

func TestDeleteInactiveScreenKeepsActive(t *testing.T) {
	s := newStore(t)
	s1 := activeScreen(t, s).ID
	s2 := s.AddScreen()
	s.SwitchScreen(s1)

	s.DeleteScreen(s2)
	assert.Equal(t, s1, activeScreen(t, s).ID)
	assert.Len(t, s.Screens(), 1)
}

func TestExactlyOneActiveScreenUnderRandomOps(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for round := 0; round < 50; round++ {
		s := newStore(t)
		for step := 0; step < 40; step++ {
			screens := s.Screens()
			pick := screens[rng.IntN(len(screens))].ID
			switch rng.IntN(3) {
			case 0:
				s.AddScreen()
			case 1:
				s.SwitchScreen(pick)
			case 2:
				s.DeleteScreen(pick)
			}
			after := s.Screens()
			require.NotEmpty(t, after)
			require.Equal(t, 1, countActive(after), "round %d step %d", round, step)
		}
	}
}
