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
	"log/slog"
	"math"
	"strings"

	"mockboard/internal/domain"
)

// normalize repairs a document coming from outside the store (a persisted payload or
// a template) so the store invariants hold again:
//   - at least one screen, each with an id and a name;
//   - exactly one active screen, the first active one winning, else the first screen;
//   - every element has an id, resolves to a screen, has a non-nil property bag,
//     a non-negative position and at least the minimum size.
//
// Elements owned by unknown screens are dropped. Inputs are not modified.
func normalize(screens []domain.Screen, els []domain.Element, newID func() string, l *slog.Logger) ([]domain.Screen, []domain.Element) {
	outS := make([]domain.Screen, 0, len(screens))
	seen := make(map[string]bool, len(screens))
	for _, sc := range screens {
		if sc.ID == "" || seen[sc.ID] {
			sc.ID = newID()
		}
		seen[sc.ID] = true
		if strings.TrimSpace(sc.Name) == "" {
			sc.Name = "Untitled screen"
		}
		outS = append(outS, sc)
	}
	if len(outS) == 0 {
		outS = append(outS, domain.Screen{ID: newID(), Name: "Screen 1", IsActive: true})
	}
	active := -1
	for i := range outS {
		if outS[i].IsActive && active < 0 {
			active = i
		}
		outS[i].IsActive = false
	}
	if active < 0 {
		active = 0
	}
	outS[active].IsActive = true

	outE := make([]domain.Element, 0, len(els))
	ids := make(map[string]bool, len(els))
	dropped := 0
	for _, e := range els {
		if !seen[e.ScreenID] {
			dropped++
			continue
		}
		e = e.Clone()
		if e.ID == "" || ids[e.ID] {
			e.ID = newID()
		}
		ids[e.ID] = true
		e.Position.X = nonNegative(e.Position.X)
		e.Position.Y = nonNegative(e.Position.Y)
		e.Size.Width = atLeast(e.Size.Width, domain.MinWidth)
		e.Size.Height = atLeast(e.Size.Height, domain.MinHeight)
		outE = append(outE, e)
	}
	if dropped > 0 {
		l.Warn("dropped elements owned by unknown screens", slog.Int("count", dropped))
	}
	return outS, outE
}

func nonNegative(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}

func atLeast(v, floor float64) float64 {
	if math.IsNaN(v) || v < floor {
		return floor
	}
	return v
}
