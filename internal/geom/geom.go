/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package geom holds the canvas geometry shared by the gesture controller and the
// wireframe exporters: rectangles in canvas units, resize handles and hit testing.
package geom

import (
	"math"

	"mockboard/internal/domain"
)

// HandleSize is the edge length of the square resize handle drawn on the bottom-right
// corner of the selected element.
const HandleSize = 8.0

// Pt is a point in canvas units.
type Pt struct{ X, Y float64 }

// Finite reports whether both coordinates are real numbers.
func (p Pt) Finite() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

func (p Pt) Sub(o Pt) Pt { return Pt{p.X - o.X, p.Y - o.Y} }

// Rect is an axis-aligned rectangle defined by its min corner and size.
type Rect struct {
	X, Y float64
	W, H float64
}

func R(x, y, w, h float64) Rect { return Rect{X: x, Y: y, W: w, H: h} }

// Bounds is the rectangle an element occupies.
func Bounds(e domain.Element) Rect {
	return Rect{X: e.Position.X, Y: e.Position.Y, W: e.Size.Width, H: e.Size.Height}
}

func (r Rect) Min() Pt { return Pt{r.X, r.Y} }
func (r Rect) Max() Pt { return Pt{r.X + r.W, r.Y + r.H} }

func (r Rect) Contains(p Pt) bool {
	return p.X >= r.X && p.Y >= r.Y && p.X <= r.X+r.W && p.Y <= r.Y+r.H
}

// Inset returns a rectangle inset by dx,dy on all sides (negative grows).
func (r Rect) Inset(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W - 2*dx, H: r.H - 2*dy}
}

// Union returns the minimal rect containing both.
func (r Rect) Union(o Rect) Rect {
	minX := math.Min(r.X, o.X)
	minY := math.Min(r.Y, o.Y)
	maxX := math.Max(r.X+r.W, o.X+o.W)
	maxY := math.Max(r.Y+r.H, o.Y+o.H)
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Extent is the union of all element bounds, anchored at the canvas origin.
func Extent(els []domain.Element) Rect {
	r := Rect{}
	for _, e := range els {
		r = r.Union(Bounds(e))
	}
	return r
}

// HandleRect is the resize handle centred on the bottom-right corner of r.
func HandleRect(r Rect) Rect {
	return Rect{X: r.X + r.W - HandleSize/2, Y: r.Y + r.H - HandleSize/2, W: HandleSize, H: HandleSize}
}

// Hit is the result of a hit test.
type Hit struct {
	ID     string
	Handle bool
}

// HitTest returns the top-most element under p. Later elements paint over earlier
// ones. Only the selected element has a resize handle, and its handle wins over any
// element body.
func HitTest(els []domain.Element, selected string, p Pt) (Hit, bool) {
	if !p.Finite() {
		return Hit{}, false
	}
	if selected != "" {
		for _, e := range els {
			if e.ID == selected && HandleRect(Bounds(e)).Contains(p) {
				return Hit{ID: e.ID, Handle: true}, true
			}
		}
	}
	for i := len(els) - 1; i >= 0; i-- {
		if Bounds(els[i]).Contains(p) {
			return Hit{ID: els[i].ID}, true
		}
	}
	return Hit{}, false
}

// ClampPosition keeps a position on the canvas. There is no upper bound.
func ClampPosition(p domain.Position) domain.Position {
	return domain.Position{X: math.Max(0, p.X), Y: math.Max(0, p.Y)}
}

// ClampSize enforces the minimum element size.
func ClampSize(s domain.Size) domain.Size {
	return domain.Size{Width: math.Max(domain.MinWidth, s.Width), Height: math.Max(domain.MinHeight, s.Height)}
}
