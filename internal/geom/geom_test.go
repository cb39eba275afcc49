/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package geom

import (
	"math"
	"testing"

	"mockboard/internal/domain"
)

func el(id string, x, y, w, h float64) domain.Element {
	return domain.Element{ID: id, Position: domain.Position{X: x, Y: y}, Size: domain.Size{Width: w, Height: h}}
}

func TestRectBasics(t *testing.T) {
	r := R(10, 20, 30, 40)
	if got := r.Max(); got != (Pt{40, 60}) {
		t.Fatalf("max = %+v", got)
	}
	if !r.Contains(Pt{10, 20}) || !r.Contains(Pt{40, 60}) || r.Contains(Pt{41, 60}) {
		t.Fatalf("contains edges wrong")
	}
	if got := r.Inset(5, 5); got != R(15, 25, 20, 30) {
		t.Fatalf("inset = %+v", got)
	}
	if got := r.Union(R(0, 0, 5, 5)); got != R(0, 0, 40, 60) {
		t.Fatalf("union = %+v", got)
	}
}

func TestExtent(t *testing.T) {
	got := Extent([]domain.Element{el("a", 10, 10, 50, 30), el("b", 100, 5, 60, 200)})
	if got != R(0, 0, 160, 205) {
		t.Fatalf("extent = %+v", got)
	}
	if Extent(nil) != (Rect{}) {
		t.Fatalf("empty extent should be zero")
	}
}

func TestHitTestTopMostFirst(t *testing.T) {
	els := []domain.Element{el("under", 0, 0, 100, 100), el("over", 50, 50, 100, 100)}
	tests := []struct {
		name     string
		selected string
		p        Pt
		want     Hit
		ok       bool
	}{
		{"overlap picks later element", "", Pt{60, 60}, Hit{ID: "over"}, true},
		{"only lower element", "", Pt{10, 10}, Hit{ID: "under"}, true},
		{"miss", "", Pt{300, 300}, Hit{}, false},
		{"handle of selected wins", "under", Pt{101, 99}, Hit{ID: "under", Handle: true}, true},
		{"no handle when unselected", "", Pt{103, 103}, Hit{ID: "over"}, true},
		{"nan point", "", Pt{math.NaN(), 1}, Hit{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := HitTest(els, tt.selected, tt.p)
			if ok != tt.ok || got != tt.want {
				t.Fatalf("HitTest = %+v,%v want %+v,%v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	if got := ClampPosition(domain.Position{X: -40, Y: 7}); got != (domain.Position{X: 0, Y: 7}) {
		t.Fatalf("position = %+v", got)
	}
	if got := ClampPosition(domain.Position{X: 1e6, Y: 1e6}); got.X != 1e6 {
		t.Fatalf("no upper bound expected, got %+v", got)
	}
	if got := ClampSize(domain.Size{Width: -880, Height: 10}); got != (domain.Size{Width: 50, Height: 30}) {
		t.Fatalf("size = %+v", got)
	}
}

func TestFinite(t *testing.T) {
	if !(Pt{1, 2}).Finite() || (Pt{math.Inf(1), 0}).Finite() {
		t.Fatalf("finite check wrong")
	}
}
