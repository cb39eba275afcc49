/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package domain

import "time"

// This file defines the document model of a dashboard mockup: screens, the elements
// placed on them, and named template snapshots of the whole document.
// Everything serializes to the JSON shape exchanged with persistence backends.

// ElementType identifies the kind of a placed element. The set is closed; see Kinds.
type ElementType string

const (
	Header        ElementType = "header"
	Button        ElementType = "button"
	Filter        ElementType = "filter"
	KPI           ElementType = "kpi"
	ColumnChart   ElementType = "column-chart"
	BarChart      ElementType = "bar-chart"
	LineChart     ElementType = "line-chart"
	AreaChart     ElementType = "area-chart"
	ComboChart    ElementType = "combo-chart"
	PieChart      ElementType = "pie-chart"
	DonutChart    ElementType = "donut-chart"
	SimpleTable   ElementType = "simple-table"
	Treemap       ElementType = "treemap"
	Heatmap       ElementType = "heatmap"
	Image         ElementType = "image"
	Textbox       ElementType = "textbox"
	Histogram     ElementType = "histogram"
	ScatterPlot   ElementType = "scatter-plot"
	Waterfall     ElementType = "waterfall"
	Shapes        ElementType = "shapes"
	QuadrantChart ElementType = "quadrant-chart"
	Gauge         ElementType = "gauge"
	FunnelChart   ElementType = "funnel-chart"
	DatePicker    ElementType = "date-picker"
	Divider       ElementType = "divider"
)

var kinds = []ElementType{
	Header, Button, Filter, KPI, ColumnChart, BarChart, LineChart, AreaChart, ComboChart,
	PieChart, DonutChart, SimpleTable, Treemap, Heatmap, Image, Textbox, Histogram,
	ScatterPlot, Waterfall, Shapes, QuadrantChart, Gauge, FunnelChart, DatePicker, Divider,
}

// Kinds returns every known element type in catalog order.
func Kinds() []ElementType { return append([]ElementType(nil), kinds...) }

// Known reports whether t belongs to the element catalog.
func (t ElementType) Known() bool {
	for _, k := range kinds {
		if k == t {
			return true
		}
	}
	return false
}

// Minimum element dimensions. Gestures never produce anything smaller.
const (
	MinWidth  = 50
	MinHeight = 30
)

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Element is one placed item on a screen.
type Element struct {
	ID         string      `json:"id"`
	Type       ElementType `json:"type"`
	Position   Position    `json:"position"`
	Size       Size        `json:"size"`
	ScreenID   string      `json:"screenId"`
	Properties Properties  `json:"properties"`
}

// Clone returns a deep copy of the element.
func (e Element) Clone() Element {
	e.Properties = e.Properties.Clone()
	return e
}

// Screen is a named canvas page. Exactly one screen of a document is active.
type Screen struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"isActive"`
}

// Template is an immutable, timestamped snapshot of screens and elements.
type Template struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Screens   []Screen  `json:"screens"`
	Elements  []Element `json:"elements"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a deep copy of the template.
func (t Template) Clone() Template {
	t.Screens = CloneScreens(t.Screens)
	t.Elements = CloneElements(t.Elements)
	return t
}

// Document is the persisted shape of a project.
type Document struct {
	Screens   []Screen  `json:"screens"`
	Elements  []Element `json:"elements"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	d.Screens = CloneScreens(d.Screens)
	d.Elements = CloneElements(d.Elements)
	return d
}

// CloneScreens copies a screen slice. A nil input yields an empty, non-nil slice.
func CloneScreens(in []Screen) []Screen {
	out := make([]Screen, len(in))
	copy(out, in)
	return out
}

// CloneElements deep-copies an element slice. A nil input yields an empty, non-nil slice.
func CloneElements(in []Element) []Element {
	out := make([]Element, len(in))
	for i, e := range in {
		out[i] = e.Clone()
	}
	return out
}
