/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package elements is the element factory: it maps an element kind to the size and
// property bag a freshly placed element starts with.
package elements

import "mockboard/internal/domain"

// Defaults is what a new element of a given kind starts with.
type Defaults struct {
	Size       domain.Size
	Properties domain.Properties
}

// Fallback size for kinds outside the catalog.
var fallbackSize = domain.Size{Width: 200, Height: 150}

// DefaultsFor returns the defaults for kind. It is pure and total: unknown kinds get
// the fallback size and an empty property bag. Every call builds a fresh property
// bag, so callers may mutate the result freely.
func DefaultsFor(kind domain.ElementType) Defaults {
	entry, ok := catalog[kind]
	if !ok {
		return Defaults{Size: fallbackSize, Properties: domain.Properties{}}
	}
	props := domain.Properties{}
	if entry.props != nil {
		props = entry.props()
	}
	return Defaults{Size: entry.size, Properties: props}
}

// Kinds lists the catalog in display order.
func Kinds() []domain.ElementType { return domain.Kinds() }

type kindDefaults struct {
	size  domain.Size
	props func() domain.Properties
}

func sz(w, h float64) domain.Size { return domain.Size{Width: w, Height: h} }

var months = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun"}

// series builds a fresh label/value series.
func series(values ...float64) []any {
	out := make([]any, 0, len(values))
	for i, v := range values {
		label := ""
		if i < len(months) {
			label = months[i]
		}
		out = append(out, map[string]any{"label": label, "value": v})
	}
	return out
}

func strs(v ...string) []any {
	out := make([]any, len(v))
	for i, s := range v {
		out[i] = s
	}
	return out
}

var catalog = map[domain.ElementType]kindDefaults{
	domain.Header: {size: sz(400, 60), props: func() domain.Properties {
		return domain.Properties{"text": "Dashboard Title", "fontSize": 24.0, "align": "left", "color": "#1f2937"}
	}},
	domain.Button: {size: sz(120, 40), props: func() domain.Properties {
		return domain.Properties{"label": "Button", "variant": "primary", "color": "#2563eb"}
	}},
	domain.Filter: {size: sz(200, 40), props: func() domain.Properties {
		return domain.Properties{"label": "Filter", "options": strs("All", "Option 1", "Option 2"), "multiSelect": false}
	}},
	domain.KPI: {size: sz(200, 100), props: func() domain.Properties {
		return domain.Properties{"title": "KPI", "value": "1,234", "trend": "up", "delta": "+5%", "color": "#16a34a"}
	}},
	domain.ColumnChart: {size: sz(400, 300), props: chartProps("Column Chart", 30, 45, 28, 60, 52, 70)},
	domain.BarChart:    {size: sz(400, 300), props: chartProps("Bar Chart", 12, 19, 7, 15, 22)},
	domain.LineChart:   {size: sz(400, 300), props: chartProps("Line Chart", 10, 25, 18, 32, 28, 40)},
	domain.AreaChart:   {size: sz(400, 300), props: chartProps("Area Chart", 5, 15, 12, 22, 30, 26)},
	domain.ComboChart: {size: sz(450, 300), props: func() domain.Properties {
		return domain.Properties{
			"title":      "Combo Chart",
			"barData":    series(20, 35, 30, 45, 40),
			"lineData":   series(15, 25, 35, 30, 50),
			"showLegend": true,
		}
	}},
	domain.PieChart: {size: sz(300, 300), props: func() domain.Properties {
		return domain.Properties{"title": "Pie Chart", "data": series(40, 30, 20, 10), "showLabels": true}
	}},
	domain.DonutChart: {size: sz(300, 300), props: func() domain.Properties {
		return domain.Properties{"title": "Donut Chart", "data": series(50, 30, 20), "innerRadius": 0.6}
	}},
	domain.SimpleTable: {size: sz(400, 200), props: func() domain.Properties {
		return domain.Properties{
			"columns": strs("Name", "Value", "Status"),
			"rows": []any{
				strs("Item 1", "100", "Active"),
				strs("Item 2", "200", "Pending"),
			},
			"striped": true,
		}
	}},
	domain.Treemap: {size: sz(400, 300), props: func() domain.Properties {
		return domain.Properties{"title": "Treemap", "data": series(60, 25, 15)}
	}},
	domain.Heatmap: {size: sz(400, 300), props: func() domain.Properties {
		return domain.Properties{
			"title":      "Heatmap",
			"xLabels":    strs("Mon", "Tue", "Wed"),
			"yLabels":    strs("AM", "PM"),
			"values":     []any{[]any{1.0, 3.0, 5.0}, []any{2.0, 4.0, 6.0}},
			"colorScale": "blues",
		}
	}},
	domain.Image: {size: sz(300, 200), props: func() domain.Properties {
		return domain.Properties{"src": "", "alt": "Image", "fit": "cover"}
	}},
	domain.Textbox: {size: sz(300, 100), props: func() domain.Properties {
		return domain.Properties{"text": "Enter text here", "fontSize": 14.0, "align": "left"}
	}},
	domain.Histogram: {size: sz(400, 300), props: func() domain.Properties {
		return domain.Properties{"title": "Histogram", "bins": 10.0, "data": []any{1.0, 2.0, 2.0, 3.0, 3.0, 3.0, 4.0, 4.0, 5.0}}
	}},
	domain.ScatterPlot: {size: sz(400, 300), props: func() domain.Properties {
		return domain.Properties{"title": "Scatter Plot", "points": []any{
			map[string]any{"x": 10.0, "y": 20.0},
			map[string]any{"x": 30.0, "y": 15.0},
			map[string]any{"x": 45.0, "y": 40.0},
		}}
	}},
	domain.Waterfall: {size: sz(450, 300), props: chartProps("Waterfall", 100, -20, 35, -10, 105)},
	domain.Shapes: {size: sz(150, 150), props: func() domain.Properties {
		return domain.Properties{"shape": "rectangle", "fill": "#e5e7eb", "stroke": "#6b7280", "strokeWidth": 1.0}
	}},
	domain.QuadrantChart: {size: sz(400, 400), props: func() domain.Properties {
		return domain.Properties{
			"title":     "Quadrant Chart",
			"quadrants": strs("High/Low", "High/High", "Low/Low", "Low/High"),
			"points":    []any{map[string]any{"x": 0.3, "y": 0.7, "label": "A"}},
		}
	}},
	domain.Gauge: {size: sz(250, 200), props: func() domain.Properties {
		return domain.Properties{"title": "Gauge", "value": 65.0, "min": 0.0, "max": 100.0}
	}},
	domain.FunnelChart: {size: sz(350, 300), props: chartProps("Funnel", 1000, 600, 300, 120)},
	domain.DatePicker: {size: sz(220, 40), props: func() domain.Properties {
		return domain.Properties{"label": "Date range", "mode": "range"}
	}},
	domain.Divider: {size: sz(400, 30), props: func() domain.Properties {
		return domain.Properties{"orientation": "horizontal", "color": "#d1d5db"}
	}},
}

func chartProps(title string, values ...float64) func() domain.Properties {
	return func() domain.Properties {
		return domain.Properties{
			"title":      title,
			"data":       series(values...),
			"showLegend": true,
			"showGrid":   true,
		}
	}
}
