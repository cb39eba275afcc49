/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package export renders wireframes of a dashboard document. Every element is drawn as
// a labelled box at its canvas position, one page (PDF) or one image (PNG) per screen.
package export

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"mockboard/internal/domain"
	"mockboard/internal/geom"
)

// Options controls both exporters.
//
//nolint:revive // keep options grouped and explicit for clarity
type Options struct {
	Screens  []string // screen ids; empty means all screens in document order
	DPI      int      // PNG only; canvas units are CSS pixels at 96 dpi
	PageSize string   // PDF only: "A4", "Letter", ... or "fit" to size pages to the content
	Margin   float64  // canvas units around the content
	Title    string   // PDF document title
}

const (
	defaultDPI    = 96
	defaultMargin = 24
	labelPad      = 4
)

var (
	ErrNoScreens     = errors.New("document has no screens")
	ErrUnknownScreen = errors.New("unknown screen")
)

// Page is one screen together with the elements placed on it.
type Page struct {
	Screen   domain.Screen
	Elements []domain.Element
}

// Extent is the content area of the page, anchored at the origin.
func (p Page) Extent() geom.Rect { return geom.Extent(p.Elements) }

// Pages groups doc by screen. Elements keep their document order, which is paint order.
func Pages(doc domain.Document, screenIDs []string) ([]Page, error) {
	if len(doc.Screens) == 0 {
		return nil, ErrNoScreens
	}
	byID := make(map[string]int, len(doc.Screens))
	all := make([]Page, len(doc.Screens))
	for i, s := range doc.Screens {
		byID[s.ID] = i
		all[i].Screen = s
	}
	for _, e := range doc.Elements {
		if i, ok := byID[e.ScreenID]; ok {
			all[i].Elements = append(all[i].Elements, e.Clone())
		}
	}
	if len(screenIDs) == 0 {
		return all, nil
	}
	out := make([]Page, 0, len(screenIDs))
	for _, id := range screenIDs {
		i, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownScreen, id)
		}
		out = append(out, all[i])
	}
	return out, nil
}

// Label is the caption drawn inside an element's box: its kind, followed by its title
// or text when it has one.
func Label(e domain.Element) string {
	for _, key := range []string{"title", "text", "label", "placeholder"} {
		if s, ok := e.Properties[key].(string); ok && strings.TrimSpace(s) != "" {
			return string(e.Type) + ": " + strings.TrimSpace(s)
		}
	}
	return string(e.Type)
}

func (o Options) margin() float64 {
	if o.Margin > 0 {
		return o.Margin
	}
	return defaultMargin
}

func (o Options) dpi() int {
	if o.DPI > 0 {
		return o.DPI
	}
	return defaultDPI
}

var unsafeChars = regexp.MustCompile(`[^a-z0-9]+`)

// slug turns a screen name into a file name fragment.
func slug(name string) string {
	s := strings.Trim(unsafeChars.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if s == "" {
		return "screen"
	}
	return s
}
