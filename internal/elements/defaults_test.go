/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package elements

import (
	"testing"

	"mockboard/internal/domain"
)

func TestButtonDefaults(t *testing.T) {
	d := DefaultsFor(domain.Button)
	if d.Size != (domain.Size{Width: 120, Height: 40}) {
		t.Fatalf("button size = %+v", d.Size)
	}
	if d.Properties["label"] != "Button" {
		t.Fatalf("button label = %v", d.Properties["label"])
	}
}

func TestEveryKindHasDefaultsAboveMinimum(t *testing.T) {
	for _, k := range Kinds() {
		if _, ok := catalog[k]; !ok {
			t.Errorf("%s missing from catalog", k)
			continue
		}
		d := DefaultsFor(k)
		if d.Size.Width < domain.MinWidth || d.Size.Height < domain.MinHeight {
			t.Errorf("%s default size %+v below minimum", k, d.Size)
		}
		if d.Properties == nil {
			t.Errorf("%s has nil properties", k)
		}
	}
}

func TestUnknownKindFallsBack(t *testing.T) {
	d := DefaultsFor("hologram")
	if d.Size != fallbackSize {
		t.Fatalf("fallback size = %+v", d.Size)
	}
	if d.Properties == nil || len(d.Properties) != 0 {
		t.Fatalf("fallback properties = %v", d.Properties)
	}
}

func TestDefaultsAreFreshPerCall(t *testing.T) {
	a := DefaultsFor(domain.SimpleTable)
	b := DefaultsFor(domain.SimpleTable)
	a.Properties["columns"].([]any)[0] = "Changed"
	if b.Properties["columns"].([]any)[0] != "Name" {
		t.Fatalf("defaults share nested state between calls")
	}
}
