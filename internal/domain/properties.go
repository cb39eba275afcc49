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

// Properties is the open, kind-dependent configuration bag of an element.
// Values are JSON-compatible: nil, bool, numbers, string, []any, map[string]any.
// Typed slices produced by Go callers ([]string, []float64, [][]any) are tolerated
// and copied as well.
type Properties map[string]any

// Clone returns a deep copy. A nil bag clones to an empty one.
func (p Properties) Clone() Properties {
	out := make(Properties, len(p))
	for k, v := range p {
		out[k] = CloneValue(v)
	}
	return out
}

// Merge deep-merges patch into p and returns p. Nested maps are merged key by key;
// every other value in patch replaces the existing one. Keys absent from patch keep
// their current values. Patch values are copied so p never aliases the caller's data.
func (p Properties) Merge(patch Properties) Properties {
	if p == nil {
		p = Properties{}
	}
	for k, v := range patch {
		p[k] = mergeValue(p[k], v)
	}
	return p
}

func mergeValue(cur, next any) any {
	nm, ok := asMap(next)
	if !ok {
		return CloneValue(next)
	}
	cm, ok := asMap(cur)
	if !ok {
		return CloneValue(nm)
	}
	merged := make(map[string]any, len(cm)+len(nm))
	for k, v := range cm {
		merged[k] = CloneValue(v)
	}
	for k, v := range nm {
		merged[k] = mergeValue(merged[k], v)
	}
	return merged
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Properties:
		return map[string]any(m), true
	default:
		return nil, false
	}
}

// CloneValue deep-copies a JSON-like value.
func CloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = CloneValue(e)
		}
		return out
	case Properties:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = CloneValue(e)
		}
		return out
	case [][]any:
		out := make([][]any, len(t))
		for i, row := range t {
			out[i] = CloneValue(row).([]any)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	case []float64:
		return append([]float64(nil), t...)
	case []int:
		return append([]int(nil), t...)
	case []map[string]any:
		out := make([]map[string]any, len(t))
		for i, e := range t {
			out[i] = CloneValue(e).(map[string]any)
		}
		return out
	default:
		return v
	}
}
