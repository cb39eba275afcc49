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

// Table operations act on simple-table elements whose properties hold "columns" and
// "rows". A table always keeps at least one row and one column.

// AddTableRow appends an empty row with one cell per column.
func (s *Store) AddTableRow(id string) {
	s.mutateTable("add_table_row", id, func(l *slog.Logger, cols []any, rows [][]any) ([]any, [][]any, bool) {
		row := make([]any, len(cols))
		for i := range row {
			row[i] = ""
		}
		return cols, append(rows, row), true
	})
}

// RemoveTableRow deletes the row at index. The last remaining row is kept.
func (s *Store) RemoveTableRow(id string, index int) {
	s.mutateTable("remove_table_row", id, func(l *slog.Logger, cols []any, rows [][]any) ([]any, [][]any, bool) {
		if index < 0 || index >= len(rows) {
			l.Debug("row out of range", slog.Int("index", index), slog.Int("rows", len(rows)))
			return cols, rows, false
		}
		if len(rows) <= 1 {
			l.Debug("refusing to remove the last row")
			return cols, rows, false
		}
		return cols, append(rows[:index], rows[index+1:]...), true
	})
}

// AddTableColumn appends a column and an empty cell to every row. A blank name
// becomes "Column N".
func (s *Store) AddTableColumn(id, name string) {
	s.mutateTable("add_table_column", id, func(l *slog.Logger, cols []any, rows [][]any) ([]any, [][]any, bool) {
		name = strings.TrimSpace(name)
		if name == "" {
			name = fmt.Sprintf("Column %d", len(cols)+1)
		}
		cols = append(cols, name)
		for i := range rows {
			rows[i] = padRow(rows[i], len(cols)-1)
			rows[i] = append(rows[i], "")
		}
		return cols, rows, true
	})
}

// RemoveTableColumn deletes the column at index from the header and every row. The
// last remaining column is kept.
func (s *Store) RemoveTableColumn(id string, index int) {
	s.mutateTable("remove_table_column", id, func(l *slog.Logger, cols []any, rows [][]any) ([]any, [][]any, bool) {
		if index < 0 || index >= len(cols) {
			l.Debug("column out of range", slog.Int("index", index), slog.Int("columns", len(cols)))
			return cols, rows, false
		}
		if len(cols) <= 1 {
			l.Debug("refusing to remove the last column")
			return cols, rows, false
		}
		cols = append(cols[:index], cols[index+1:]...)
		for i, r := range rows {
			if index < len(r) {
				rows[i] = append(r[:index], r[index+1:]...)
			}
		}
		return cols, rows, true
	})
}

type tableFn func(l *slog.Logger, cols []any, rows [][]any) ([]any, [][]any, bool)

// mutateTable hands fn private copies of the table's columns and rows and writes them
// back when fn reports a change.
func (s *Store) mutateTable(op, id string, fn tableFn) {
	s.mutate(op, func(l *slog.Logger) (Change, bool) {
		i := s.elementIndexLocked(id)
		if i < 0 {
			l.Debug("element not found", slog.String("id", id))
			return Change{}, false
		}
		el := &s.elements[i]
		if el.Type != domain.SimpleTable {
			l.Debug("not a table", slog.String("id", id), slog.String("type", string(el.Type)))
			return Change{}, false
		}
		cols := toCells(el.Properties["columns"])
		rows := toRows(el.Properties["rows"])
		cols, rows, ok := fn(l, cols, rows)
		if !ok {
			return Change{}, false
		}
		if el.Properties == nil {
			el.Properties = domain.Properties{}
		}
		el.Properties["columns"] = cols
		out := make([]any, len(rows))
		for i, r := range rows {
			out[i] = r
		}
		el.Properties["rows"] = out
		return Change{Op: OpPropertiesUpdated, ID: id}, true
	})
}

// toCells copies a header or row value into a fresh []any, accepting the shapes a
// property bag may hold after decoding or a programmatic update.
func toCells(v any) []any {
	switch t := v.(type) {
	case []any:
		return append([]any(nil), t...)
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	default:
		return []any{}
	}
}

func toRows(v any) [][]any {
	switch t := v.(type) {
	case []any:
		out := make([][]any, 0, len(t))
		for _, r := range t {
			out = append(out, toCells(r))
		}
		return out
	case [][]any:
		out := make([][]any, 0, len(t))
		for _, r := range t {
			out = append(out, toCells(r))
		}
		return out
	case [][]string:
		out := make([][]any, 0, len(t))
		for _, r := range t {
			out = append(out, toCells(r))
		}
		return out
	default:
		return [][]any{}
	}
}

func padRow(r []any, n int) []any {
	for len(r) < n {
		r = append(r, "")
	}
	return r
}
