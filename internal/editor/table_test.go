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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mockboard/internal/domain"
)

func tableOf(t *testing.T, el domain.Element) ([]any, []any) {
	t.Helper()
	cols, ok := el.Properties["columns"].([]any)
	require.True(t, ok, "columns is %T", el.Properties["columns"])
	rows, ok := el.Properties["rows"].([]any)
	require.True(t, ok, "rows is %T", el.Properties["rows"])
	return cols, rows
}

func TestTableRows(t *testing.T) {
	s := newStore(t)
	id, _ := s.AddElement(domain.SimpleTable, domain.Position{})

	s.AddTableRow(id)
	el, _ := s.Element(id)
	_, rows := tableOf(t, el)
	require.Len(t, rows, 3)
	assert.Equal(t, []any{"", "", ""}, rows[2])

	s.RemoveTableRow(id, 0)
	s.RemoveTableRow(id, 0)
	el, _ = s.Element(id)
	_, rows = tableOf(t, el)
	require.Len(t, rows, 1)

	s.RemoveTableRow(id, 0)
	el, _ = s.Element(id)
	_, rows = tableOf(t, el)
	assert.Len(t, rows, 1, "the last row is kept")

	s.RemoveTableRow(id, 7)
	el, _ = s.Element(id)
	_, rows = tableOf(t, el)
	assert.Len(t, rows, 1)
}

func TestTableColumns(t *testing.T) {
	s := newStore(t)
	id, _ := s.AddElement(domain.SimpleTable, domain.Position{})

	s.AddTableColumn(id, "Owner")
	s.AddTableColumn(id, "")
	el, _ := s.Element(id)
	cols, rows := tableOf(t, el)
	assert.Equal(t, []any{"Name", "Value", "Status", "Owner", "Column 5"}, cols)
	for _, r := range rows {
		assert.Len(t, r, 5)
	}

	s.RemoveTableColumn(id, 1)
	el, _ = s.Element(id)
	cols, rows = tableOf(t, el)
	assert.Equal(t, []any{"Name", "Status", "Owner", "Column 5"}, cols)
	assert.Equal(t, []any{"Item 1", "Active", "", ""}, rows[0])

	for i := 0; i < 10; i++ {
		s.RemoveTableColumn(id, 0)
	}
	el, _ = s.Element(id)
	cols, rows = tableOf(t, el)
	assert.Equal(t, []any{"Column 5"}, cols, "the last column is kept")
	assert.Equal(t, []any{""}, rows[0])
}

func TestTableOpsIgnoreOtherElements(t *testing.T) {
	s := newStore(t)
	id, _ := s.AddElement(domain.Button, domain.Position{})
	before, _ := s.Element(id)

	s.AddTableRow(id)
	s.AddTableColumn(id, "x")
	s.RemoveTableRow("missing", 0)

	after, _ := s.Element(id)
	assert.Equal(t, before, after)
}

func TestTableOpsAcceptDecodedShapes(t *testing.T) {
	s := newStore(t)
	id, _ := s.AddElement(domain.SimpleTable, domain.Position{})
	s.UpdateElementProperties(id, domain.Properties{
		"columns": []string{"A", "B"},
		"rows":    [][]any{{"1", "2"}},
	})

	s.AddTableRow(id)
	el, _ := s.Element(id)
	cols, rows := tableOf(t, el)
	assert.Equal(t, []any{"A", "B"}, cols)
	assert.Equal(t, []any{[]any{"1", "2"}, []any{"", ""}}, rows)
}
