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
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mockboard/internal/domain"
	"mockboard/internal/editor"
	"mockboard/internal/testutil"
)

func TestSaveThenLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	mem := testutil.NewMemoryAdapter()
	src := newStore(t, editor.WithAdapter(mem))
	id, _ := src.AddElement(domain.LineChart, domain.Position{X: 12, Y: 34})
	src.UpdateElementProperties(id, domain.Properties{"title": "Revenue"})
	src.AddScreen()
	src.AddElement(domain.SimpleTable, domain.Position{X: 1, Y: 2})
	require.NoError(t, src.SaveProjectToDatabase(ctx, "p1"))

	dst := newStore(t, editor.WithAdapter(mem))
	dst.SelectElement("something")
	require.NoError(t, dst.LoadProjectFromDatabase(ctx, "p1"))

	want, _ := json.Marshal(src.Document().Elements)
	got, _ := json.Marshal(dst.Document().Elements)
	assert.JSONEq(t, string(want), string(got))
	assert.Equal(t, src.Screens(), dst.Screens())
	_, selected := dst.Selected()
	assert.False(t, selected)
}

func TestLoadMissingProjectLeavesStateUnchanged(t *testing.T) {
	mem := testutil.NewMemoryAdapter()
	s := newStore(t, editor.WithAdapter(mem))
	s.AddElement(domain.Button, domain.Position{})
	before := s.Document()

	err := s.LoadProjectFromDatabase(context.Background(), "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, editor.ErrNotFound)
	assert.Equal(t, before, s.Document())
}

func TestPersistenceFailuresAreWrapped(t *testing.T) {
	mem := testutil.NewMemoryAdapter()
	s := newStore(t, editor.WithAdapter(mem))
	s.AddElement(domain.Button, domain.Position{})
	before := s.Document()

	mem.LoadErr = errors.New("connection reset")
	err := s.LoadProjectFromDatabase(context.Background(), "p1")
	assert.ErrorIs(t, err, mem.LoadErr)
	assert.Contains(t, err.Error(), `"p1"`)
	assert.Equal(t, before, s.Document())

	mem.SaveErr = errors.New("read-only")
	assert.ErrorIs(t, s.SaveProjectToDatabase(context.Background(), "p1"), mem.SaveErr)
	assert.Equal(t, before, s.Document())
}

func TestPersistenceWithoutAdapter(t *testing.T) {
	s := newStore(t)
	assert.ErrorIs(t, s.LoadProjectFromDatabase(context.Background(), "p"), editor.ErrNoAdapter)
	assert.ErrorIs(t, s.SaveProjectToDatabase(context.Background(), "p"), editor.ErrNoAdapter)
}

func TestLoadTolerance(t *testing.T) {
	tests := []struct {
		name     string
		screens  string
		elements string
		check    func(t *testing.T, s *editor.Store)
	}{
		{
			name: "missing everything",
			check: func(t *testing.T, s *editor.Store) {
				require.Len(t, s.Screens(), 1)
				assert.True(t, s.Screens()[0].IsActive)
				assert.Empty(t, s.Elements())
			},
		},
		{
			name:     "screens not an array",
			screens:  `{"id":"s1"}`,
			elements: `[]`,
			check: func(t *testing.T, s *editor.Store) {
				require.Len(t, s.Screens(), 1)
				assert.Equal(t, "Screen 1", s.Screens()[0].Name)
			},
		},
		{
			name:    "empty screens",
			screens: `[]`,
			check: func(t *testing.T, s *editor.Store) {
				require.Len(t, s.Screens(), 1)
				assert.True(t, s.Screens()[0].IsActive)
			},
		},
		{
			name:     "elements not an array",
			screens:  `[{"id":"s1","name":"Main","isActive":true}]`,
			elements: `"oops"`,
			check: func(t *testing.T, s *editor.Store) {
				assert.Equal(t, "Main", s.Screens()[0].Name)
				assert.Empty(t, s.Elements())
			},
		},
		{
			name:     "malformed elements are skipped",
			screens:  `[{"id":"s1","name":"Main","isActive":true}]`,
			elements: `[42, {"id":"e1","type":"button","position":{"x":1,"y":2},"size":{"width":120,"height":40},"screenId":"s1","properties":{"label":"Go"}}, "x"]`,
			check: func(t *testing.T, s *editor.Store) {
				els := s.Elements()
				require.Len(t, els, 1)
				assert.Equal(t, "e1", els[0].ID)
				assert.Equal(t, "Go", els[0].Properties["label"])
			},
		},
		{
			name:     "no active screen activates the first",
			screens:  `[{"id":"s1","name":"A"},{"id":"s2","name":"B"}]`,
			elements: `[]`,
			check: func(t *testing.T, s *editor.Store) {
				assert.Equal(t, "s1", activeScreen(t, s).ID)
				assert.Equal(t, 1, countActive(s.Screens()))
			},
		},
		{
			name:     "first active wins",
			screens:  `[{"id":"s1","name":"A"},{"id":"s2","name":"B","isActive":true},{"id":"s3","name":"C","isActive":true}]`,
			elements: `[]`,
			check: func(t *testing.T, s *editor.Store) {
				assert.Equal(t, "s2", activeScreen(t, s).ID)
				assert.Equal(t, 1, countActive(s.Screens()))
			},
		},
		{
			name:     "orphans dropped and geometry repaired",
			screens:  `[{"id":"s1","name":"A","isActive":true}]`,
			elements: `[{"id":"e1","type":"kpi","position":{"x":-5,"y":3},"size":{"width":10,"height":5},"screenId":"s1"},{"id":"e2","type":"kpi","screenId":"gone"}]`,
			check: func(t *testing.T, s *editor.Store) {
				els := s.Elements()
				require.Len(t, els, 1)
				assert.Equal(t, domain.Position{X: 0, Y: 3}, els[0].Position)
				assert.Equal(t, domain.Size{Width: domain.MinWidth, Height: domain.MinHeight}, els[0].Size)
				assert.NotNil(t, els[0].Properties)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := testutil.NewMemoryAdapter()
			mem.PutRaw("p", tt.screens, tt.elements)
			s := newStore(t, editor.WithAdapter(mem))
			require.NoError(t, s.LoadProjectFromDatabase(context.Background(), "p"))
			tt.check(t, s)
		})
	}
}

func TestLoadNilRecordUsesDefaults(t *testing.T) {
	mem := testutil.NewMemoryAdapter()
	mem.Put("p", nil)
	s := newStore(t, editor.WithAdapter(mem))
	s.AddElement(domain.Button, domain.Position{})

	require.NoError(t, s.LoadProjectFromDatabase(context.Background(), "p"))
	require.Len(t, s.Screens(), 1)
	assert.Empty(t, s.Elements())
}

func TestLoadNotifiesSubscribers(t *testing.T) {
	mem := testutil.NewMemoryAdapter()
	mem.PutRaw("p", `[{"id":"s1","name":"A","isActive":true}]`, `[]`)
	s := newStore(t, editor.WithAdapter(mem))
	var ops []editor.Op
	s.Subscribe(func(c editor.Change) { ops = append(ops, c.Op) })

	require.NoError(t, s.LoadProjectFromDatabase(context.Background(), "p"))
	assert.Equal(t, []editor.Op{editor.OpProjectLoaded}, ops)
}
