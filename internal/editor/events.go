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

// Op names a kind of document change.
type Op string

const (
	OpElementAdded      Op = "element_added"
	OpElementUpdated    Op = "element_updated"
	OpPropertiesUpdated Op = "properties_updated"
	OpElementRemoved    Op = "element_removed"
	OpSelectionChanged  Op = "selection_changed"
	OpScreenAdded       Op = "screen_added"
	OpScreenSwitched    Op = "screen_switched"
	OpScreenRenamed     Op = "screen_renamed"
	OpScreenDeleted     Op = "screen_deleted"
	OpTemplateSaved     Op = "template_saved"
	OpTemplateLoaded    Op = "template_loaded"
	OpTemplateDeleted   Op = "template_deleted"
	OpTemplatesReplaced Op = "templates_replaced"
	OpDocumentReset     Op = "document_reset"
	OpProjectLoaded     Op = "project_loaded"
)

// Change describes one applied mutation. ID is the element, screen or template the
// operation targeted, or empty for whole-document changes.
type Change struct {
	Op Op
	ID string
}

// Subscribe registers fn to be called after every state change. Callbacks run on the
// mutating goroutine, after the store lock is released, so they may read the store.
// The returned function unsubscribes; calling it more than once is harmless.
func (s *Store) Subscribe(fn func(Change)) (cancel func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) emit(ch Change) {
	s.subMu.Lock()
	fns := make([]func(Change), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(ch)
	}
}
