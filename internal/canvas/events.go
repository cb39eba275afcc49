/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package canvas

import (
	"fmt"
	"sync"

	"mockboard/internal/geom"
)

// EventKind distinguishes pointer events.
type EventKind int

const (
	EventDown EventKind = iota
	EventMove
	EventUp
	EventLeave
)

func (k EventKind) String() string {
	switch k {
	case EventDown:
		return "down"
	case EventMove:
		return "move"
	case EventUp:
		return "up"
	case EventLeave:
		return "leave"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// PointerEvent is a pointer event in canvas units. A nil Pos means the platform
// delivered no coordinates.
type PointerEvent struct {
	Kind EventKind
	Pos  *geom.Pt
}

// Point returns the event position if it is present and finite.
func (e PointerEvent) Point() (geom.Pt, bool) {
	if e.Pos == nil || !e.Pos.Finite() {
		return geom.Pt{}, false
	}
	return *e.Pos, true
}

func at(kind EventKind, x, y float64) PointerEvent {
	return PointerEvent{Kind: kind, Pos: &geom.Pt{X: x, Y: y}}
}

func DownAt(x, y float64) PointerEvent { return at(EventDown, x, y) }
func MoveTo(x, y float64) PointerEvent { return at(EventMove, x, y) }
func UpAt(x, y float64) PointerEvent   { return at(EventUp, x, y) }

// LeaveWindow is the event sent when the pointer leaves the document.
func LeaveWindow() PointerEvent { return PointerEvent{Kind: EventLeave} }

// Handler receives document-level pointer events.
type Handler func(PointerEvent)

// Subscription is a live handler registration. Release is idempotent.
type Subscription interface {
	Release()
}

// EventSource delivers document-level pointer events (move, up, leave) to handlers.
type EventSource interface {
	Subscribe(h Handler) Subscription
}

// Bus is an in-process EventSource. Publish delivers events synchronously.
type Bus struct {
	mu       sync.Mutex
	next     int
	handlers map[int]Handler
}

func NewBus() *Bus { return &Bus{handlers: make(map[int]Handler)} }

func (b *Bus) Subscribe(h Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.handlers == nil {
		b.handlers = make(map[int]Handler)
	}
	id := b.next
	b.next++
	b.handlers[id] = h
	return &busSub{bus: b, id: id}
}

// Publish delivers ev to every handler registered at the time of the call.
func (b *Bus) Publish(ev PointerEvent) {
	b.mu.Lock()
	hs := make([]Handler, 0, len(b.handlers))
	for _, h := range b.handlers {
		hs = append(hs, h)
	}
	b.mu.Unlock()
	for _, h := range hs {
		h(ev)
	}
}

// Listeners reports how many handlers are registered.
func (b *Bus) Listeners() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers)
}

type busSub struct {
	bus  *Bus
	id   int
	once sync.Once
}

func (s *busSub) Release() {
	s.once.Do(func() {
		s.bus.mu.Lock()
		delete(s.bus.handlers, s.id)
		s.bus.mu.Unlock()
	})
}

// Path replays a straight pointer path from (x0,y0) to (x1,y1) in steps moves and
// releases at the end point. Used by scripted gestures.
func (b *Bus) Path(x0, y0, x1, y1 float64, steps int) {
	steps = max(steps, 1)
	for i := 1; i <= steps; i++ {
		f := float64(i) / float64(steps)
		b.Publish(MoveTo(x0+(x1-x0)*f, y0+(y1-y0)*f))
	}
	b.Publish(UpAt(x1, y1))
}
