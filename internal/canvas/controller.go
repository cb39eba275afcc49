/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package canvas turns pointer input into document mutations. A Controller runs one
// gesture at a time (drag or resize) as an explicit state machine: entering a gesture
// subscribes to document-level pointer events and every way out releases that
// subscription, including a panic inside a store mutation.
//
// A Controller is driven from a single goroutine (the UI loop) and is not safe for
// concurrent use.
package canvas

import (
	"fmt"
	"log/slog"

	"mockboard/internal/domain"
	"mockboard/internal/editor"
	"mockboard/internal/geom"
	applog "mockboard/internal/log"
)

// State is the gesture state of a Controller.
type State int

const (
	Idle State = iota
	Dragging
	Resizing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	case Resizing:
		return "resizing"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// StyleDialog is opened on double click to edit an element's properties.
type StyleDialog interface {
	Open(elementID string)
}

// gesture is the context captured on pointer-down.
type gesture struct {
	id       string
	start    geom.Pt
	origPos  domain.Position
	origSize domain.Size
	sub      Subscription
}

type Controller struct {
	store  *editor.Store
	src    EventSource
	dialog StyleDialog
	log    *slog.Logger

	state State
	g     *gesture
}

type Option func(*Controller)

func WithStyleDialog(d StyleDialog) Option { return func(c *Controller) { c.dialog = d } }

func WithLogger(l *slog.Logger) Option { return func(c *Controller) { c.log = l } }

// NewController binds a controller to the store it mutates and the source of
// document-level pointer events.
func NewController(store *editor.Store, src EventSource, opts ...Option) *Controller {
	c := &Controller{store: store, src: src}
	for _, o := range opts {
		o(c)
	}
	if c.log == nil {
		c.log = applog.WithComponent("canvas")
	}
	return c
}

// State returns the current gesture state.
func (c *Controller) State() State { return c.state }

// PointerDown starts a drag of element id. It only does so when the controller is
// idle, id is the selected element and the event carries a usable position.
func (c *Controller) PointerDown(id string, ev PointerEvent) bool {
	return c.begin(Dragging, id, ev)
}

// HandleDown starts a resize of element id from its resize handle, under the same
// conditions as PointerDown.
func (c *Controller) HandleDown(id string, ev PointerEvent) bool {
	return c.begin(Resizing, id, ev)
}

// PointerDownAt hit-tests the active screen at the event position and dispatches to
// HandleDown or PointerDown. It returns the id under the pointer, if any, and whether
// a gesture started.
func (c *Controller) PointerDownAt(ev PointerEvent) (string, bool) {
	p, ok := ev.Point()
	if !ok {
		return "", false
	}
	sel, _ := c.store.Selected()
	hit, ok := geom.HitTest(c.store.ActiveElements(), sel, p)
	if !ok {
		return "", false
	}
	if hit.Handle {
		return hit.ID, c.HandleDown(hit.ID, ev)
	}
	return hit.ID, c.PointerDown(hit.ID, ev)
}

// Click selects the element.
func (c *Controller) Click(id string) { c.store.SelectElement(id) }

// DoubleClick opens the style dialog without touching the selection.
func (c *Controller) DoubleClick(id string) {
	if c.dialog == nil {
		c.log.Debug("no style dialog", slog.String("id", id))
		return
	}
	c.dialog.Open(id)
}

// Delete removes the element. A gesture on that element is cancelled first.
func (c *Controller) Delete(id string) {
	if c.g != nil && c.g.id == id {
		c.finish("element deleted")
	}
	c.store.RemoveElement(id)
}

// Cancel aborts the running gesture, keeping whatever was already applied.
func (c *Controller) Cancel() {
	if c.g != nil {
		c.finish("cancelled")
	}
}

func (c *Controller) begin(mode State, id string, ev PointerEvent) bool {
	l := c.log.With(slog.String("mode", mode.String()), slog.String("id", id))
	if c.state != Idle {
		l.Debug("gesture already running", slog.String("state", c.state.String()))
		return false
	}
	if sel, ok := c.store.Selected(); !ok || sel != id {
		l.Debug("element not selected")
		return false
	}
	p, ok := ev.Point()
	if !ok {
		l.Debug("pointer down without usable position")
		return false
	}
	el, ok := c.store.Element(id)
	if !ok {
		l.Debug("element not found")
		return false
	}
	c.g = &gesture{id: id, start: p, origPos: el.Position, origSize: el.Size}
	c.state = mode
	c.g.sub = c.src.Subscribe(c.handle)
	return true
}

// handle runs for every document-level event while a gesture is live. Unless the
// event is a regular move, the gesture ends here. The deferred finish also runs while
// a panic from the store unwinds, so the subscription is released before the panic
// reaches the caller.
func (c *Controller) handle(ev PointerEvent) {
	g := c.g
	if g == nil {
		return
	}
	end := "pointer " + ev.Kind.String()
	defer func() {
		if end != "" {
			c.finish(end)
		}
	}()

	switch ev.Kind {
	case EventUp, EventLeave:
		return
	case EventMove:
	default:
		end = ""
		return
	}
	p, ok := ev.Point()
	if !ok {
		end = "malformed pointer position"
		return
	}
	if _, ok := c.store.Element(g.id); !ok {
		end = "element vanished"
		return
	}
	d := p.Sub(g.start)
	end = "aborted during update"
	switch c.state {
	case Dragging:
		pos := geom.ClampPosition(domain.Position{X: g.origPos.X + d.X, Y: g.origPos.Y + d.Y})
		c.store.UpdateElement(g.id, editor.ElementPatch{Position: &pos})
	case Resizing:
		size := geom.ClampSize(domain.Size{Width: g.origSize.Width + d.X, Height: g.origSize.Height + d.Y})
		c.store.UpdateElement(g.id, editor.ElementPatch{Size: &size})
	}
	end = ""
}

func (c *Controller) finish(reason string) {
	g := c.g
	c.g = nil
	prev := c.state
	c.state = Idle
	if g == nil {
		return
	}
	if g.sub != nil {
		g.sub.Release()
	}
	c.log.Debug("gesture ended", slog.String("mode", prev.String()), slog.String("id", g.id), slog.String("reason", reason))
}
