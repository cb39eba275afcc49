/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"mockboard/internal/canvas"
	"mockboard/internal/domain"
	"mockboard/internal/editor"
	"mockboard/internal/geom"
)

// gestureSteps is how many pointer moves a scripted drag is split into.
const gestureSteps = 8

func newElementCmds(app *App) []*cobra.Command {
	return []*cobra.Command{
		newAddCmd(app),
		newMoveCmd(app),
		newResizeCmd(app),
		newPropsCmd(app),
		newStyleCmd(app),
		newRemoveCmd(app),
		newKindsCmd(app),
	}
}

func newAddCmd(app *App) *cobra.Command {
	var x, y float64
	cmd := &cobra.Command{
		Use:   "add <kind>",
		Short: "Place a new element on the active screen",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.open(cmd.Context(), false)
			if err != nil {
				return writeErr(cmd, err)
			}
			kind := domain.ElementType(strings.ToLower(strings.TrimSpace(args[0])))
			if !kind.Known() {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: %q is not a known element kind; using generic defaults\n", kind)
			}
			if !(geom.Pt{X: x, Y: y}).Finite() {
				return writeErr(cmd, fmt.Errorf("position must be finite"))
			}
			id, ok := s.AddElement(kind, geom.ClampPosition(domain.Position{X: x, Y: y}))
			if !ok {
				return writeErr(cmd, fmt.Errorf("no active screen"))
			}
			e, _ := s.Element(id)
			return writeOut(cmd, app, e, id)
		},
	}
	cmd.Flags().Float64Var(&x, "x", 100, "Left edge (negative values clamp to 0)")
	cmd.Flags().Float64Var(&y, "y", 100, "Top edge (negative values clamp to 0)")
	return cmd
}

func newKindsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List element kinds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds := domain.Kinds()
			names := make([]string, len(kinds))
			for i, k := range kinds {
				names[i] = string(k)
			}
			return writeOut(cmd, app, names, strings.Join(names, "\n"))
		},
	}
}

// delta resolves an absolute target (abs, set when the flag was given) or a relative
// offset against the current value.
func delta(cmd *cobra.Command, absFlag string, abs, rel, cur float64) float64 {
	if cmd.Flags().Changed(absFlag) {
		return abs - cur
	}
	return rel
}

func newMoveCmd(app *App) *cobra.Command {
	var x, y, dx, dy float64
	cmd := &cobra.Command{
		Use:   "move <element-id>",
		Short: "Drag an element to a new position",
		Long:  "Replays a pointer drag, so the result is clamped the same way as on the canvas.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.open(cmd.Context(), true)
			if err != nil {
				return writeErr(cmd, err)
			}
			e, err := element(s, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			from := geom.Bounds(e).Min()
			to := geom.Pt{
				X: from.X + delta(cmd, "x", x, dx, e.Position.X),
				Y: from.Y + delta(cmd, "y", y, dy, e.Position.Y),
			}
			if err := drag(s, e.ID, from, to, false); err != nil {
				return writeErr(cmd, err)
			}
			e, _ = s.Element(e.ID)
			return writeOut(cmd, app, e, fmt.Sprintf("%s at %g,%g", e.ID, e.Position.X, e.Position.Y))
		},
	}
	cmd.Flags().Float64Var(&x, "x", 0, "Target left edge")
	cmd.Flags().Float64Var(&y, "y", 0, "Target top edge")
	cmd.Flags().Float64Var(&dx, "dx", 0, "Horizontal offset")
	cmd.Flags().Float64Var(&dy, "dy", 0, "Vertical offset")
	return cmd
}

func newResizeCmd(app *App) *cobra.Command {
	var w, h, dw, dh float64
	cmd := &cobra.Command{
		Use:   "resize <element-id>",
		Short: "Drag an element's resize handle",
		Long:  "Replays a drag of the bottom-right handle; sizes never go below the minimum.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.open(cmd.Context(), true)
			if err != nil {
				return writeErr(cmd, err)
			}
			e, err := element(s, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			from := geom.Bounds(e).Max()
			to := geom.Pt{
				X: from.X + delta(cmd, "width", w, dw, e.Size.Width),
				Y: from.Y + delta(cmd, "height", h, dh, e.Size.Height),
			}
			if err := drag(s, e.ID, from, to, true); err != nil {
				return writeErr(cmd, err)
			}
			e, _ = s.Element(e.ID)
			return writeOut(cmd, app, e, fmt.Sprintf("%s size %gx%g", e.ID, e.Size.Width, e.Size.Height))
		},
	}
	cmd.Flags().Float64Var(&w, "width", 0, "Target width")
	cmd.Flags().Float64Var(&h, "height", 0, "Target height")
	cmd.Flags().Float64Var(&dw, "dw", 0, "Width change")
	cmd.Flags().Float64Var(&dh, "dh", 0, "Height change")
	return cmd
}

// drag selects id and replays a pointer gesture from one point to another.
func drag(s *editor.Store, id string, from, to geom.Pt, resize bool) error {
	bus := canvas.NewBus()
	c := canvas.NewController(s, bus)
	c.Click(id)
	down := canvas.DownAt(from.X, from.Y)
	var started bool
	if resize {
		started = c.HandleDown(id, down)
	} else {
		started = c.PointerDown(id, down)
	}
	if !started {
		return fmt.Errorf("could not start gesture on %s", id)
	}
	bus.Path(from.X, from.Y, to.X, to.Y, gestureSteps)
	if c.State() != canvas.Idle || bus.Listeners() != 0 {
		c.Cancel()
		return fmt.Errorf("gesture on %s did not finish", id)
	}
	return nil
}

func newPropsCmd(app *App) *cobra.Command {
	var raw string
	cmd := &cobra.Command{
		Use:   "props <element-id> [key=value ...]",
		Short: "Merge properties into an element",
		Long: strings.TrimSpace(`
Values are parsed as JSON when possible and kept as strings otherwise.
Dotted keys address nested objects: chart.color=#ff0000.
Without assignments the current properties are printed.`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.open(cmd.Context(), true)
			if err != nil {
				return writeErr(cmd, err)
			}
			e, err := element(s, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			patch := domain.Properties{}
			if raw != "" {
				if err := json.Unmarshal([]byte(raw), &patch); err != nil {
					return writeErr(cmd, fmt.Errorf("--set-json: %w", err))
				}
			}
			for _, kv := range args[1:] {
				if err := assign(patch, kv); err != nil {
					return writeErr(cmd, err)
				}
			}
			if len(patch) > 0 {
				s.UpdateElementProperties(e.ID, patch)
				e, _ = s.Element(e.ID)
			}
			return printProps(cmd, app, e)
		},
	}
	cmd.Flags().StringVar(&raw, "set-json", "", "JSON object merged into the properties")
	return cmd
}

// assign parses key=value into patch, creating nested maps for dotted keys.
func assign(patch domain.Properties, kv string) error {
	key, val, ok := strings.Cut(kv, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return fmt.Errorf("expected key=value, got %q", kv)
	}
	var v any
	if err := json.Unmarshal([]byte(val), &v); err != nil {
		v = val
	}
	parts := strings.Split(key, ".")
	m := map[string]any(patch)
	for _, p := range parts[:len(parts)-1] {
		next, ok := m[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[p] = next
		}
		m = next
	}
	m[parts[len(parts)-1]] = v
	return nil
}

func printProps(cmd *cobra.Command, app *App, e domain.Element) error {
	b, err := json.MarshalIndent(e.Properties, "", "  ")
	if err != nil {
		return writeErr(cmd, err)
	}
	return writeOut(cmd, app, e.Properties, string(b))
}

// propsDialog is the terminal stand-in for the style dialog: it prints the
// properties of the element it is opened for.
type propsDialog struct {
	store *editor.Store
	out   io.Writer
	json  bool
	err   error
}

func (d *propsDialog) Open(id string) {
	e, ok := d.store.Element(id)
	if !ok {
		d.err = fmt.Errorf("element %s not found", id)
		return
	}
	var v any = e.Properties
	if d.json {
		v = map[string]any{"data": map[string]any{"id": e.ID, "type": e.Type, "properties": e.Properties}}
	} else {
		_, _ = fmt.Fprintf(d.out, "%s (%s)\n", e.ID, e.Type)
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		d.err = err
		return
	}
	_, d.err = fmt.Fprintln(d.out, string(b))
}

func newStyleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "style <element-id>",
		Short: "Open the style dialog for an element",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.open(cmd.Context(), true)
			if err != nil {
				return writeErr(cmd, err)
			}
			if _, err := element(s, args[0]); err != nil {
				return writeErr(cmd, err)
			}
			d := &propsDialog{store: s, out: cmd.OutOrStdout(), json: app.JSON}
			canvas.NewController(s, canvas.NewBus(), canvas.WithStyleDialog(d)).DoubleClick(args[0])
			if d.err != nil {
				return writeErr(cmd, d.err)
			}
			return nil
		},
	}
}

func newRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <element-id>",
		Aliases: []string{"rm"},
		Short:   "Delete an element",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.open(cmd.Context(), true)
			if err != nil {
				return writeErr(cmd, err)
			}
			e, err := element(s, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			canvas.NewController(s, canvas.NewBus()).Delete(e.ID)
			return writeOut(cmd, app, map[string]string{"removed": e.ID}, "Removed "+e.ID)
		},
	}
}

func element(s *editor.Store, id string) (domain.Element, error) {
	e, ok := s.Element(id)
	if !ok {
		return domain.Element{}, fmt.Errorf("element %s not found", id)
	}
	return e, nil
}
