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
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mockboard/internal/domain"
	"mockboard/internal/editor"
	"mockboard/internal/export"
	"mockboard/internal/storage"
)

func newProjectCmds(app *App) []*cobra.Command {
	return []*cobra.Command{
		newNewCmd(app),
		newShowCmd(app),
		newListCmd(app),
		newValidateCmd(app),
	}
}

func newNewCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: "Create an empty project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := app.setup(ctx); err != nil {
				return writeErr(cmd, err)
			}
			if _, err := app.backend.Load(ctx, app.ProjectID); err == nil {
				return writeErr(cmd, fmt.Errorf("project %q already exists", app.ProjectID))
			} else if !errors.Is(err, editor.ErrNotFound) {
				return writeErr(cmd, err)
			}
			if _, err := app.open(ctx, false); err != nil {
				return writeErr(cmd, err)
			}
			app.docDirty = true
			return writeOut(cmd, app, map[string]string{"id": app.ProjectID}, "Created project "+app.ProjectID)
		},
	}
}

func newShowCmd(app *App) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print screens and elements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.open(cmd.Context(), true)
			if err != nil {
				return writeErr(cmd, err)
			}
			doc := s.Document()
			if !all {
				if active, ok := s.ActiveScreen(); ok {
					doc.Screens = []domain.Screen{active}
					doc.Elements = s.ActiveElements()
				}
			}
			return writeOut(cmd, app, doc, formatDocument(doc))
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Show every screen, not only the active one")
	return cmd
}

func formatDocument(doc domain.Document) string {
	pages, err := export.Pages(doc, nil)
	if err != nil {
		return "(no screens)"
	}
	var b strings.Builder
	for _, pg := range pages {
		marker := " "
		if pg.Screen.IsActive {
			marker = "*"
		}
		fmt.Fprintf(&b, "%s %s  %s (%d elements)\n", marker, pg.Screen.ID, pg.Screen.Name, len(pg.Elements))
		for _, e := range pg.Elements {
			fmt.Fprintf(&b, "    %s  %-14s at %g,%g size %gx%g\n",
				e.ID, e.Type, e.Position.X, e.Position.Y, e.Size.Width, e.Size.Height)
		}
	}
	return b.String()
}

func newListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.setup(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			infos, err := app.backend.List(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			var b strings.Builder
			for _, p := range infos {
				fmt.Fprintf(&b, "%s\t%s\n", p.ID, p.UpdatedAt.Format(time.RFC3339))
			}
			return writeOut(cmd, app, infos, b.String())
		},
	}
}

func newValidateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Check a document against the document schema",
		Long:  "Validates the given JSON file, or the current project when no file is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			if len(args) == 1 {
				b, err := os.ReadFile(args[0])
				if err != nil {
					return writeErr(cmd, err)
				}
				data = b
			} else {
				s, err := app.open(cmd.Context(), true)
				if err != nil {
					return writeErr(cmd, err)
				}
				b, err := json.Marshal(s.Document())
				if err != nil {
					return writeErr(cmd, err)
				}
				data = b
			}
			problems, err := storage.ValidateDocument(data)
			if err != nil {
				return writeErr(cmd, err)
			}
			if len(problems) > 0 {
				_ = writeOut(cmd, app, problems, strings.Join(problems, "\n"))
				return writeErr(cmd, fmt.Errorf("%d schema problem(s)", len(problems)))
			}
			return writeOut(cmd, app, []string{}, "ok")
		},
	}
}
