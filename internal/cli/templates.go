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
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mockboard/internal/domain"
	"mockboard/internal/templatepack"
)

func newTemplateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "template",
		Aliases: []string{"templates"},
		Short:   "Template library commands",
	}
	cmd.AddCommand(newTemplateSaveCmd(app))
	cmd.AddCommand(newTemplateLoadCmd(app))
	cmd.AddCommand(newTemplateNewCmd(app))
	cmd.AddCommand(newTemplateListCmd(app))
	cmd.AddCommand(newTemplateDeleteCmd(app))
	cmd.AddCommand(newTemplateExportCmd(app))
	cmd.AddCommand(newTemplateImportCmd(app))
	return cmd
}

type templateInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Screens   int       `json:"screens"`
	Elements  int       `json:"elements"`
	CreatedAt time.Time `json:"createdAt"`
}

func infoOf(t domain.Template) templateInfo {
	return templateInfo{ID: t.ID, Name: t.Name, Screens: len(t.Screens), Elements: len(t.Elements), CreatedAt: t.CreatedAt}
}

func newTemplateSaveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "save [name]",
		Short: "Save the current document as a template",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.open(cmd.Context(), true)
			if err != nil {
				return writeErr(cmd, err)
			}
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			t, _ := s.Template(s.SaveTemplate(name))
			return writeOut(cmd, app, infoOf(t), fmt.Sprintf("%s  %s", t.ID, t.Name))
		},
	}
}

func newTemplateLoadCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "load <template-id>",
		Short: "Replace the current document with a copy of a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.open(cmd.Context(), false)
			if err != nil {
				return writeErr(cmd, err)
			}
			t, ok := s.Template(args[0])
			if !ok {
				return writeErr(cmd, fmt.Errorf("template %s not found", args[0]))
			}
			s.LoadTemplate(t.ID)
			return writeOut(cmd, app, infoOf(t), "Loaded template "+t.Name)
		},
	}
}

func newTemplateNewCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: "Reset the current document to a single empty screen",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.open(cmd.Context(), false)
			if err != nil {
				return writeErr(cmd, err)
			}
			s.CreateNewTemplate()
			return writeOut(cmd, app, s.Document(), "Started a blank document")
		},
	}
}

func newTemplateListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.open(cmd.Context(), false)
			if err != nil {
				return writeErr(cmd, err)
			}
			ts := s.Templates()
			infos := make([]templateInfo, len(ts))
			var b strings.Builder
			for i, t := range ts {
				infos[i] = infoOf(t)
				fmt.Fprintf(&b, "%s  %s  (%d screens, %d elements)\n", t.ID, t.Name, len(t.Screens), len(t.Elements))
			}
			return writeOut(cmd, app, infos, b.String())
		},
	}
}

func newTemplateDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <template-id>",
		Short: "Delete a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.open(cmd.Context(), false)
			if err != nil {
				return writeErr(cmd, err)
			}
			if _, ok := s.Template(args[0]); !ok {
				return writeErr(cmd, fmt.Errorf("template %s not found", args[0]))
			}
			s.DeleteTemplate(args[0])
			return writeOut(cmd, app, map[string]string{"removed": args[0]}, "Deleted template "+args[0])
		},
	}
}

func newTemplateExportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "export <pack.zip> [template-id ...]",
		Short: "Write templates to a template pack",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.open(cmd.Context(), false)
			if err != nil {
				return writeErr(cmd, err)
			}
			ts := s.Templates()
			if len(args) > 1 {
				ts = ts[:0]
				for _, id := range args[1:] {
					t, ok := s.Template(id)
					if !ok {
						return writeErr(cmd, fmt.Errorf("template %s not found", id))
					}
					ts = append(ts, t)
				}
			}
			if err := templatepack.ExportFile(args[0], ts); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"path": args[0], "templates": len(ts)},
				fmt.Sprintf("Exported %d template(s) to %s", len(ts), args[0]))
		},
	}
}

func newTemplateImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import <pack.zip>",
		Short: "Add the templates of a template pack",
		Long:  "Templates whose id is already in the library are skipped.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.open(cmd.Context(), false)
			if err != nil {
				return writeErr(cmd, err)
			}
			n, err := templatepack.Install(s, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]int{"added": n}, fmt.Sprintf("Imported %d template(s)", n))
		},
	}
}
