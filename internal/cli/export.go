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

	"github.com/spf13/cobra"

	"mockboard/internal/export"
)

func newExportCmd(app *App) *cobra.Command {
	var screens []string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render wireframes of the project's screens",
	}
	cmd.PersistentFlags().StringSliceVar(&screens, "screen", nil, "Screen id to export (repeatable; default all)")

	var pageSize string
	pdf := &cobra.Command{
		Use:   "pdf <out.pdf>",
		Short: "One PDF page per screen",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.open(cmd.Context(), true)
			if err != nil {
				return writeErr(cmd, err)
			}
			pages, err := export.Pages(s.Document(), screens)
			if err != nil {
				return writeErr(cmd, err)
			}
			size := pageSize
			if size == "" {
				size = app.cfg.Export.PageSize
			}
			opt := export.Options{PageSize: size, Title: app.ProjectID}
			if err := export.ScreenPDFFile(args[0], pages, opt); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"path": args[0], "pages": len(pages)},
				fmt.Sprintf("Wrote %d page(s) to %s", len(pages), args[0]))
		},
	}
	pdf.Flags().StringVar(&pageSize, "page-size", "", `Page size such as A4 or Letter, or "fit" (default from config)`)

	var dpi int
	png := &cobra.Command{
		Use:   "png <out-dir>",
		Short: "One PNG image per screen",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.open(cmd.Context(), true)
			if err != nil {
				return writeErr(cmd, err)
			}
			pages, err := export.Pages(s.Document(), screens)
			if err != nil {
				return writeErr(cmd, err)
			}
			d := dpi
			if d <= 0 {
				d = app.cfg.Export.DPI
			}
			files, err := export.ScreenPNGFiles(args[0], pages, export.Options{DPI: d})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, files, strings.Join(files, "\n"))
		},
	}
	png.Flags().IntVar(&dpi, "dpi", 0, "Output density (default from config)")

	cmd.AddCommand(pdf, png)
	return cmd
}
