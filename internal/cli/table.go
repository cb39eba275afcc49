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
	"strconv"

	"github.com/spf13/cobra"

	"mockboard/internal/domain"
	"mockboard/internal/editor"
)

func newTableCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Edit rows and columns of a simple-table element",
	}
	cmd.AddCommand(tableCmd(app, "add-row <element-id>", "Append an empty row", 1,
		func(s *editor.Store, id string, _ []string) error {
			s.AddTableRow(id)
			return nil
		}))
	cmd.AddCommand(tableCmd(app, "remove-row <element-id> <index>", "Remove a row (the last row is kept)", 2,
		func(s *editor.Store, id string, rest []string) error {
			i, err := strconv.Atoi(rest[0])
			if err != nil {
				return fmt.Errorf("row index: %w", err)
			}
			s.RemoveTableRow(id, i)
			return nil
		}))
	cmd.AddCommand(tableCmd(app, "add-col <element-id> [name]", "Append a column", 1,
		func(s *editor.Store, id string, rest []string) error {
			name := ""
			if len(rest) > 0 {
				name = rest[0]
			}
			s.AddTableColumn(id, name)
			return nil
		}))
	cmd.AddCommand(tableCmd(app, "remove-col <element-id> <index>", "Remove a column (the last column is kept)", 2,
		func(s *editor.Store, id string, rest []string) error {
			i, err := strconv.Atoi(rest[0])
			if err != nil {
				return fmt.Errorf("column index: %w", err)
			}
			s.RemoveTableColumn(id, i)
			return nil
		}))
	return cmd
}

// tableCmd builds one table subcommand. minArgs counts the element id.
func tableCmd(app *App, use, short string, minArgs int, apply func(*editor.Store, string, []string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.RangeArgs(minArgs, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.open(cmd.Context(), true)
			if err != nil {
				return writeErr(cmd, err)
			}
			e, err := element(s, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if e.Type != domain.SimpleTable {
				return writeErr(cmd, fmt.Errorf("element %s is a %s, not a %s", e.ID, e.Type, domain.SimpleTable))
			}
			if err := apply(s, e.ID, args[1:]); err != nil {
				return writeErr(cmd, err)
			}
			e, _ = s.Element(e.ID)
			table := map[string]any{"columns": e.Properties["columns"], "rows": e.Properties["rows"]}
			b, _ := json.Marshal(table)
			return writeOut(cmd, app, table, string(b))
		},
	}
}
