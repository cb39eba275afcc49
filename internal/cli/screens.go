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

	"mockboard/internal/domain"
	"mockboard/internal/editor"
)

func newScreenCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "screen",
		Short: "Screen commands",
	}
	cmd.AddCommand(newScreenListCmd(app))
	cmd.AddCommand(newScreenAddCmd(app))
	cmd.AddCommand(newScreenSwitchCmd(app))
	cmd.AddCommand(newScreenRenameCmd(app))
	cmd.AddCommand(newScreenDeleteCmd(app))
	return cmd
}

func formatScreens(screens []domain.Screen) string {
	var b strings.Builder
	for _, sc := range screens {
		marker := " "
		if sc.IsActive {
			marker = "*"
		}
		fmt.Fprintf(&b, "%s %s  %s\n", marker, sc.ID, sc.Name)
	}
	return b.String()
}

func newScreenListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List screens; the active one is marked with *",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.open(cmd.Context(), true)
			if err != nil {
				return writeErr(cmd, err)
			}
			screens := s.Screens()
			return writeOut(cmd, app, screens, formatScreens(screens))
		},
	}
}

func newScreenAddCmd(app *App) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Append a screen and make it active",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.open(cmd.Context(), false)
			if err != nil {
				return writeErr(cmd, err)
			}
			id := s.AddScreen()
			if strings.TrimSpace(name) != "" {
				s.RenameScreen(id, name)
			}
			sc, _ := s.ActiveScreen()
			return writeOut(cmd, app, sc, fmt.Sprintf("%s  %s", sc.ID, sc.Name))
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Screen name (default: Screen N)")
	return cmd
}

func newScreenSwitchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "switch <screen-id>",
		Short: "Make a screen the active one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.open(cmd.Context(), true)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := screenExists(s, args[0]); err != nil {
				return writeErr(cmd, err)
			}
			s.SwitchScreen(args[0])
			sc, _ := s.ActiveScreen()
			return writeOut(cmd, app, sc, "Active screen: "+sc.Name)
		},
	}
}

func newScreenRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <screen-id> <name>",
		Short: "Rename a screen",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.open(cmd.Context(), true)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := screenExists(s, args[0]); err != nil {
				return writeErr(cmd, err)
			}
			if strings.TrimSpace(args[1]) == "" {
				return writeErr(cmd, fmt.Errorf("screen name must not be blank"))
			}
			s.RenameScreen(args[0], args[1])
			return writeOut(cmd, app, s.Screens(), formatScreens(s.Screens()))
		},
	}
}

func newScreenDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <screen-id>",
		Short: "Delete a screen and every element on it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.open(cmd.Context(), true)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := screenExists(s, args[0]); err != nil {
				return writeErr(cmd, err)
			}
			if len(s.Screens()) == 1 {
				return writeErr(cmd, fmt.Errorf("cannot delete the last screen"))
			}
			dropped := len(s.ElementsOnScreen(args[0]))
			s.DeleteScreen(args[0])
			return writeOut(cmd, app, map[string]any{"removed": args[0], "elements": dropped},
				fmt.Sprintf("Deleted screen %s and %d element(s)", args[0], dropped))
		},
	}
}

func screenExists(s *editor.Store, id string) error {
	for _, sc := range s.Screens() {
		if sc.ID == id {
			return nil
		}
	}
	return fmt.Errorf("screen %s not found", id)
}
