/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package cli is the mockboard command tree. Every command opens the configured
// storage backend, loads one project into an editor.Store, applies store operations,
// and saves what changed.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"mockboard/internal/config"
	"mockboard/internal/crash"
	"mockboard/internal/editor"
	applog "mockboard/internal/log"
	"mockboard/internal/storage"
	"mockboard/internal/telemetry"
	"mockboard/internal/version"
)

const defaultProjectID = "default"

type App struct {
	ProjectID string
	Driver    string
	JSON      bool

	// Crash is kept current so a deferred crash.Recover sees the open store.
	Crash crash.Session

	cfg     config.AppConfig
	backend storage.Backend
	store   *editor.Store
	tel     *telemetry.Client
	log     *slog.Logger

	docDirty     bool
	libraryDirty bool
	stopTracking []func()
}

func NewRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "mockboard",
		Short:         "Dashboard mockup editor",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  # Place a KPI card on the active screen and move it
  mockboard add kpi --x 40 --y 40
  mockboard move <element-id> --dx 120 --dy 0

  # Work with screens and templates
  mockboard screen add --name "Details"
  mockboard template save "Sales layout"

  # Render a wireframe
  mockboard export pdf board.pdf
`),
	}

	cmd.PersistentFlags().StringVarP(&app.ProjectID, "project", "p", envOr("MBK_PROJECT", defaultProjectID), "Project id")
	cmd.PersistentFlags().StringVar(&app.Driver, "driver", "", "Storage driver (file|sqlite|postgres|http); overrides config")
	cmd.PersistentFlags().BoolVar(&app.JSON, "json", false, "Print JSON instead of text")

	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if err := app.save(cmd.Context()); err != nil {
			return writeErr(cmd, err)
		}
		return nil
	}

	cmd.AddCommand(newVersionCmd(app))
	cmd.AddCommand(newProjectCmds(app)...)
	cmd.AddCommand(newElementCmds(app)...)
	cmd.AddCommand(newScreenCmd(app))
	cmd.AddCommand(newTemplateCmd(app))
	cmd.AddCommand(newTableCmd(app))
	cmd.AddCommand(newExportCmd(app))
	return cmd
}

func newVersionCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeOut(cmd, app, map[string]string{"version": version.String()}, version.String())
		},
	}
}

// setup loads config, logging, telemetry and the backend. It does not touch a project.
func (a *App) setup(ctx context.Context) error {
	if a.backend != nil {
		return nil
	}
	cfg, token, err := config.Load()
	if err != nil {
		return err
	}
	if d := strings.ToLower(strings.TrimSpace(a.Driver)); d != "" {
		cfg.Storage.Driver = d
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	a.cfg = cfg
	applog.Init(applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
	})
	a.log = applog.WithComponent("cli")
	a.tel = telemetry.New(telemetry.FromEnv(cfg.General))
	telemetry.SetDefault(a.tel)
	a.Crash.Dir = cfg.General.CrashDir
	if a.Crash.Dir == "" {
		a.Crash.Dir = filepath.Join(config.DataDir(), "crash")
	}
	a.Crash.Telemetry = a.tel
	a.Crash.ProjectID = a.ProjectID

	b, err := storage.Open(ctx, cfg.Storage, token)
	if err != nil {
		return fmt.Errorf("open %s storage: %w", cfg.Storage.Driver, err)
	}
	a.backend = b
	a.log.Debug("storage opened", slog.String("driver", cfg.Storage.Driver))
	return nil
}

// open prepares a store bound to the project. A project that does not exist yet opens
// as a fresh document unless mustExist is set.
func (a *App) open(ctx context.Context, mustExist bool) (*editor.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	if err := a.setup(ctx); err != nil {
		return nil, err
	}
	if err := storage.ValidateProjectID(a.ProjectID); err != nil {
		return nil, err
	}
	s := editor.New(
		editor.WithAdapter(a.backend),
		editor.WithTemplateRepository(a.backend),
	)
	if err := s.LoadProjectFromDatabase(ctx, a.ProjectID); err != nil {
		if !errors.Is(err, editor.ErrNotFound) || mustExist {
			return nil, err
		}
		a.log.Info("starting new project", slog.String("project", a.ProjectID))
	}
	if err := s.LoadTemplateLibrary(ctx); err != nil {
		return nil, err
	}
	a.stopTracking = append(a.stopTracking,
		s.Subscribe(a.markDirty),
		a.tel.TrackStore(s),
	)
	a.store = s
	a.Crash.Store = s
	return s, nil
}

func (a *App) markDirty(ch editor.Change) {
	switch ch.Op {
	case editor.OpSelectionChanged, editor.OpProjectLoaded:
	case editor.OpTemplateSaved, editor.OpTemplateDeleted, editor.OpTemplatesReplaced:
		a.libraryDirty = true
	default:
		a.docDirty = true
	}
}

// save writes what the command changed.
func (a *App) save(ctx context.Context) error {
	if a.store == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	var errs []error
	if a.docDirty {
		if err := a.store.SaveProjectToDatabase(ctx, a.ProjectID); err != nil {
			errs = append(errs, err)
		} else {
			a.docDirty = false
		}
	}
	if a.libraryDirty {
		if err := a.store.SaveTemplateLibrary(ctx); err != nil {
			errs = append(errs, err)
		} else {
			a.libraryDirty = false
		}
	}
	return errors.Join(errs...)
}

// Close releases the backend and telemetry. Unsaved changes are dropped.
func (a *App) Close() {
	for _, stop := range a.stopTracking {
		stop()
	}
	a.stopTracking = nil
	if a.backend != nil {
		if err := a.backend.Close(); err != nil && a.log != nil {
			a.log.Warn("close storage", slog.Any("err", err))
		}
		a.backend = nil
	}
	if a.tel != nil {
		a.tel.Flush(context.Background())
		a.tel.Close()
		a.tel = nil
	}
	a.store = nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

// writeOut prints v as JSON with --json and text otherwise.
func writeOut(cmd *cobra.Command, app *App, v any, text string) error {
	w := cmd.OutOrStdout()
	if app.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"data": v})
	}
	if text == "" {
		return nil
	}
	_, err := fmt.Fprintln(w, strings.TrimRight(text, "\n"))
	return err
}

func writeErr(cmd *cobra.Command, err error) error {
	_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err.Error())
	return err
}
