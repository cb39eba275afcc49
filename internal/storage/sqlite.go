/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mockboard/internal/domain"
	"mockboard/internal/editor"
	applog "mockboard/internal/log"
	"mockboard/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

// sqliteSchemaVersion tracks the local SQLite schema.
// Bump this when you perform breaking schema changes and add migrations.
const sqliteSchemaVersion = 2

// language=SQL
// dialect=SQLite
const (
	sqliteUpsertProject = `INSERT INTO projects(project_id, screens, elements, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(project_id) DO UPDATE SET
	screens = excluded.screens,
	elements = excluded.elements,
	updated_at = excluded.updated_at`
	sqliteSelectProject   = `SELECT screens, elements, created_at, updated_at FROM projects WHERE project_id = ?`
	sqliteListProjects    = `SELECT project_id, updated_at FROM projects ORDER BY project_id`
	sqliteSelectTemplates = `SELECT blob FROM templates ORDER BY position, id`
	sqliteInsertTemplate  = `INSERT INTO templates(id, name, position, blob, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`
)

// SQLiteStore keeps projects and the template library in one embedded database.
type SQLiteStore struct {
	db  *sql.DB
	log *slog.Logger
}

// OpenSQLite opens (creating if needed) the database at path, enables WAL mode and
// brings the schema up to date.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "sqlite_open").With(slog.String("path", path))
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		l.Error("create database dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create database dir: %w", err)
	}
	// Use a URI with shared cache and set busy timeout. Convert to forward slashes for SQLite URI.
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection serializes writers for embedded usage.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := ensureMetaAndVersion(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure meta/version failed", slog.Any("err", err))
		return nil, err
	}
	if err := runSQLiteMigrations(ctx, db); err != nil {
		_ = db.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, err
	}
	l.Debug("database ready")
	return &SQLiteStore{db: db, log: applog.WithComponent("storage").With(slog.String("driver", "sqlite"))}, nil
}

func (s *SQLiteStore) Load(ctx context.Context, projectID string) (*editor.Record, error) {
	if err := ValidateProjectID(projectID); err != nil {
		return nil, err
	}
	var screens, elements, created, updated string
	err := s.db.QueryRowContext(ctx, sqliteSelectProject, projectID).Scan(&screens, &elements, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %q: %w", projectID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("select project: %w", err)
	}
	rec := &editor.Record{Screens: json.RawMessage(screens), Elements: json.RawMessage(elements)}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	rec.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return rec, nil
}

func (s *SQLiteStore) Save(ctx context.Context, projectID string, doc domain.Document) error {
	if err := ValidateProjectID(projectID); err != nil {
		return err
	}
	rec, err := editor.RecordFromDocument(doc)
	if err != nil {
		return err
	}
	created, updated := stamps(doc)
	if _, err := s.db.ExecContext(ctx, sqliteUpsertProject, projectID, string(rec.Screens), string(rec.Elements),
		created.Format(time.RFC3339Nano), updated.Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("upsert project: %w", err)
	}
	applog.WithOperation(s.log, "save").DebugContext(ctx, "project stored")
	return nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]ProjectInfo, error) {
	rows, err := s.db.QueryContext(ctx, sqliteListProjects)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []ProjectInfo
	for rows.Next() {
		var id, updated string
		if err := rows.Scan(&id, &updated); err != nil {
			return nil, err
		}
		ts, _ := time.Parse(time.RFC3339Nano, updated)
		out = append(out, ProjectInfo{ID: id, UpdatedAt: ts})
	}
	return out, rows.Err()
}

// LoadTemplates skips blobs that no longer decode.
func (s *SQLiteStore) LoadTemplates(ctx context.Context) ([]domain.Template, error) {
	rows, err := s.db.QueryContext(ctx, sqliteSelectTemplates)
	if err != nil {
		return nil, fmt.Errorf("select templates: %w", err)
	}
	defer func() { _ = rows.Close() }()
	out := []domain.Template{}
	for rows.Next() {
		var blob []byte
		if err := rows.Scan(&blob); err != nil {
			return nil, err
		}
		t, err := decodeTemplate(blob)
		if err != nil {
			s.log.WarnContext(ctx, "skipping unreadable template", slog.Any("err", err))
			continue
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// SaveTemplates replaces the whole library in one transaction.
func (s *SQLiteStore) SaveTemplates(ctx context.Context, ts []domain.Template) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM templates`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear templates: %w", err)
	}
	for i, t := range ts {
		blob, err := encodeTemplate(t)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		if _, err := tx.ExecContext(ctx, sqliteInsertTemplate, t.ID, t.Name, i, blob,
			t.CreatedAt.UTC().Format(time.RFC3339Nano), t.UpdatedAt.UTC().Format(time.RFC3339Nano)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert template %s: %w", t.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit templates: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

// SchemaVersion reports the migration level of the open database.
func (s *SQLiteStore) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	err := s.db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&v)
	return v, err
}

func ensureMetaAndVersion(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var cur int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// fresh database: migrations start from zero
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, 0, ?, ?, ?)`, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		// Update app and timestamp only; keep existing schema for migrations
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// sqliteMigrations[i] brings the schema from version i to i+1.
var sqliteMigrations = [][]string{
	{
		`CREATE TABLE IF NOT EXISTS projects (
			project_id TEXT PRIMARY KEY,
			screens    TEXT NOT NULL,
			elements   TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS templates (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			blob       BLOB NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
	},
	{
		// keep library order stable across reloads
		`ALTER TABLE templates ADD COLUMN position INTEGER NOT NULL DEFAULT 0;`,
		`CREATE INDEX IF NOT EXISTS idx_templates_position ON templates(position);`,
	},
}

// runSQLiteMigrations applies incremental schema migrations up to sqliteSchemaVersion.
func runSQLiteMigrations(ctx context.Context, db *sql.DB) error {
	var cur int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	// Do not downgrade a database written by a newer build.
	for cur < sqliteSchemaVersion && cur < len(sqliteMigrations) {
		next := cur + 1
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", next, err)
		}
		for _, q := range sqliteMigrations[cur] {
			if _, err := tx.ExecContext(ctx, q); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d stmt failed: %w", next, err)
			}
		}
		if _, err := tx.ExecContext(ctx, `UPDATE version SET schema=?, updated_at=? WHERE id=1`, next, time.Now().UTC().Format(time.RFC3339)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d update version: %w", next, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d commit: %w", next, err)
		}
		cur = next
	}
	return nil
}

// stamps returns the document timestamps in UTC, filling zero values with now.
func stamps(doc domain.Document) (created, updated time.Time) {
	now := time.Now().UTC()
	created, updated = doc.CreatedAt.UTC(), doc.UpdatedAt.UTC()
	if doc.CreatedAt.IsZero() {
		created = now
	}
	if doc.UpdatedAt.IsZero() {
		updated = now
	}
	return created, updated
}
