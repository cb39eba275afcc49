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
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"mockboard/internal/domain"
	"mockboard/internal/editor"
	applog "mockboard/internal/log"
)

//go:embed migrations/postgres/*.sql
var pgMigrationsFS embed.FS

// dialect=PostgreSQL
const (
	pgUpsertProject = `INSERT INTO projects(project_id, screens, elements, created_at, updated_at)
VALUES ($1, $2::jsonb, $3::jsonb, $4, $5)
ON CONFLICT (project_id) DO UPDATE SET
	screens = EXCLUDED.screens,
	elements = EXCLUDED.elements,
	updated_at = EXCLUDED.updated_at`
	pgSelectProject   = `SELECT screens::text, elements::text, created_at, updated_at FROM projects WHERE project_id = $1`
	pgListProjects    = `SELECT project_id, updated_at FROM projects ORDER BY project_id`
	pgSelectTemplates = `SELECT doc::text FROM templates ORDER BY position, id`
	pgInsertTemplate  = `INSERT INTO templates(id, name, position, doc, created_at, updated_at) VALUES ($1, $2, $3, $4::jsonb, $5, $6)`
)

// PostgresStore keeps projects and the template library in PostgreSQL through the
// pgx database/sql driver. Documents are stored as JSONB.
type PostgresStore struct {
	db  *sql.DB
	log *slog.Logger
}

// OpenPostgres connects, pings and applies the embedded migrations.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	pctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	s := &PostgresStore{db: db, log: applog.WithComponent("storage").With(slog.String("driver", "postgres"))}
	if err := s.migrate(pctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) Load(ctx context.Context, projectID string) (*editor.Record, error) {
	if err := ValidateProjectID(projectID); err != nil {
		return nil, err
	}
	var screens, elements string
	rec := &editor.Record{}
	err := s.db.QueryRowContext(ctx, pgSelectProject, projectID).Scan(&screens, &elements, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %q: %w", projectID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("select project: %w", err)
	}
	rec.Screens = json.RawMessage(screens)
	rec.Elements = json.RawMessage(elements)
	return rec, nil
}

func (s *PostgresStore) Save(ctx context.Context, projectID string, doc domain.Document) error {
	if err := ValidateProjectID(projectID); err != nil {
		return err
	}
	rec, err := editor.RecordFromDocument(doc)
	if err != nil {
		return err
	}
	created, updated := stamps(doc)
	if _, err := s.db.ExecContext(ctx, pgUpsertProject, projectID, string(rec.Screens), string(rec.Elements), created, updated); err != nil {
		return fmt.Errorf("upsert project: %w", err)
	}
	applog.WithOperation(s.log, "save").DebugContext(ctx, "project stored")
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]ProjectInfo, error) {
	rows, err := s.db.QueryContext(ctx, pgListProjects)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []ProjectInfo
	for rows.Next() {
		var p ProjectInfo
		if err := rows.Scan(&p.ID, &p.UpdatedAt); err != nil {
			return nil, err
		}
		p.UpdatedAt = p.UpdatedAt.UTC()
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) LoadTemplates(ctx context.Context) ([]domain.Template, error) {
	rows, err := s.db.QueryContext(ctx, pgSelectTemplates)
	if err != nil {
		return nil, fmt.Errorf("select templates: %w", err)
	}
	defer func() { _ = rows.Close() }()
	out := []domain.Template{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var t domain.Template
		if err := json.Unmarshal([]byte(raw), &t); err != nil {
			s.log.WarnContext(ctx, "skipping unreadable template", slog.Any("err", err))
			continue
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// SaveTemplates replaces the whole library in one transaction.
func (s *PostgresStore) SaveTemplates(ctx context.Context, ts []domain.Template) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM templates`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear templates: %w", err)
	}
	for i, t := range ts {
		doc, err := json.Marshal(t)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("marshal template %s: %w", t.ID, err)
		}
		if _, err := tx.ExecContext(ctx, pgInsertTemplate, t.ID, t.Name, i, string(doc), t.CreatedAt.UTC(), t.UpdatedAt.UTC()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert template %s: %w", t.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit templates: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error { return s.db.Close() }

// migrate applies the embedded migrations in file-name order, recording each one in
// schema_migrations.
func (s *PostgresStore) migrate(ctx context.Context) error {
	entries, err := pgMigrationsFS.ReadDir("migrations/postgres")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	// dialect=PostgreSQL
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version BIGINT PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}

	applied := map[int64]bool{}
	rows, err := s.db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return fmt.Errorf("select schema_migrations: %w", err)
	}
	for rows.Next() {
		var v int64
		if err := rows.Scan(&v); err != nil {
			_ = rows.Close()
			return err
		}
		applied[v] = true
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	l := applog.WithOperation(s.log, "migrate")
	for _, fname := range files {
		v, err := parseMigrationVersion(fname)
		if err != nil {
			return err
		}
		if applied[v] {
			continue
		}
		b, err := pgMigrationsFS.ReadFile(path.Join("migrations/postgres", fname))
		if err != nil {
			return err
		}
		if strings.TrimSpace(string(b)) == "" {
			continue
		}
		l.Info("applying migration", slog.String("file", fname))
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin %s: %w", fname, err)
		}
		if _, err := tx.ExecContext(ctx, string(b)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", fname, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations(version, name) VALUES ($1, $2)`, v, fname); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", fname, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", fname, err)
		}
	}
	return nil
}

func parseMigrationVersion(name string) (int64, error) {
	base := path.Base(name)
	prefix, _, _ := strings.Cut(base, "_")
	v, err := strconv.ParseInt(prefix, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse version from %s: %w", name, err)
	}
	return v, nil
}
