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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"mockboard/internal/domain"
	"mockboard/internal/editor"
	applog "mockboard/internal/log"
)

const (
	DocumentFileName  = "dashboard.json"
	TemplatesFileName = "templates.json"
	BackupsDirName    = "backups"

	// DefaultKeepBackups is how many timestamped backups survive each save.
	DefaultKeepBackups = 20

	backupStamp = "20060102-150405.000000000"
)

// FileStore keeps one folder per project under Root:
//
//	<root>/<project>/dashboard.json
//	<root>/<project>/backups/dashboard.json.<stamp>.bak
//	<root>/templates.json
//
// Writes are transactional (temp file + rename) and the previous file is copied to a
// timestamped backup first. When the current file is missing or unreadable, Load falls
// back to the latest backup.
type FileStore struct {
	Root string
	Keep int

	mu  sync.Mutex
	now func() time.Time
	log *slog.Logger
}

// NewFileStore creates root if needed.
func NewFileStore(root string) (*FileStore, error) {
	if root == "" {
		return nil, errors.New("root path is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &FileStore{
		Root: root,
		Keep: DefaultKeepBackups,
		now:  time.Now,
		log:  applog.WithComponent("storage").With(slog.String("driver", "file")),
	}, nil
}

func (s *FileStore) projectDir(id string) string { return filepath.Join(s.Root, id) }

func (s *FileStore) Load(ctx context.Context, projectID string) (*editor.Record, error) {
	if err := ValidateProjectID(projectID); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	l := applog.WithOperation(s.log, "load")
	dir := s.projectDir(projectID)
	path := filepath.Join(dir, DocumentFileName)
	bdir := filepath.Join(dir, BackupsDirName)

	b, err := os.ReadFile(path)
	if err == nil {
		var rec *editor.Record
		if rec, err = parseRecord(b); err == nil {
			s.reportSchema(ctx, l, b)
			return rec, nil
		}
	} else if errors.Is(err, os.ErrNotExist) && len(backups(bdir, DocumentFileName)) == 0 {
		return nil, fmt.Errorf("project %q: %w", projectID, ErrNotFound)
	}

	l.WarnContext(ctx, "document unreadable, trying latest backup", slog.Any("err", err))
	bb, berr := latestBackup(bdir, DocumentFileName)
	if berr != nil {
		return nil, fmt.Errorf("open document: %w; backup attempt: %v", err, berr)
	}
	rec, perr := parseRecord(bb)
	if perr != nil {
		return nil, fmt.Errorf("open document: %w; backup attempt: %v", err, perr)
	}
	return rec, nil
}

func (s *FileStore) Save(ctx context.Context, projectID string, doc domain.Document) error {
	if err := ValidateProjectID(projectID); err != nil {
		return err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	data = append(data, '\n')
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.replaceWithBackup(filepath.Join(s.projectDir(projectID), DocumentFileName), data); err != nil {
		return err
	}
	applog.WithOperation(s.log, "save").DebugContext(ctx, "document written", slog.Int("bytes", len(data)))
	return nil
}

// List returns the projects that have a document, sorted by id.
func (s *FileStore) List(context.Context) ([]ProjectInfo, error) {
	ents, err := os.ReadDir(s.Root)
	if err != nil {
		return nil, fmt.Errorf("read storage root: %w", err)
	}
	var out []ProjectInfo
	for _, e := range ents {
		if !e.IsDir() || ValidateProjectID(e.Name()) != nil {
			continue
		}
		fi, err := os.Stat(filepath.Join(s.Root, e.Name(), DocumentFileName))
		if err != nil {
			continue
		}
		out = append(out, ProjectInfo{ID: e.Name(), UpdatedAt: fi.ModTime().UTC()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// LoadTemplates returns an empty library when no templates were saved yet.
func (s *FileStore) LoadTemplates(ctx context.Context) ([]domain.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	path := filepath.Join(s.Root, TemplatesFileName)
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return []domain.Template{}, nil
	}
	var ts []domain.Template
	if err == nil {
		if err = json.Unmarshal(b, &ts); err == nil {
			return ts, nil
		}
	}
	applog.WithOperation(s.log, "load_templates").WarnContext(ctx, "template library unreadable, trying latest backup", slog.Any("err", err))
	bb, berr := latestBackup(filepath.Join(s.Root, BackupsDirName), TemplatesFileName)
	if berr != nil {
		return nil, fmt.Errorf("open templates: %w; backup attempt: %v", err, berr)
	}
	if uerr := json.Unmarshal(bb, &ts); uerr != nil {
		return nil, fmt.Errorf("open templates: %w; backup attempt: %v", err, uerr)
	}
	return ts, nil
}

func (s *FileStore) SaveTemplates(_ context.Context, ts []domain.Template) error {
	if ts == nil {
		ts = []domain.Template{}
	}
	data, err := json.MarshalIndent(ts, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal templates: %w", err)
	}
	data = append(data, '\n')
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replaceWithBackup(filepath.Join(s.Root, TemplatesFileName), data)
}

func (s *FileStore) Close() error { return nil }

// replaceWithBackup copies the current file (if any) into the sibling backups folder,
// then writes data transactionally and prunes old backups.
func (s *FileStore) replaceWithBackup(path string, data []byte) error {
	name := filepath.Base(path)
	bdir := filepath.Join(filepath.Dir(path), BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return fmt.Errorf("ensure backups dir: %w", err)
	}
	if _, statErr := os.Stat(path); statErr == nil {
		bpath := filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", name, s.now().UTC().Format(backupStamp)))
		if err := copyFile(path, bpath); err != nil {
			return fmt.Errorf("backup current %s: %w", name, err)
		}
	}
	if err := writeAtomic(path, data); err != nil {
		return err
	}
	if s.Keep > 0 {
		pruneBackups(bdir, name, s.Keep)
	}
	return nil
}

// reportSchema logs schema violations without failing the load; the store repairs
// what it can.
func (s *FileStore) reportSchema(ctx context.Context, l *slog.Logger, data []byte) {
	problems, err := ValidateDocument(data)
	if err != nil {
		l.DebugContext(ctx, "schema validation skipped", slog.Any("err", err))
		return
	}
	for _, p := range problems {
		l.WarnContext(ctx, "document schema violation", slog.String("problem", p))
	}
}

func latestBackup(dir, name string) ([]byte, error) {
	bs := backups(dir, name)
	if len(bs) == 0 {
		return nil, errors.New("no backups found")
	}
	b, err := os.ReadFile(bs[len(bs)-1])
	if err != nil {
		return nil, fmt.Errorf("read latest backup: %w", err)
	}
	return b, nil
}

// parseRecord accepts a JSON object or a literal null (a document with no content).
func parseRecord(b []byte) (*editor.Record, error) {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil, nil
	}
	if len(b) == 0 || b[0] != '{' {
		return nil, errors.New("document is not a JSON object")
	}
	var rec editor.Record
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return &rec, nil
}
