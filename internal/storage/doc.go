/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package storage provides the persistence backends behind editor.Adapter: a folder
// of JSON documents with transactional writes and timestamped backups, an embedded
// SQLite database, a PostgreSQL database and a remote HTTP API.
// Every backend also stores the template library.
package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"mockboard/internal/editor"
)

// ErrNotFound is editor.ErrNotFound, so callers can test either.
var ErrNotFound = editor.ErrNotFound

// ErrInvalidProjectID is returned for ids that are empty or not path-safe.
var ErrInvalidProjectID = errors.New("invalid project id")

// ProjectInfo is a listing entry.
type ProjectInfo struct {
	ID        string    `json:"id"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Backend is what the composition root needs from a storage driver.
type Backend interface {
	editor.Adapter
	editor.TemplateRepository
	List(ctx context.Context) ([]ProjectInfo, error)
	Close() error
}

var projectIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

// ValidateProjectID accepts ids usable as a folder name and a URL path segment.
func ValidateProjectID(id string) error {
	if !projectIDPattern.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidProjectID, id)
	}
	return nil
}
