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
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mockboard/internal/domain"
	"mockboard/internal/editor"
	applog "mockboard/internal/log"
)

// HTTPStore talks to a remote mockboard API:
//
//	GET/PUT {base}/api/projects/{id}/document
//	GET     {base}/api/projects
//	GET/PUT {base}/api/templates
//
// A 404 maps to ErrNotFound. Requests carry the bearer token when one is set.
type HTTPStore struct {
	BaseURL string
	Token   string // bearer token
	client  *http.Client
	log     *slog.Logger
}

// NewHTTPStore creates a client. baseURL may include a trailing slash; it will be normalized.
func NewHTTPStore(baseURL, token string, timeout time.Duration, tlsInsecure bool) *HTTPStore {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	c := &http.Client{Timeout: timeout}
	if tlsInsecure {
		tr := http.DefaultTransport.(*http.Transport).Clone()
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in for self-signed dev servers
		c.Transport = tr
	}
	return &HTTPStore{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		client:  c,
		log:     applog.WithComponent("storage").With(slog.String("driver", "http")),
	}
}

// statusError is a non-2xx response.
type statusError struct {
	Method, Path string
	Status       string
	Code         int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("server %s %s: %s", e.Method, e.Path, e.Status)
}

// do sends body (JSON-encoded unless nil) and returns the response payload.
func (s *HTTPStore) do(ctx context.Context, method, p string, body any) ([]byte, error) {
	u, err := url.Parse(s.BaseURL + p)
	if err != nil {
		return nil, err
	}
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s %s: %w", method, u.Path, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &statusError{Method: method, Path: u.Path, Status: resp.Status, Code: resp.StatusCode}
	}
	applog.WithOperation(s.log, "request").DebugContext(ctx, "ok", slog.String("method", method), slog.String("path", u.Path), slog.Int("bytes", len(data)))
	return data, nil
}

func documentPath(projectID string) string {
	return "/api/projects/" + url.PathEscape(projectID) + "/document"
}

func (s *HTTPStore) Load(ctx context.Context, projectID string) (*editor.Record, error) {
	if err := ValidateProjectID(projectID); err != nil {
		return nil, err
	}
	data, err := s.do(ctx, http.MethodGet, documentPath(projectID), nil)
	if err != nil {
		return nil, err
	}
	rec, err := parseRecord(data)
	if err != nil {
		return nil, fmt.Errorf("project %q: %w", projectID, err)
	}
	return rec, nil
}

func (s *HTTPStore) Save(ctx context.Context, projectID string, doc domain.Document) error {
	if err := ValidateProjectID(projectID); err != nil {
		return err
	}
	_, err := s.do(ctx, http.MethodPut, documentPath(projectID), doc)
	return err
}

func (s *HTTPStore) List(ctx context.Context) ([]ProjectInfo, error) {
	data, err := s.do(ctx, http.MethodGet, "/api/projects", nil)
	if err != nil {
		return nil, err
	}
	var list []ProjectInfo
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("decode project list: %w", err)
	}
	return list, nil
}

// LoadTemplates treats a missing library as empty.
func (s *HTTPStore) LoadTemplates(ctx context.Context) ([]domain.Template, error) {
	data, err := s.do(ctx, http.MethodGet, "/api/templates", nil)
	if err != nil {
		return nil, err
	}
	ts := []domain.Template{}
	if len(bytes.TrimSpace(data)) == 0 {
		return ts, nil
	}
	if err := json.Unmarshal(data, &ts); err != nil {
		return nil, fmt.Errorf("decode templates: %w", err)
	}
	return ts, nil
}

func (s *HTTPStore) SaveTemplates(ctx context.Context, ts []domain.Template) error {
	if ts == nil {
		ts = []domain.Template{}
	}
	_, err := s.do(ctx, http.MethodPut, "/api/templates", ts)
	return err
}

func (s *HTTPStore) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
