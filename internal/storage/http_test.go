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
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mockboard/internal/domain"
)

// fakeAPI serves the remote API from a FileStore and checks the bearer token.
func fakeAPI(t *testing.T, token string) *httptest.Server {
	t.Helper()
	backing := newFileStoreForTest(t)
	mux := http.NewServeMux()
	auth := func(h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer "+token {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			h(w, r)
		}
	}
	writeJSON := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}
	mux.HandleFunc("GET /api/projects/{id}/document", auth(func(w http.ResponseWriter, r *http.Request) {
		rec, err := backing.Load(r.Context(), r.PathValue("id"))
		if errors.Is(err, ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, rec)
	}))
	mux.HandleFunc("PUT /api/projects/{id}/document", auth(func(w http.ResponseWriter, r *http.Request) {
		var doc domain.Document
		if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := backing.Save(r.Context(), r.PathValue("id"), doc); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	mux.HandleFunc("GET /api/projects", auth(func(w http.ResponseWriter, r *http.Request) {
		list, _ := backing.List(r.Context())
		writeJSON(w, list)
	}))
	mux.HandleFunc("GET /api/templates", auth(func(w http.ResponseWriter, r *http.Request) {
		ts, _ := backing.LoadTemplates(r.Context())
		writeJSON(w, ts)
	}))
	mux.HandleFunc("PUT /api/templates", auth(func(w http.ResponseWriter, r *http.Request) {
		var ts []domain.Template
		if err := json.NewDecoder(r.Body).Decode(&ts); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		_ = backing.SaveTemplates(r.Context(), ts)
		w.WriteHeader(http.StatusNoContent)
	}))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPStoreContract(t *testing.T) {
	srv := fakeAPI(t, "tok")
	exerciseBackend(t, NewHTTPStore(srv.URL+"/", "tok", time.Second, false), "sales-q1")
}

func TestHTTPStoreUnauthorized(t *testing.T) {
	srv := fakeAPI(t, "tok")
	s := NewHTTPStore(srv.URL, "wrong", time.Second, false)
	_, err := s.Load(context.Background(), "p1")
	var se *statusError
	if !errors.As(err, &se) || se.Code != http.StatusUnauthorized {
		t.Fatalf("err = %v, want 401 statusError", err)
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatalf("401 must not look like not-found")
	}
}

func TestHTTPStoreNullDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "null")
	}))
	defer srv.Close()
	rec, err := NewHTTPStore(srv.URL, "", time.Second, false).Load(context.Background(), "p1")
	if err != nil || rec != nil {
		t.Fatalf("Load = %v, %v; want nil, nil", rec, err)
	}
}

func TestHTTPStoreDocumentPath(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		_, _ = io.WriteString(w, `{"screens":[],"elements":[]}`)
	}))
	defer srv.Close()
	if _, err := NewHTTPStore(srv.URL, "", time.Second, false).Load(context.Background(), "q3.sales_v-2"); err != nil {
		t.Fatalf("load: %v", err)
	}
	if gotPath != "/api/projects/q3.sales_v-2/document" {
		t.Fatalf("path = %q", gotPath)
	}
}

func TestHTTPStoreRejectsBadIDBeforeRequest(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()
	if _, err := NewHTTPStore(srv.URL, "", time.Second, false).Load(context.Background(), "a b"); !errors.Is(err, ErrInvalidProjectID) {
		t.Fatalf("err = %v, want ErrInvalidProjectID", err)
	}
	if called {
		t.Fatalf("request sent for an invalid id")
	}
}

func TestHTTPStoreServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()
	err := NewHTTPStore(srv.URL, "", time.Second, false).Save(context.Background(), "p1", domain.Document{})
	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Fatalf("err = %v", err)
	}
}
