// Copyright 2026 The Rolesmith Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package http exposes the role workspace over a small JSON API for
// serve mode. The API mirrors the CLI verbs: one in-memory working
// role, merge and remove passes against it, and save to the local
// roles directory.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/rolesmith/rolesmith/internal/audit"
	"github.com/rolesmith/rolesmith/internal/observability/logger"
	"github.com/rolesmith/rolesmith/internal/observability/metrics"
	"github.com/rolesmith/rolesmith/internal/permission"
	"github.com/rolesmith/rolesmith/internal/role"
	"github.com/rolesmith/rolesmith/internal/store"
)

// Handler holds HTTP handlers and dependencies. The working role is
// shared mutable state, so every operation on it runs under mu.
type Handler struct {
	mu      sync.Mutex
	manager *role.Manager
	files   *store.FileStore
	audit   audit.Logger
	metrics *metrics.RoleMetrics
}

// NewHandler creates a new HTTP handler. roleMetrics may be nil when no
// meter is configured.
func NewHandler(manager *role.Manager, files *store.FileStore, auditLogger audit.Logger, roleMetrics *metrics.RoleMetrics) *Handler {
	return &Handler{
		manager: manager,
		files:   files,
		audit:   auditLogger,
		metrics: roleMetrics,
	}
}

// NewRouter creates a new HTTP router
func NewRouter(h *Handler, rateLimiter *RateLimiter) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(RateLimitMiddleware(rateLimiter))
	r.Use(func(handler http.Handler) http.Handler {
		return otelhttp.NewHandler(handler, "http_request",
			otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	})
	r.Use(LoggingMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check
	r.Get("/health", h.HealthCheck)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/role", func(r chi.Router) {
			r.Post("/", h.CreateRole)
			r.Get("/", h.GetRole)
			r.Patch("/", h.UpdateRole)
			r.Post("/load", h.LoadRole)
			r.Post("/merge", h.MergeRole)
			r.Post("/remove", h.RemoveActions)
			r.Post("/save", h.SaveRole)
		})
		r.Get("/roles", h.ListRoles)
	})

	return r
}

// HealthCheck returns the health status
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "rolesmith",
	})
}

type createRoleRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateRole starts a fresh working role, replacing any current one.
func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	var req createRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	h.mu.Lock()
	def := h.manager.Create(req.Name, req.Description)
	h.mu.Unlock()

	h.metrics.RecordOperation(r.Context(), "create", nil)
	h.audit.Log(r.Context(), audit.Event{
		Type:     audit.TypeRoleCreated,
		Resource: def.Name,
	})

	respondJSON(w, http.StatusCreated, def)
}

// GetRole returns the current working role.
func (h *Handler) GetRole(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	def, err := h.manager.Require()
	h.mu.Unlock()
	if err != nil {
		respondError(w, http.StatusNotFound, "no role is currently loaded")
		return
	}
	respondJSON(w, http.StatusOK, def)
}

type updateRoleRequest struct {
	Name             *string  `json:"name,omitempty"`
	Description      *string  `json:"description,omitempty"`
	AssignableScopes []string `json:"assignableScopes,omitempty"`
}

// UpdateRole changes metadata on the current working role.
func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	var req updateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, err := h.manager.Require(); err != nil {
		respondError(w, http.StatusNotFound, "no role is currently loaded")
		return
	}
	if req.Name != nil {
		if *req.Name == "" {
			respondError(w, http.StatusBadRequest, "name must not be empty")
			return
		}
		if _, err := h.manager.SetName(*req.Name); err != nil {
			respondError(w, http.StatusNotFound, "no role is currently loaded")
			return
		}
	}
	if req.Description != nil {
		if _, err := h.manager.SetDescription(*req.Description); err != nil {
			respondError(w, http.StatusNotFound, "no role is currently loaded")
			return
		}
	}
	if req.AssignableScopes != nil {
		if _, err := h.manager.SetScopes(req.AssignableScopes); err != nil {
			respondError(w, http.StatusNotFound, "no role is currently loaded")
			return
		}
	}

	respondJSON(w, http.StatusOK, h.manager.Current())
}

type loadRoleRequest struct {
	Name string `json:"name"`
}

// LoadRole loads a saved role document into the workspace.
func (h *Handler) LoadRole(w http.ResponseWriter, r *http.Request) {
	var req loadRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	def, err := h.files.LoadByName(req.Name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "role not found: "+req.Name)
			return
		}
		slog.ErrorContext(r.Context(), "failed to load role", logger.Error(err), logger.RoleName(req.Name))
		respondError(w, http.StatusInternalServerError, "failed to load role")
		return
	}

	h.mu.Lock()
	h.manager.SetCurrent(def)
	h.mu.Unlock()

	h.audit.Log(r.Context(), audit.Event{
		Type:     audit.TypeRoleLoaded,
		Resource: def.Name,
	})

	respondJSON(w, http.StatusOK, def)
}

type mergeRequest struct {
	Sources      []role.Definition `json:"sources"`
	StringFilter string            `json:"stringFilter,omitempty"`
	TypeFilter   string            `json:"typeFilter,omitempty"`
}

// MergeRole merges permissions from the supplied source roles into the
// current working role, optionally filtered.
func (h *Handler) MergeRole(w http.ResponseWriter, r *http.Request) {
	var req mergeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Sources) == 0 {
		respondError(w, http.StatusBadRequest, "at least one source role is required")
		return
	}
	typeFilter, err := parseTypeFilter(req.TypeFilter)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	sources := make([]*role.Definition, len(req.Sources))
	for i := range req.Sources {
		sources[i] = &req.Sources[i]
	}

	start := time.Now()
	h.mu.Lock()
	def, err := h.manager.Merge(sources, req.StringFilter, typeFilter)
	h.mu.Unlock()
	h.metrics.RecordOperation(r.Context(), "merge", err)
	h.metrics.RecordMergeDuration(r.Context(), "merge", float64(time.Since(start).Microseconds())/1000)
	if err != nil {
		if errors.Is(err, role.ErrNoCurrentRole) {
			respondError(w, http.StatusNotFound, "no role is currently loaded")
			return
		}
		respondError(w, http.StatusInternalServerError, "merge failed")
		return
	}

	h.audit.Log(r.Context(), audit.Event{
		Type:     audit.TypeRoleMerged,
		Resource: def.Name,
		Metadata: map[string]any{
			"sources":       len(req.Sources),
			"string_filter": req.StringFilter,
			"type_filter":   req.TypeFilter,
		},
	})

	respondJSON(w, http.StatusOK, def)
}

type removeRequest struct {
	StringFilter string `json:"stringFilter,omitempty"`
	TypeFilter   string `json:"typeFilter,omitempty"`
}

// RemoveActions strips matching actions from the current working role.
// At least one filter must be supplied; an unfiltered remove would
// silently empty the role.
func (h *Handler) RemoveActions(w http.ResponseWriter, r *http.Request) {
	var req removeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.StringFilter == "" && req.TypeFilter == "" {
		respondError(w, http.StatusBadRequest, "at least one of stringFilter or typeFilter is required")
		return
	}
	typeFilter, err := parseTypeFilter(req.TypeFilter)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	start := time.Now()
	h.mu.Lock()
	def, err := h.manager.Remove(req.StringFilter, typeFilter)
	h.mu.Unlock()
	h.metrics.RecordOperation(r.Context(), "remove", err)
	h.metrics.RecordMergeDuration(r.Context(), "remove", float64(time.Since(start).Microseconds())/1000)
	if err != nil {
		if errors.Is(err, role.ErrNoCurrentRole) {
			respondError(w, http.StatusNotFound, "no role is currently loaded")
			return
		}
		respondError(w, http.StatusInternalServerError, "remove failed")
		return
	}

	h.audit.Log(r.Context(), audit.Event{
		Type:     audit.TypeRoleTrimmed,
		Resource: def.Name,
		Metadata: map[string]any{
			"string_filter": req.StringFilter,
			"type_filter":   req.TypeFilter,
		},
	})

	respondJSON(w, http.StatusOK, def)
}

type saveRoleRequest struct {
	Overwrite bool `json:"overwrite"`
}

// SaveRole writes the current working role to the roles directory.
func (h *Handler) SaveRole(w http.ResponseWriter, r *http.Request) {
	var req saveRoleRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	h.mu.Lock()
	def, err := h.manager.Require()
	h.mu.Unlock()
	if err != nil {
		respondError(w, http.StatusNotFound, "no role is currently loaded")
		return
	}

	path, err := h.files.SaveByName(def, req.Overwrite)
	h.metrics.RecordOperation(r.Context(), "save", err)
	if err != nil {
		if errors.Is(err, store.ErrExists) {
			respondError(w, http.StatusConflict, "role already saved; set overwrite to replace it")
			return
		}
		slog.ErrorContext(r.Context(), "failed to save role", logger.Error(err), logger.RoleName(def.Name))
		respondError(w, http.StatusInternalServerError, "failed to save role")
		return
	}

	h.audit.Log(r.Context(), audit.Event{
		Type:     audit.TypeRoleSaved,
		Resource: def.Name,
	})

	respondJSON(w, http.StatusOK, map[string]string{
		"saved": path,
	})
}

// ListRoles lists the saved role documents.
func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	names, err := h.files.List()
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list roles", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to list roles")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"roles": names,
	})
}

func parseTypeFilter(s string) (permission.Type, error) {
	if s == "" {
		return "", nil
	}
	return permission.ParseType(s)
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
