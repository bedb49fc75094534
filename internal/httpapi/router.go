// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package httpapi

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/wingedpig/overseer/internal/procsnapshot"
)

// ServerConfig holds the address and TLS settings NewServer listens on.
type ServerConfig struct {
	Host    string
	Port    int
	TLSCert string
	TLSKey  string
	Token   string // bearer token required of every request; empty disables auth
}

// NewRouter builds the mux.Router backing Overseer's HTTP/WS bridge:
// POST /api/invoke/{command}, GET /ws/events, plus the health and crash
// history endpoints SPEC_FULL.md adds beyond the teacher's API surface.
func NewRouter(deps *Dependencies, token string) *mux.Router {
	r := mux.NewRouter()

	r.Use(Logging)
	r.Use(Recovery)
	r.Use(Auth(token))

	r.HandleFunc("/api/invoke/{command}", invokeHandler(deps)).Methods("POST")
	r.HandleFunc("/ws/events", eventsWebSocket(deps)).Methods("GET")
	r.HandleFunc("/api/health", healthHandler(deps)).Methods("GET")
	r.HandleFunc("/api/crashes", crashesHandler(deps)).Methods("GET")
	r.HandleFunc("/api/crashes", clearCrashesHandler(deps)).Methods("DELETE")

	return r
}

// healthHandler reports daemon liveness plus an OS-process cross-check
// against every supervised agent and PTY, per SPEC_FULL.md's health
// endpoint addition.
func healthHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sources := []procsnapshot.Source{}
		if deps.Supervisor != nil {
			sources = append(sources, deps.Supervisor.PIDs)
		}
		if deps.PTY != nil {
			sources = append(sources, deps.PTY.PIDs)
		}

		entries, err := procsnapshot.Snapshot(sources...)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}

		WriteJSON(w, http.StatusOK, map[string]any{
			"status":    "ok",
			"processes": entries,
		})
	}
}

// crashesHandler lists the in-memory crash ring, newest first, optionally
// limited by a ?limit= query parameter.
func crashesHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				WriteError(w, http.StatusBadRequest, "limit must be an integer")
				return
			}
			limit = n
		}
		WriteJSON(w, http.StatusOK, deps.Crashes.List(limit))
	}
}

func clearCrashesHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deps.Crashes.Clear()
		WriteJSON(w, http.StatusOK, map[string]any{"cleared": true})
	}
}

// Server wraps an http.Server bound to a router built from Dependencies.
type Server struct {
	router *mux.Router
	cfg    ServerConfig
	server *http.Server
}

// NewServer builds a Server ready to ListenAndServe.
func NewServer(cfg ServerConfig, deps *Dependencies) *Server {
	return &Server{
		router: NewRouter(deps, cfg.Token),
		cfg:    cfg,
	}
}

// Router returns the underlying router, mainly for tests.
func (s *Server) Router() *mux.Router {
	return s.router
}

// ListenAndServe starts the server, auto-detecting TLS from cfg.TLSCert
// and cfg.TLSKey the same way the teacher's API server does.
func (s *Server) ListenAndServe() error {
	addr := s.cfg.Host + ":" + strconv.Itoa(s.cfg.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	tlsEnabled, err := CheckTLSConfig(s.cfg.TLSCert, s.cfg.TLSKey)
	if err != nil {
		return fmt.Errorf("TLS configuration error: %w", err)
	}

	if tlsEnabled {
		certPath := expandPath(s.cfg.TLSCert)
		keyPath := expandPath(s.cfg.TLSKey)
		log.Printf("overseer API listening on https://%s (TLS enabled)", addr)
		return s.server.ListenAndServeTLS(certPath, keyPath)
	}

	log.Printf("overseer API listening on http://%s", addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server, defaulting to a 30s timeout
// when ctx carries no deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	log.Println("shutting down overseer API...")

	shutdownCtx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		shutdownCtx, cancel = context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
	}

	return s.server.Shutdown(shutdownCtx)
}
