// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

// Package api implements the HTTP endpoints served by `blockfix serve`.
// They list the patch catalogue and check or apply patches against local
// and remote targets.
package api

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"blockfix/internal/config"
	"blockfix/internal/target"

	"github.com/gorilla/mux"
)

// Server holds what the handlers need. It is built once at startup; the
// catalogue and hosts are not reloaded while serving.
type Server struct {
	Catalogue *config.Catalogue
	Hosts     []config.SSHHost
	Remote    target.Runner
}

// NewRouter returns a router with every API route registered.
func (s *Server) NewRouter() *mux.Router {
	router := mux.NewRouter()
	router.Use(requireJSON)
	s.RegisterPatchRoutes(router)
	s.RegisterHostRoutes(router)
	return router
}

var errNotJSON = errors.New("request body must be application/json")

// requireJSON rejects POST requests whose body is not declared as JSON.
func requireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err != nil || mt != "application/json" {
				writeError(w, http.StatusUnsupportedMediaType, errNotJSON)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// writeJSONResponse writes a JSON response
func writeJSONResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSONResponse(w, status, errorResponse{Error: err.Error()})
}
