// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package api

import (
	"fmt"
	"net/http"

	"blockfix/internal/config"

	"github.com/gorilla/mux"
)

// hostView is an SSH host as exposed over HTTP. Credentials are omitted.
type hostView struct {
	Name     string `json:"name"`
	Hostname string `json:"hostname"`
	User     string `json:"user"`
	Port     int    `json:"port,omitempty"`
	Disabled bool   `json:"disabled,omitempty"`
}

func newHostView(h config.SSHHost) hostView {
	return hostView{Name: h.Name, Hostname: h.Hostname, User: h.User, Port: h.Port, Disabled: h.Disabled}
}

// RegisterHostRoutes registers the read-only SSH host routes.
func (s *Server) RegisterHostRoutes(router *mux.Router) {
	router.HandleFunc("/api/ssh/hosts", s.listHostsHandler).Methods("GET")
	router.HandleFunc("/api/ssh/hosts/{name}", s.getHostHandler).Methods("GET")
}

func (s *Server) listHostsHandler(w http.ResponseWriter, r *http.Request) {
	views := make([]hostView, 0, len(s.Hosts))
	for _, h := range s.Hosts {
		views = append(views, newHostView(h))
	}
	writeJSONResponse(w, http.StatusOK, views)
}

func (s *Server) getHostHandler(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	for _, h := range s.Hosts {
		if h.Name == name {
			writeJSONResponse(w, http.StatusOK, newHostView(h))
			return
		}
	}
	writeError(w, http.StatusNotFound, fmt.Errorf("%w: %s", config.ErrHostNotFound, name))
}
