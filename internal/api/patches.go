// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"blockfix/internal/config"
	"blockfix/internal/patch"
	"blockfix/internal/runner"

	"github.com/gorilla/mux"
)

// RegisterPatchRoutes registers the patch catalogue and execution routes.
func (s *Server) RegisterPatchRoutes(router *mux.Router) {
	router.HandleFunc("/api/patches", s.listPatchesHandler).Methods("GET")
	router.HandleFunc("/api/patches/{name}", s.getPatchHandler).Methods("GET")
	router.HandleFunc("/api/patches/{name}/check", s.checkPatchHandler).Methods("POST")
	router.HandleFunc("/api/patches/{name}/apply", s.applyPatchHandler).Methods("POST")
}

// runRequest is the body of the check and apply endpoints. An empty
// Target means the patch's default path.
type runRequest struct {
	Target string `json:"target"`
	DryRun bool   `json:"dry_run"`
}

type checkResponse struct {
	Patch   string        `json:"patch"`
	Target  string        `json:"target"`
	Matches []patch.Match `json:"matches"`
}

func (s *Server) listPatchesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, s.Catalogue.All())
}

func (s *Server) getPatchHandler(w http.ResponseWriter, r *http.Request) {
	p, err := s.Catalogue.Lookup(mux.Vars(r)["name"])
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, p)
}

// jobFromRequest resolves the patch named in the URL and the target in the
// body. It writes the error response itself and returns ok=false on failure.
func (s *Server) jobFromRequest(w http.ResponseWriter, r *http.Request) (runRequest, runner.Job, bool) {
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return req, runner.Job{}, false
	}

	var targets []string
	if req.Target != "" {
		targets = []string{req.Target}
	}
	jobs, err := runner.Plan(s.Catalogue, []string{mux.Vars(r)["name"]}, targets, s.Hosts)
	switch {
	case errors.Is(err, config.ErrPatchNotFound):
		writeError(w, http.StatusNotFound, err)
		return req, runner.Job{}, false
	case err != nil:
		writeError(w, http.StatusBadRequest, err)
		return req, runner.Job{}, false
	}
	return req, jobs[0], true
}

func (s *Server) checkPatchHandler(w http.ResponseWriter, r *http.Request) {
	_, job, ok := s.jobFromRequest(w, r)
	if !ok {
		return
	}

	matches, _, err := runner.Inspect(r.Context(), job, s.Remote)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, checkResponse{
		Patch:   job.Patch.Name,
		Target:  job.Target.String(),
		Matches: matches,
	})
}

func (s *Server) applyPatchHandler(w http.ResponseWriter, r *http.Request) {
	req, job, ok := s.jobFromRequest(w, r)
	if !ok {
		return
	}

	res, err := runner.Execute(r.Context(), job, s.Remote, req.DryRun)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, res)
}

