// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/MartinJindu/SnapCast/internal/store"
	"github.com/MartinJindu/SnapCast/internal/videos"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleIssueVideoCredential(w http.ResponseWriter, r *http.Request) {
	cred, err := s.svc.IssueVideoCredential(r.Context(), principalFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cred)
}

func (s *Server) handleIssueThumbnailCredential(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		VideoID string `json:"videoId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: malformed request body", videos.ErrInvalidInput))
		return
	}

	cred, err := s.svc.IssueThumbnailCredential(r.Context(), principalFrom(r.Context()), payload.VideoID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cred)
}

func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request) {
	var in videos.CommitInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: malformed request body", videos.ErrInvalidInput))
		return
	}

	rec, err := s.svc.Commit(r.Context(), principalFrom(r.Context()), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	q := store.ListQuery{
		Query:    r.URL.Query().Get("query"),
		Sort:     r.URL.Query().Get("sort"),
		Page:     queryInt(r, "page", 1),
		PageSize: queryInt(r, "pageSize", 8),
	}
	if p := principalFrom(r.Context()); p != nil {
		q.ViewerID = p.ID
	}

	listing, err := s.svc.List(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	viewerID := ""
	if p := principalFrom(r.Context()); p != nil {
		viewerID = p.ID
	}

	rec, err := s.svc.Get(r.Context(), viewerID, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return def
	}
	return n
}
