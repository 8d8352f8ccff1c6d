// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/MartinJindu/SnapCast/internal/auth"
	"github.com/MartinJindu/SnapCast/internal/bunny"
	"github.com/MartinJindu/SnapCast/internal/store"
	"github.com/MartinJindu/SnapCast/internal/videos"
)

// errorBody is the normalized failure shape every handler returns. Internal
// failures never surface as unhandled responses.
type errorBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps an error onto its HTTP status and the normalized shape.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		code = http.StatusUnauthorized
		message = "unauthenticated"
	case errors.Is(err, videos.ErrRateLimited):
		code = http.StatusTooManyRequests
		message = "rate limit exceeded"
		w.Header().Set("Retry-After", strconv.Itoa(int(s.cfg.CommitWindow.Seconds())))
	case errors.Is(err, videos.ErrInvalidInput):
		code = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, store.ErrNotFound):
		code = http.StatusNotFound
		message = "not found"
	case errors.Is(err, bunny.ErrUpstreamStatus):
		code = http.StatusBadGateway
		message = "upstream host failure"
	}

	if code == http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	} else {
		s.logger.Warn().Err(err).Str("path", r.URL.Path).Int("status", code).Msg("request rejected")
	}

	writeJSON(w, code, errorBody{Status: "error", Message: message})
}
