// SPDX-License-Identifier: MIT

// Package api provides the HTTP surface of the SnapCast server: upload
// credential issuance, the metadata commit, and listings.
package api

import (
	"net/http"

	"github.com/MartinJindu/SnapCast/internal/auth"
	"github.com/MartinJindu/SnapCast/internal/config"
	"github.com/MartinJindu/SnapCast/internal/log"
	"github.com/MartinJindu/SnapCast/internal/videos"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Server holds the HTTP handler dependencies.
type Server struct {
	cfg      config.Config
	svc      *videos.Service
	resolver auth.Resolver
	logger   zerolog.Logger
}

// NewServer creates the HTTP server facade.
func NewServer(cfg config.Config, svc *videos.Service, resolver auth.Resolver) *Server {
	return &Server{
		cfg:      cfg,
		svc:      svc,
		resolver: resolver,
		logger:   log.WithComponent("api"),
	}
}

// Routes assembles the router with the canonical middleware stack.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(s.recoverer)
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(ipRateLimit(s.cfg.APIRequestLimit, s.cfg.APIRequestWindow))

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/uploads/video", s.handleIssueVideoCredential)
			r.Post("/uploads/thumbnail", s.handleIssueThumbnailCredential)
			r.Post("/videos", s.handleCommit)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.optionalAuth)
			r.Get("/videos", s.handleList)
			r.Get("/videos/{id}", s.handleGet)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
