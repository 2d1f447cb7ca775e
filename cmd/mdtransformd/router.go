package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/rs/cors"

	mdtransform "github.com/LoserCoderLi/markdown-transform"
)

// newRouter wires HTTP routes to the conversion service. Upload and
// convert are rate limited per client IP since both fan out to disk and
// subprocess work.
func newRouter(svc *mdtransform.Service, cfg Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	}).Handler)

	h := &handlers{svc: svc, maxUploadBytes: cfg.MaxUploadBytes}

	limiter := httprate.LimitByIP(cfg.RateLimit, time.Minute)

	r.Group(func(r chi.Router) {
		r.Use(limiter)
		r.Post("/upload", h.upload)
		r.Post("/convert", h.convert)
	})
	r.Get("/download/{urlid}/{filename}", h.download)
	r.Get("/preview/{urlid}", h.preview)
	r.Post("/cleanup", h.cleanup)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
