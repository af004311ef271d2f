package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sharetube/disco/internal/metrics"
)

func (c controller) GetMux() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(c.requestIdMw)
	r.Use(c.requestLoggingMw)
	r.Use(c.corsMw())

	r.Get("/healthz", c.healthz)
	r.Get("/metrics", metrics.Handler().ServeHTTP)
	r.Get("/ws", c.serveWS)
	r.Get("/rooms/{room-code}", c.getRoom)

	return r
}

func (c controller) corsMw() func(http.Handler) http.Handler {
	if len(c.allowedOrigins) == 0 {
		return cors.AllowAll().Handler
	}

	return cors.Handler(cors.Options{
		AllowedOrigins: c.allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
	})
}
