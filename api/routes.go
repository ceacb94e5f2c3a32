package api

import (
	"github.com/go-chi/chi/v5"
)

// setupRoutes mounts the public read API, the back office and the media files.
func setupRoutes(r chi.Router, handlers *routeHandlers) {
	r.Group(func(r chi.Router) {
		r.Use(ColoredHTTPLoggingMiddleware)

		r.Get("/healthz", handlers.healthHandler.health())

		// Public read API
		r.Route("/api", func(r chi.Router) {
			r.Get("/projects", handlers.projectHandler.listProjects())
			r.Get("/projects/{projectID}", handlers.projectHandler.getProject())
			r.Get("/project", handlers.projectHandler.getProject())
		})

		// Back office
		r.Route("/admin", func(r chi.Router) {
			r.Use(requestInfo)
			r.Get("/", handlers.adminHandler.index())
			r.Get("/edit", handlers.adminHandler.edit())
			r.Get("/activity", handlers.adminHandler.activity())
			r.Get("/actions", handlers.adminHandler.actions())
			r.Post("/actions", handlers.adminHandler.actions())
		})

		if handlers.assetHandler != nil {
			r.Handle("/uploads/*", handlers.assetHandler)
		}
	})
}
