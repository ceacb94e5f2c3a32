package api

import (
	"time"

	"github.com/rpupo63/portfolio-site-backend/media"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(deps Dependencies, startupTime time.Time) *routeHandlers {
	handlers := &routeHandlers{
		projectHandler: newProjectHandler(deps.Database.ProjectQueries()),
		adminHandler:   newAdminHandler(deps.Projects, deps.Admin, deps.MaxFormBytes),
		healthHandler:  newHealthHandler(deps.Database, startupTime),
	}
	// S3 media is served by the bucket or its CDN
	if local, ok := deps.Store.(*media.LocalStore); ok {
		handlers.assetHandler = newAssetHandler(local)
	}
	return handlers
}
