package api

import "net/http"

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	projectHandler projectHandler
	adminHandler   adminHandler
	healthHandler  healthHandler
	assetHandler   http.Handler
}

// ErrorResponse represents an error response from the API
type ErrorResponse struct {
	Error   string `json:"error" example:"project not found"`
	Status  string `json:"status" example:"error"`
	Field   string `json:"field,omitempty" example:"limit"`
	Details string `json:"details,omitempty" example:"Additional error details"`
}
