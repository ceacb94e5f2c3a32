package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rpupo63/portfolio-site-backend/database"
	"github.com/rpupo63/portfolio-site-backend/errs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type projectHandler struct {
	responder Responder
	logger    zerolog.Logger
	queries   *database.ProjectQueries
}

func newProjectHandler(queries *database.ProjectQueries) projectHandler {
	logger := log.With().Str("handlerName", "projectHandler").Logger()

	return projectHandler{
		responder: NewResponder(logger),
		logger:    logger,
		queries:   queries,
	}
}

// listProjects returns the published projects
// @Summary List published projects
// @Tags Projects
// @Produce json
// @Param category query string false "Category id or name"
// @Param limit query int false "Page size, default 50, at most 100"
// @Param offset query int false "Rows to skip"
// @Success 200 {array} database.ProjectSummary
// @Failure 400 {object} ErrorResponse "Bad Request - non numeric limit or offset"
// @Router /api/projects [get]
func (h projectHandler) listProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		filter := database.ListFilter{}

		if category := strings.TrimSpace(query.Get("category")); category != "" {
			if id, err := strconv.ParseInt(category, 10, 64); err == nil {
				filter.CategoryID = id
			} else {
				filter.CategoryName = category
			}
		}

		var err error
		if filter.Limit, err = intParam(query.Get("limit"), "limit"); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if filter.Offset, err = intParam(query.Get("offset"), "offset"); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		projects, err := h.queries.ListPublished(r.Context(), filter)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, projects)
	}
}

// getProject returns one published project with tags and gallery
// @Summary Get published project
// @Tags Projects
// @Produce json
// @Param projectID path int true "Project ID"
// @Success 200 {object} database.ProjectDetail
// @Failure 400 {object} ErrorResponse "Bad Request - invalid id"
// @Failure 404 {object} ErrorResponse "Not Found - missing or unpublished"
// @Router /api/projects/{projectID} [get]
func (h projectHandler) getProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := chi.URLParam(r, "projectID")
		if raw == "" {
			raw = r.URL.Query().Get("id")
		}

		id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil || id <= 0 {
			h.responder.WriteError(w, errs.NewInvalidFieldError("id", "must be a positive integer"))
			return
		}

		project, err := h.queries.PublishedDetail(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, project)
	}
}

// intParam parses an optional integer query parameter. Empty means zero.
func intParam(raw, name string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errs.NewInvalidFieldError(name, "must be an integer")
	}
	return n, nil
}
