package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/rpupo63/portfolio-site-backend/database"
	"github.com/rpupo63/portfolio-site-backend/errs"
	"github.com/rpupo63/portfolio-site-backend/models"
	"github.com/rpupo63/portfolio-site-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type adminHandler struct {
	responder    Responder
	logger       zerolog.Logger
	projects     *services.ProjectService
	admin        *services.AdminService
	maxFormBytes int64
}

func newAdminHandler(projects *services.ProjectService, admin *services.AdminService, maxFormBytes int64) adminHandler {
	logger := log.With().Str("handlerName", "adminHandler").Logger()

	return adminHandler{
		responder:    NewResponder(logger),
		logger:       logger,
		projects:     projects,
		admin:        admin,
		maxFormBytes: maxFormBytes,
	}
}

type adminIndexResponse struct {
	Flash    *Flash                     `json:"flash"`
	Projects []database.AdminProjectRow `json:"projects"`
}

type adminEditResponse struct {
	Flash *Flash `json:"flash"`
	services.EditForm
}

type adminActivityResponse struct {
	Flash   *Flash                  `json:"flash"`
	Entries []models.AdminActionLog `json:"entries"`
}

// actions runs one admin write action
// @Summary Run admin action
// @Tags Admin
// @Accept multipart/form-data
// @Produce json
// @Param action query string true "create, update, delete or delete_gallery_image"
// @Success 303 "Redirect with flash cookie"
// @Success 200 {object} services.Result "When Accept is application/json"
// @Router /admin/actions [post]
func (h adminHandler) actions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if err := parseAdminForm(w, r, h.maxFormBytes); err != nil {
				h.writeResult(w, r, services.Failed(err, services.AdminIndex))
				return
			}
		}

		action := strings.TrimSpace(r.URL.Query().Get("action"))
		if action == "" {
			action = strings.TrimSpace(r.PostFormValue("action"))
		}

		ctx := r.Context()
		var res services.Result
		switch action {
		case services.ActionCreate, services.ActionUpdate:
			if r.Method != http.MethodPost {
				err := errs.NewApiErr(http.StatusMethodNotAllowed, fmt.Sprintf("%s requires POST", action))
				res = services.Failed(err, services.AdminIndex)
				break
			}
			in := projectInputFromForm(r)
			if action == services.ActionCreate {
				res = h.projects.Create(ctx, in)
			} else {
				res = h.projects.Update(ctx, in)
			}
		case services.ActionDelete:
			res = h.projects.Delete(ctx, formInt64(r.FormValue("id")))
		case services.ActionDeleteGalleryImage:
			res = h.projects.DeleteGalleryImage(ctx, formInt64(r.FormValue("id")), formInt64(r.FormValue("project_id")))
		case "":
			res = services.Failed(errs.NewMissingRequiredFieldError("action"), services.AdminIndex)
		default:
			res = services.Failed(errs.NewInvalidFieldError("action", fmt.Sprintf("unknown action %q", action)), services.AdminIndex)
		}

		h.writeResult(w, r, res)
	}
}

// writeResult answers JSON clients with the Result and everyone else with a flash and a redirect.
func (h adminHandler) writeResult(w http.ResponseWriter, r *http.Request, res services.Result) {
	if wantsJSON(r) {
		status := res.HTTPStatus
		if status == 0 {
			status = http.StatusOK
		}
		h.responder.WriteJSONStatus(w, status, res)
		return
	}

	if err := setFlash(w, Flash{Type: res.Status, Message: res.Message}); err != nil {
		h.logger.Error().Err(err).Str("status", res.Status).Msg("could not set flash message")
	}
	target := res.RedirectTarget
	if target == "" {
		target = services.AdminIndex
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// index lists every project for the back office
// @Summary Admin project list
// @Tags Admin
// @Produce json
// @Success 200 {object} adminIndexResponse
// @Router /admin/ [get]
func (h adminHandler) index() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flash := popFlash(w, r)
		projects, err := h.admin.Projects(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if projects == nil {
			projects = []database.AdminProjectRow{}
		}
		h.responder.WriteJSON(w, adminIndexResponse{Flash: flash, Projects: projects})
	}
}

// edit returns the create/edit form data
// @Summary Admin edit form
// @Tags Admin
// @Produce json
// @Param id query int false "Project ID, omitted for the create form"
// @Success 200 {object} adminEditResponse
// @Router /admin/edit [get]
func (h adminHandler) edit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flash := popFlash(w, r)
		id, _ := strconv.ParseInt(strings.TrimSpace(r.URL.Query().Get("id")), 10, 64)

		form, err := h.admin.EditForm(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, adminEditResponse{Flash: flash, EditForm: form})
	}
}

// activity returns the newest admin action log entries
// @Summary Admin activity
// @Tags Admin
// @Produce json
// @Param limit query int false "At most 50"
// @Success 200 {object} adminActivityResponse
// @Router /admin/activity [get]
func (h adminHandler) activity() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flash := popFlash(w, r)
		limit, err := intParam(r.URL.Query().Get("limit"), "limit")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		entries, err := h.admin.Activity(r.Context(), limit)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if entries == nil {
			entries = []models.AdminActionLog{}
		}
		h.responder.WriteJSON(w, adminActivityResponse{Flash: flash, Entries: entries})
	}
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
