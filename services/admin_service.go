package services

import (
	"context"

	"github.com/rpupo63/portfolio-site-backend/database"
	"github.com/rpupo63/portfolio-site-backend/errs"
	"github.com/rpupo63/portfolio-site-backend/models"
)

const DefaultActivityLimit = 50

// AdminService backs the read-only back office views.
type AdminService struct {
	db database.Database
}

func NewAdminService(db database.Database) *AdminService {
	return &AdminService{db: db}
}

// EditForm is everything the create/edit form needs. Action is "create" when Project is nil.
type EditForm struct {
	Action        string                `json:"action"`
	Project       *models.Project       `json:"project"`
	Categories    []models.Category     `json:"categories"`
	Tags          []models.Tag          `json:"tags"`
	ProjectTagIDs []int64               `json:"project_tag_ids"`
	Gallery       []models.GalleryImage `json:"gallery"`
}

func (a *AdminService) Projects(ctx context.Context) ([]database.AdminProjectRow, error) {
	return a.db.ProjectQueries().AdminList(ctx)
}

// EditForm loads the form for project id. An unknown or non-positive id yields the empty create form.
func (a *AdminService) EditForm(ctx context.Context, id int64) (EditForm, error) {
	form := EditForm{Action: ActionCreate, ProjectTagIDs: []int64{}, Gallery: []models.GalleryImage{}}

	categories, err := a.db.CategoryRepo().FindAll(ctx)
	if err != nil {
		return EditForm{}, err
	}
	tags, err := a.db.TagRepo().FindAll(ctx)
	if err != nil {
		return EditForm{}, err
	}
	form.Categories = categories
	form.Tags = tags

	if id <= 0 {
		return form, nil
	}
	project, err := a.db.ProjectRepo().FindByID(ctx, id)
	if errs.IsNotFound(err) {
		return form, nil
	}
	if err != nil {
		return EditForm{}, err
	}

	tagIDs, err := a.db.ProjectTagRepo().TagIDs(ctx, id)
	if err != nil {
		return EditForm{}, err
	}
	gallery, err := a.db.GalleryRepo().FindByProject(ctx, id)
	if err != nil {
		return EditForm{}, err
	}

	form.Action = ActionUpdate
	form.Project = project
	if tagIDs != nil {
		form.ProjectTagIDs = tagIDs
	}
	if gallery != nil {
		form.Gallery = gallery
	}
	return form, nil
}

// Activity returns the newest action log entries.
func (a *AdminService) Activity(ctx context.Context, limit int) ([]models.AdminActionLog, error) {
	if limit <= 0 || limit > DefaultActivityLimit {
		limit = DefaultActivityLimit
	}
	return a.db.ActionLogRepo().Recent(ctx, limit)
}
