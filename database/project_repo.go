package database

import (
	"context"

	"github.com/rpupo63/portfolio-site-backend/errs"
	"github.com/rpupo63/portfolio-site-backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProjectRepo struct {
	db *gorm.DB
}

func NewProjectRepo(db *gorm.DB) *ProjectRepo {
	return &ProjectRepo{db}
}

// FindByID returns a project by its ID, published or not
func (r *ProjectRepo) FindByID(ctx context.Context, id int64) (*models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).First(&project, id).Error; err != nil {
		return nil, errs.NewDatabaseError("load", "project", err)
	}
	return &project, nil
}

// Add inserts a new project into the database
func (r *ProjectRepo) Add(ctx context.Context, project *models.Project) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(project).Error; err != nil {
		return errs.NewDatabaseError("insert", "project", err)
	}
	return nil
}

// Update replaces every column of an existing project
func (r *ProjectRepo) Update(ctx context.Context, project *models.Project) error {
	res := r.db.WithContext(ctx).Model(project).
		Select("category_id", "title", "description", "cover_image_url", "preview_media_url",
			"project_link", "github_link", "sort_order", "is_published").
		Updates(project)
	if res.Error != nil {
		return errs.NewDatabaseError("update", "project", res.Error)
	}
	return nil
}

// SetCover stores the cover path, used for the gallery backfill.
func (r *ProjectRepo) SetCover(ctx context.Context, id int64, path string) error {
	err := r.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", id).
		Update("cover_image_url", path).Error
	if err != nil {
		return errs.NewDatabaseError("update", "project cover", err)
	}
	return nil
}

// Delete removes a project from the database by id
func (r *ProjectRepo) Delete(ctx context.Context, id int64) error {
	if err := r.db.WithContext(ctx).Delete(&models.Project{}, id).Error; err != nil {
		return errs.NewDatabaseError("delete", "project", err)
	}
	return nil
}
