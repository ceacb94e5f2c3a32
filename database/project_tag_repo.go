package database

import (
	"context"

	"github.com/rpupo63/portfolio-site-backend/errs"
	"github.com/rpupo63/portfolio-site-backend/models"
	"gorm.io/gorm"
)

type ProjectTagRepo struct {
	db *gorm.DB
}

func NewProjectTagRepo(db *gorm.DB) *ProjectTagRepo {
	return &ProjectTagRepo{db}
}

// TagIDs returns the tag ids attached to a project in ascending order
func (r *ProjectTagRepo) TagIDs(ctx context.Context, projectID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&models.ProjectTagMap{}).
		Where("project_id = ?", projectID).
		Order("tag_id ASC").
		Pluck("tag_id", &ids).Error
	if err != nil {
		return nil, errs.NewDatabaseError("load", "project tags", err)
	}
	return ids, nil
}

// Replace deletes every mapping of the project and inserts tagIDs. An empty slice clears the tags.
func (r *ProjectTagRepo) Replace(ctx context.Context, projectID int64, tagIDs []int64) error {
	if err := r.DeleteByProject(ctx, projectID); err != nil {
		return err
	}
	if len(tagIDs) == 0 {
		return nil
	}
	rows := make([]models.ProjectTagMap, 0, len(tagIDs))
	for _, id := range tagIDs {
		rows = append(rows, models.ProjectTagMap{ProjectID: projectID, TagID: id})
	}
	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return errs.NewDatabaseError("insert", "project tags", err)
	}
	return nil
}

func (r *ProjectTagRepo) DeleteByProject(ctx context.Context, projectID int64) error {
	err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Delete(&models.ProjectTagMap{}).Error
	if err != nil {
		return errs.NewDatabaseError("delete", "project tags", err)
	}
	return nil
}
