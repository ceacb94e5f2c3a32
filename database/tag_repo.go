package database

import (
	"context"

	"github.com/rpupo63/portfolio-site-backend/errs"
	"github.com/rpupo63/portfolio-site-backend/models"
	"gorm.io/gorm"
)

type TagRepo struct {
	db *gorm.DB
}

func NewTagRepo(db *gorm.DB) *TagRepo {
	return &TagRepo{db}
}

// FindAll returns every tag grouped by tag category
func (r *TagRepo) FindAll(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := r.db.WithContext(ctx).Order("category ASC, name ASC").Find(&tags).Error; err != nil {
		return nil, errs.NewDatabaseError("list", "tags", err)
	}
	return tags, nil
}

// FilterExisting keeps the ids that belong to a tag row, in ascending order.
func (r *TagRepo) FilterExisting(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var existing []int64
	err := r.db.WithContext(ctx).Model(&models.Tag{}).
		Where("id IN ?", ids).
		Order("id ASC").
		Pluck("id", &existing).Error
	if err != nil {
		return nil, errs.NewDatabaseError("check", "tags", err)
	}
	return existing, nil
}

func (r *TagRepo) Add(ctx context.Context, tag *models.Tag) error {
	if err := r.db.WithContext(ctx).Create(tag).Error; err != nil {
		return errs.NewDatabaseError("insert", "tag", err)
	}
	return nil
}
