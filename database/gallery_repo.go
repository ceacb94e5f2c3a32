package database

import (
	"context"

	"github.com/rpupo63/portfolio-site-backend/errs"
	"github.com/rpupo63/portfolio-site-backend/models"
	"gorm.io/gorm"
)

type GalleryRepo struct {
	db *gorm.DB
}

func NewGalleryRepo(db *gorm.DB) *GalleryRepo {
	return &GalleryRepo{db}
}

// FindByProject returns a project's gallery in display order
func (r *GalleryRepo) FindByProject(ctx context.Context, projectID int64) ([]models.GalleryImage, error) {
	var images []models.GalleryImage
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("sort_order ASC, id ASC").
		Find(&images).Error
	if err != nil {
		return nil, errs.NewDatabaseError("list", "gallery", err)
	}
	return images, nil
}

// First returns the image that leads the gallery, or nil when the gallery is empty.
func (r *GalleryRepo) First(ctx context.Context, projectID int64) (*models.GalleryImage, error) {
	var images []models.GalleryImage
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("sort_order ASC, id ASC").
		Limit(1).
		Find(&images).Error
	if err != nil {
		return nil, errs.NewDatabaseError("load", "gallery", err)
	}
	if len(images) == 0 {
		return nil, nil
	}
	return &images[0], nil
}

// FindForProject loads one image only if it belongs to projectID.
func (r *GalleryRepo) FindForProject(ctx context.Context, id, projectID int64) (*models.GalleryImage, error) {
	var image models.GalleryImage
	err := r.db.WithContext(ctx).Where("id = ? AND project_id = ?", id, projectID).First(&image).Error
	if err != nil {
		return nil, errs.NewDatabaseError("load", "gallery image", err)
	}
	return &image, nil
}

func (r *GalleryRepo) Add(ctx context.Context, image *models.GalleryImage) error {
	if err := r.db.WithContext(ctx).Create(image).Error; err != nil {
		return errs.NewDatabaseError("insert", "gallery image", err)
	}
	return nil
}

// UpdateMeta changes caption and order of one image of projectID. Rows of other projects are untouched.
func (r *GalleryRepo) UpdateMeta(ctx context.Context, projectID, id int64, caption string, sortOrder int) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.GalleryImage{}).
		Where("id = ? AND project_id = ?", id, projectID).
		Updates(map[string]any{"caption": caption, "sort_order": sortOrder})
	if res.Error != nil {
		return 0, errs.NewDatabaseError("update", "gallery image", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *GalleryRepo) Delete(ctx context.Context, id int64) error {
	if err := r.db.WithContext(ctx).Delete(&models.GalleryImage{}, id).Error; err != nil {
		return errs.NewDatabaseError("delete", "gallery image", err)
	}
	return nil
}

func (r *GalleryRepo) DeleteByProject(ctx context.Context, projectID int64) error {
	err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Delete(&models.GalleryImage{}).Error
	if err != nil {
		return errs.NewDatabaseError("delete", "gallery", err)
	}
	return nil
}
