package database

import (
	"context"

	"github.com/rpupo63/portfolio-site-backend/errs"
	"github.com/rpupo63/portfolio-site-backend/models"
)

// MediaReferenced reports whether any project cover, preview or gallery row points at path.
func (d Database) MediaReferenced(ctx context.Context, path string) (bool, error) {
	var count int64
	err := d.db.WithContext(ctx).Model(&models.Project{}).
		Where("cover_image_url = ? OR preview_media_url = ?", path, path).
		Count(&count).Error
	if err != nil {
		return false, errs.NewDatabaseError("check", "media references", err)
	}
	if count > 0 {
		return true, nil
	}

	err = d.db.WithContext(ctx).Model(&models.GalleryImage{}).Where("image_url = ?", path).Count(&count).Error
	if err != nil {
		return false, errs.NewDatabaseError("check", "media references", err)
	}
	return count > 0, nil
}

// ReferencedMediaPaths returns every media path the database points at.
func (d Database) ReferencedMediaPaths(ctx context.Context) (map[string]bool, error) {
	refs := make(map[string]bool)

	var projects []models.Project
	err := d.db.WithContext(ctx).Select("cover_image_url", "preview_media_url").Find(&projects).Error
	if err != nil {
		return nil, errs.NewDatabaseError("list", "project media", err)
	}
	for _, p := range projects {
		for _, path := range p.MediaPaths() {
			refs[path] = true
		}
	}

	var gallery []string
	if err := d.db.WithContext(ctx).Model(&models.GalleryImage{}).Pluck("image_url", &gallery).Error; err != nil {
		return nil, errs.NewDatabaseError("list", "gallery media", err)
	}
	for _, path := range gallery {
		refs[path] = true
	}
	return refs, nil
}

// RepointMedia moves every project and gallery reference from one media path to another.
func (d Database) RepointMedia(ctx context.Context, from, to string) error {
	db := d.db.WithContext(ctx)
	for _, column := range []string{"cover_image_url", "preview_media_url"} {
		err := db.Model(&models.Project{}).Where(column+" = ?", from).Update(column, to).Error
		if err != nil {
			return errs.NewDatabaseError("update", "project media", err)
		}
	}
	if err := db.Model(&models.GalleryImage{}).Where("image_url = ?", from).Update("image_url", to).Error; err != nil {
		return errs.NewDatabaseError("update", "gallery media", err)
	}
	return nil
}
