package models

import "time"

// Project is a portfolio entry. Cover and preview hold media store paths such as
// "uploads/my-project_20240102_0a1b2c3d.png".
type Project struct {
	ID              int64     `json:"id" db:"id" gorm:"primaryKey;autoIncrement"`
	CategoryID      int64     `json:"category_id" db:"category_id" gorm:"not null;index:idx_project_category_id"`
	Title           string    `json:"title" db:"title" gorm:"type:varchar(255);not null"`
	Description     string    `json:"description" db:"description" gorm:"type:text;not null"`
	CoverImageURL   *string   `json:"cover_image_url" db:"cover_image_url" gorm:"type:varchar(512)"`
	PreviewMediaURL *string   `json:"preview_media_url" db:"preview_media_url" gorm:"type:varchar(512)"`
	ProjectLink     *string   `json:"project_link" db:"project_link" gorm:"type:varchar(512)"`
	GithubLink      *string   `json:"github_link" db:"github_link" gorm:"type:varchar(512)"`
	SortOrder       int       `json:"sort_order" db:"sort_order" gorm:"not null;default:0;index:idx_project_listing"`
	IsPublished     bool      `json:"is_published" db:"is_published" gorm:"not null;default:false;index:idx_project_listing"`
	CreatedAt       time.Time `json:"created_at" db:"created_at" gorm:"autoCreateTime"`

	Category *Category      `json:"-" gorm:"foreignKey:CategoryID;references:ID"`
	Gallery  []GalleryImage `json:"-" gorm:"foreignKey:ProjectID;references:ID"`
}

// MediaPaths returns the non-empty cover and preview paths.
func (p Project) MediaPaths() []string {
	var out []string
	if p.CoverImageURL != nil && *p.CoverImageURL != "" {
		out = append(out, *p.CoverImageURL)
	}
	if p.PreviewMediaURL != nil && *p.PreviewMediaURL != "" {
		out = append(out, *p.PreviewMediaURL)
	}
	return out
}
