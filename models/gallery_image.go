package models

// GalleryImage is one entry of a project's image gallery.
type GalleryImage struct {
	ID        int64  `json:"id" db:"id" gorm:"primaryKey;autoIncrement"`
	ProjectID int64  `json:"project_id" db:"project_id" gorm:"not null;index:idx_gallery_project_order"`
	ImageURL  string `json:"image_url" db:"image_url" gorm:"type:varchar(512);not null"`
	Caption   string `json:"caption" db:"caption" gorm:"type:varchar(255);not null;default:''"`
	SortOrder int    `json:"sort_order" db:"sort_order" gorm:"not null;default:0;index:idx_gallery_project_order"`
}

func (GalleryImage) TableName() string {
	return "project_galleries"
}
