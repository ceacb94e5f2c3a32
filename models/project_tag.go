package models

// ProjectTagMap links a project to a tag. The pair is the primary key.
type ProjectTagMap struct {
	ProjectID int64 `json:"project_id" db:"project_id" gorm:"primaryKey;autoIncrement:false"`
	TagID     int64 `json:"tag_id" db:"tag_id" gorm:"primaryKey;autoIncrement:false;index:idx_project_tag_map_tag_id"`
}

func (ProjectTagMap) TableName() string {
	return "project_tag_map"
}
