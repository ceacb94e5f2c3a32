package models

// Tag is a technology or topic label. Category groups tags in the admin form ("language", "tool").
type Tag struct {
	ID       int64  `json:"id" db:"id" gorm:"primaryKey;autoIncrement"`
	Name     string `json:"name" db:"name" gorm:"type:varchar(100);not null"`
	Category string `json:"category" db:"category" gorm:"type:varchar(100);not null;default:''"`
}
