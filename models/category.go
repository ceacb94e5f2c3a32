package models

type Category struct {
	ID   int64  `json:"id" db:"id" gorm:"primaryKey;autoIncrement"`
	Name string `json:"name" db:"name" gorm:"type:varchar(100);not null;uniqueIndex:idx_category_name"`
}

// DefaultCategories seeds an empty categories table.
var DefaultCategories = []string{"Web", "Mobile", "Game", "Design", "Other"}
