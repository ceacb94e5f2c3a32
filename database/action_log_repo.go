package database

import (
	"context"

	"github.com/rpupo63/portfolio-site-backend/errs"
	"github.com/rpupo63/portfolio-site-backend/models"
	"gorm.io/gorm"
)

type ActionLogRepo struct {
	db *gorm.DB
}

func NewActionLogRepo(db *gorm.DB) *ActionLogRepo {
	return &ActionLogRepo{db}
}

func (r *ActionLogRepo) Add(ctx context.Context, entry *models.AdminActionLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return errs.NewDatabaseError("insert", "action log", err)
	}
	return nil
}

// Recent returns the newest entries first
func (r *ActionLogRepo) Recent(ctx context.Context, limit int) ([]models.AdminActionLog, error) {
	var entries []models.AdminActionLog
	err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Limit(limit).Find(&entries).Error
	if err != nil {
		return nil, errs.NewDatabaseError("list", "action log", err)
	}
	return entries, nil
}
