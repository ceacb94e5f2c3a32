package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// AdminActionLog records one admin write action and how it ended.
type AdminActionLog struct {
	ID         int64             `json:"id" db:"id" gorm:"primaryKey;autoIncrement"`
	Action     string            `json:"action" db:"action" gorm:"type:varchar(64);not null;index"`
	ProjectID  *int64            `json:"project_id,omitempty" db:"project_id" gorm:"index"`
	Outcome    string            `json:"outcome" db:"outcome" gorm:"type:varchar(16);not null"`
	Message    string            `json:"message" db:"message" gorm:"type:text;not null"`
	Details    datatypes.JSONMap `json:"details,omitempty" db:"details"`
	RemoteAddr string            `json:"remote_addr,omitempty" db:"remote_addr" gorm:"type:varchar(64)"`
	CreatedAt  time.Time         `json:"created_at" db:"created_at" gorm:"autoCreateTime;index"`
}
