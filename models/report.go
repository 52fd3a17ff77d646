package models

import "time"

const (
	ReportPending  = "pending"
	ReportResolved = "resolved"
)

// Report - жалоба на пост для модерации
type Report struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	PostID     int64     `gorm:"index" json:"post_id"`
	ReporterID int64     `gorm:"index" json:"reporter_id"`
	Reason     string    `gorm:"size:512" json:"reason"`
	Status     string    `gorm:"size:20;default:pending;index" json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	ResolvedAt time.Time `json:"resolved_at,omitempty"`
}

func (Report) TableName() string {
	return "reports"
}
