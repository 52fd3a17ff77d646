package models

import "time"

type NotificationType string

const (
	NotifyLike    NotificationType = "like"
	NotifyComment NotificationType = "comment"
	NotifyFollow  NotificationType = "follow"
)

// Notification - уведомление о действии другого пользователя
type Notification struct {
	ID          int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      int64            `gorm:"index" json:"user_id"`
	ActorID     int64            `gorm:"index" json:"actor_id"`
	ActorName   string           `gorm:"size:255" json:"actor_name"`
	ActorAvatar string           `gorm:"size:512" json:"actor_avatar,omitempty"`
	Type        NotificationType `gorm:"size:30;index" json:"type"`
	PostID      int64            `json:"post_id,omitempty"`
	Message     string           `gorm:"size:512" json:"message"`
	IsRead      bool             `gorm:"default:false;index" json:"is_read"`
	CreatedAt   time.Time        `gorm:"index" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
