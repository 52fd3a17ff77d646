package services

import (
	"context"
	"fmt"
	"log"
	"pulse/db"
	"pulse/models"
	"time"
)

type NotificationService struct{}

func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// notifyEngagement создает уведомление о действии actor-а над targetUser-ом.
// Само-действия уведомлений не порождают.
func notifyEngagement(ctx context.Context, targetUserID, actorID int64, notifyType models.NotificationType, postID int64) {
	if targetUserID == actorID {
		return
	}

	var actor models.User
	if err := db.GetReadOnlyDB(ctx).First(&actor, actorID).Error; err != nil {
		log.Printf("ERROR: failed to load actor %d for notification: %v", actorID, err)
		return
	}

	var message string
	switch notifyType {
	case models.NotifyLike:
		message = fmt.Sprintf("%s liked your post", actor.Name)
	case models.NotifyComment:
		message = fmt.Sprintf("%s commented on your post", actor.Name)
	case models.NotifyFollow:
		message = fmt.Sprintf("%s started following you", actor.Name)
	default:
		return
	}

	notification := models.Notification{
		UserID:      targetUserID,
		ActorID:     actorID,
		ActorName:   actor.Name,
		ActorAvatar: actor.Avatar,
		Type:        notifyType,
		PostID:      postID,
		Message:     message,
		IsRead:      false,
		CreatedAt:   time.Now(),
	}
	if err := db.GetWriteDB(ctx).Create(&notification).Error; err != nil {
		log.Printf("ERROR: failed to create %s notification for user %d: %v", notifyType, targetUserID, err)
		return
	}

	EmitUserEvent(ctx, targetUserID, EventNotification, notification)
}

// List возвращает уведомления пользователя, новые первыми
func (ns *NotificationService) List(ctx context.Context, userID int64, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var notifications []models.Notification
	err := db.GetReadOnlyDB(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get notifications: %w", err)
	}
	return notifications, nil
}

// UnreadCount возвращает число непрочитанных уведомлений
func (ns *NotificationService) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := db.GetReadOnlyDB(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// MarkRead помечает одно уведомление прочитанным
func (ns *NotificationService) MarkRead(ctx context.Context, userID, notificationID int64) error {
	result := db.GetWriteDB(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("notification not found")
	}
	return nil
}

// MarkAllRead помечает все уведомления пользователя прочитанными
func (ns *NotificationService) MarkAllRead(ctx context.Context, userID int64) error {
	return db.GetWriteDB(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}
