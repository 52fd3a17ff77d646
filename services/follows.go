package services

import (
	"context"
	"fmt"
	"pulse/db"
	"pulse/models"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FollowService struct{}

func NewFollowService() *FollowService {
	return &FollowService{}
}

// Follow подписывает follower на followee и шлет уведомление.
// Обе стороны отношения видны через одну запись, поэтому падение между
// "двумя записями" здесь невозможно.
func (fs *FollowService) Follow(ctx context.Context, followerID, followeeID int64) error {
	if followerID == followeeID {
		return fmt.Errorf("cannot follow yourself")
	}

	var userCount int64
	err := db.GetReadOnlyDB(ctx).Model(&models.User{}).
		Where("id IN (?)", []int64{followerID, followeeID}).Count(&userCount).Error
	if err != nil {
		return fmt.Errorf("error checking users: %w", err)
	}
	if userCount != 2 {
		return fmt.Errorf("one or both users do not exist")
	}

	edge := models.Follow{
		FollowerID: followerID,
		FolloweeID: followeeID,
		CreatedAt:  time.Now(),
	}
	result := db.GetWriteDB(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&edge)
	if result.Error != nil {
		return fmt.Errorf("failed to create follow: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		// Уже подписан, уведомление не дублируем
		return nil
	}

	notifyEngagement(ctx, followeeID, followerID, models.NotifyFollow, 0)
	return nil
}

// Unfollow снимает подписку
func (fs *FollowService) Unfollow(ctx context.Context, followerID, followeeID int64) error {
	err := db.GetWriteDB(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&models.Follow{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete follow: %w", err)
	}
	return nil
}

// IsFollowing проверяет наличие подписки
func (fs *FollowService) IsFollowing(ctx context.Context, followerID, followeeID int64) (bool, error) {
	var count int64
	err := db.GetReadOnlyDB(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&count).Error
	return count > 0, err
}

// GetFollowing возвращает id всех, на кого подписан пользователь
func (fs *FollowService) GetFollowing(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	err := db.GetReadOnlyDB(ctx).Model(&models.Follow{}).
		Where("follower_id = ?", userID).Pluck("followee_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get following: %w", err)
	}
	return ids, nil
}

// GetFollowers возвращает id подписчиков пользователя
func (fs *FollowService) GetFollowers(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	err := db.GetReadOnlyDB(ctx).Model(&models.Follow{}).
		Where("followee_id = ?", userID).Pluck("follower_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get followers: %w", err)
	}
	return ids, nil
}

// GetSuggestions возвращает пользователей, на которых viewer еще не подписан
func (fs *FollowService) GetSuggestions(ctx context.Context, userID int64, limit int) ([]models.User, error) {
	if limit <= 0 || limit > 20 {
		limit = 5
	}
	var users []models.User
	err := db.GetReadOnlyDB(ctx).
		Where("id != ?", userID).
		Where("id NOT IN (?)", db.GetReadOnlyDB(ctx).Session(&gorm.Session{NewDB: true}).
			Model(&models.Follow{}).Select("followee_id").Where("follower_id = ?", userID)).
		Order("created_at DESC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get suggestions: %w", err)
	}
	return users, nil
}
