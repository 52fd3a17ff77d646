package services

import (
	"context"
	"errors"
	"fmt"
	"pulse/db"
	"pulse/models"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EngagementService struct{}

func NewEngagementService() *EngagementService {
	return &EngagementService{}
}

// ToggleLike ставит или снимает отметку "нравится".
// Счетчик меняется только если строка реально вставлена или удалена,
// поэтому like_count не расходится со множеством лайков.
// Возвращает true, если пост теперь лайкнут.
func (es *EngagementService) ToggleLike(ctx context.Context, userID, postID int64) (bool, error) {
	var post models.Post
	if err := db.GetReadOnlyDB(ctx).First(&post, postID).Error; err != nil {
		return false, fmt.Errorf("post not found: %w", err)
	}

	var liked bool
	err := db.GetWriteDB(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.Like{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			liked = false
			return tx.Model(&models.Post{}).Where("id = ?", postID).
				UpdateColumn("like_count", gorm.Expr("like_count - 1")).Error
		}

		insert := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.Like{
			PostID:    postID,
			UserID:    userID,
			CreatedAt: time.Now(),
		})
		if insert.Error != nil {
			return insert.Error
		}
		if insert.RowsAffected == 0 {
			return nil
		}
		liked = true
		return tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("like_count", gorm.Expr("like_count + 1")).Error
	})
	if err != nil {
		return false, fmt.Errorf("failed to toggle like: %w", err)
	}

	if liked {
		notifyEngagement(ctx, post.UserID, userID, models.NotifyLike, postID)
	}
	return liked, nil
}

// ToggleSave добавляет или убирает пост из закладок; счетчика нет
func (es *EngagementService) ToggleSave(ctx context.Context, userID, postID int64) (bool, error) {
	var saved bool
	err := db.GetWriteDB(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.SavedPost{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			saved = false
			return nil
		}
		saved = true
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.SavedPost{
			PostID:    postID,
			UserID:    userID,
			CreatedAt: time.Now(),
		}).Error
	})
	if err != nil {
		return false, fmt.Errorf("failed to toggle save: %w", err)
	}
	return saved, nil
}

// GetLikers возвращает id пользователей, лайкнувших пост
func (es *EngagementService) GetLikers(ctx context.Context, postID int64) ([]int64, error) {
	var ids []int64
	err := db.GetReadOnlyDB(ctx).Model(&models.Like{}).
		Where("post_id = ?", postID).Pluck("user_id", &ids).Error
	return ids, err
}

// GetSavedPosts возвращает закладки пользователя, новые первыми
func (es *EngagementService) GetSavedPosts(ctx context.Context, userID int64, limit int) ([]models.FeedPost, error) {
	if limit <= 0 || limit > DefaultFeedLimit {
		limit = DefaultFeedLimit
	}
	var feedPosts []models.FeedPost
	err := db.GetReadOnlyDB(ctx).
		Table("saved_posts s").
		Select("p.id, p.user_id, u.name as user_name, u.avatar as user_avatar, p.content, p.media_url, p.media_kind, p.like_count, p.comment_count, p.created_at").
		Joins("JOIN posts p ON p.id = s.post_id").
		Joins("JOIN users u ON p.user_id = u.id").
		Where("s.user_id = ?", userID).
		Order("s.created_at DESC").
		Limit(limit).
		Scan(&feedPosts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get saved posts: %w", err)
	}
	return feedPosts, nil
}

// AddComment создает комментарий и атомарно увеличивает comment_count
func (es *EngagementService) AddComment(ctx context.Context, userID, postID int64, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("comment is empty")
	}

	var post models.Post
	if err := db.GetReadOnlyDB(ctx).First(&post, postID).Error; err != nil {
		return nil, fmt.Errorf("post not found: %w", err)
	}

	comment := &models.Comment{
		PostID:    postID,
		UserID:    userID,
		Text:      text,
		CreatedAt: time.Now(),
	}
	err := db.GetWriteDB(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("comment_count", gorm.Expr("comment_count + 1")).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}

	notifyEngagement(ctx, post.UserID, userID, models.NotifyComment, postID)
	return comment, nil
}

// GetComments возвращает комментарии поста по возрастанию времени
func (es *EngagementService) GetComments(ctx context.Context, postID int64, limit int) ([]models.Comment, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var comments []models.Comment
	err := db.GetReadOnlyDB(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}
	return comments, nil
}
