package models

import "time"

type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

// Post - модель поста пользователя
type Post struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       int64     `gorm:"index" json:"user_id"`
	Content      string    `gorm:"type:text" json:"content"`
	MediaURL     string    `gorm:"size:512" json:"media_url,omitempty"`
	MediaKind    MediaKind `gorm:"size:10" json:"media_kind,omitempty"`
	LikeCount    int64     `gorm:"default:0;index" json:"like_count"`
	CommentCount int64     `gorm:"default:0" json:"comment_count"`
	ViewCount    int64     `gorm:"default:0" json:"view_count"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Post) TableName() string {
	return "posts"
}

// Like - отметка "нравится" (membership-строка вместо массива в документе)
type Like struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	PostID    int64     `gorm:"index:likes_post_user_idx,unique" json:"post_id"`
	UserID    int64     `gorm:"index:likes_post_user_idx,unique" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (Like) TableName() string {
	return "likes"
}

// SavedPost - закладка поста, счетчик не ведется
type SavedPost struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	PostID    int64     `gorm:"index:saved_post_user_idx,unique" json:"post_id"`
	UserID    int64     `gorm:"index:saved_post_user_idx,unique" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (SavedPost) TableName() string {
	return "saved_posts"
}

// Comment - комментарий к посту; не редактируется после создания
type Comment struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	PostID    int64     `gorm:"index" json:"post_id"`
	UserID    int64     `gorm:"index" json:"user_id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (Comment) TableName() string {
	return "comments"
}

// FeedPost - структура для ленты с дополнительной информацией о пользователе
type FeedPost struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	UserName     string    `json:"user_name"`
	UserAvatar   string    `json:"user_avatar,omitempty"`
	Content      string    `json:"content"`
	MediaURL     string    `json:"media_url,omitempty"`
	MediaKind    string    `json:"media_kind,omitempty"`
	LikeCount    int64     `json:"like_count"`
	CommentCount int64     `json:"comment_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// FeedResponse - ответ API для ленты
type FeedResponse struct {
	Posts   []FeedPost `json:"posts"`
	HasMore bool       `json:"has_more"`
	LastID  int64      `json:"last_id,omitempty"`
}
