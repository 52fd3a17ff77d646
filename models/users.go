package models

import (
	"time"
)

type User struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Nickname  string    `gorm:"size:60;uniqueIndex" json:"nickname"`
	Name      string    `gorm:"size:255" json:"name"`
	Email     string    `gorm:"size:255" json:"email,omitempty"`
	Password  string    `gorm:"size:255" json:"-"`
	Avatar    string    `gorm:"size:512" json:"avatar,omitempty"`
	Bio       string    `gorm:"type:text" json:"bio,omitempty"`
	Location  string    `gorm:"size:255" json:"location,omitempty"`
	Website   string    `gorm:"size:512" json:"website,omitempty"`

	// Настройки уведомлений и приватности
	NotifyOnEngagement bool `gorm:"default:true" json:"notify_on_engagement"`
	PrivateProfile     bool `gorm:"default:false" json:"private_profile"`

	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	LastLogin  time.Time `json:"last_login,omitempty"`
	LastActive time.Time `json:"last_active,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// Profile - пользователь вместе со списками подписок для отдачи в API
type Profile struct {
	User
	Followers      []int64 `json:"followers"`
	Following      []int64 `json:"following"`
	FollowerCount  int64   `json:"follower_count"`
	FollowingCount int64   `json:"following_count"`
}

type UserTokens struct {
	ID     int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64  `gorm:"index:user_token_idx,unique" json:"user_id"`
	Token  string `gorm:"size:255;index:user_token_idx,unique" json:"token"`
}

func (UserTokens) TableName() string {
	return "user_tokens"
}
