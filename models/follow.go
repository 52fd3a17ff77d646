package models

import "time"

// Follow - односторонняя подписка: follower читает followee.
// Обратная сторона отношения восстанавливается запросом по followee_id.
type Follow struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	FollowerID int64     `gorm:"index:follows_pair_idx,unique;index" json:"follower_id"`
	FolloweeID int64     `gorm:"index:follows_pair_idx,unique;index" json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Follow) TableName() string {
	return "follows"
}
