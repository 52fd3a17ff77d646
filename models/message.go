package models

import (
	"fmt"
	"time"
)

// Conversation - единственный диалог на пару пользователей.
// PairKey строится из отсортированной пары id, уникальный индекс по нему
// исключает дубликаты при одновременном создании с двух сторон.
type Conversation struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	PairKey       string    `gorm:"size:64;uniqueIndex" json:"-"`
	UserLowID     int64     `gorm:"index" json:"user_low_id"`
	UserHighID    int64     `gorm:"index" json:"user_high_id"`
	LastMessage   string    `gorm:"type:text" json:"last_message"`
	LastMessageAt time.Time `gorm:"index" json:"last_message_at"`
	CreatedAt     time.Time `json:"created_at"`
}

func (Conversation) TableName() string {
	return "conversations"
}

// Participants возвращает пару участников в каноническом порядке
func (c Conversation) Participants() [2]int64 {
	return [2]int64{c.UserLowID, c.UserHighID}
}

// Other возвращает второго участника диалога
func (c Conversation) Other(userID int64) int64 {
	if c.UserLowID == userID {
		return c.UserHighID
	}
	return c.UserLowID
}

// ConversationPairKey - детерминированный ключ пары (min:max)
func ConversationPairKey(a, b int64) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}

// Message представляет сообщение в диалоге между пользователями
type Message struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ConversationID int64     `gorm:"index" json:"conversation_id"`
	FromUserID     int64     `gorm:"column:from_user_id;index" json:"from_id"`
	ToUserID       int64     `gorm:"column:to_user_id;index" json:"to_id"`
	Text           string    `gorm:"type:text;not null" json:"text"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	IsRead         bool      `gorm:"default:false" json:"is_read"`
}

func (Message) TableName() string {
	return "messages"
}
