package db

import (
	"fmt"

	"gorm.io/gorm"
)

// CreateMessageIndexes создает составные индексы для выборки диалогов.
// AutoMigrate покрывает одиночные колонки, составные держим здесь.
func CreateMessageIndexes(database *gorm.DB) error {
	indexes := []struct {
		name string
		sql  string
	}{
		{
			"idx_messages_conversation_created_at",
			"CREATE INDEX IF NOT EXISTS idx_messages_conversation_created_at ON messages (conversation_id, created_at)",
		},
		{
			"idx_messages_to_user_unread",
			"CREATE INDEX IF NOT EXISTS idx_messages_to_user_unread ON messages (to_user_id, is_read)",
		},
		{
			"idx_posts_created_at_id",
			"CREATE INDEX IF NOT EXISTS idx_posts_created_at_id ON posts (created_at DESC, id DESC)",
		},
	}
	for _, idx := range indexes {
		if err := database.Exec(idx.sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}
	return nil
}
