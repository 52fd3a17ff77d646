package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"pulse/db"
	"pulse/models"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	MessagePageLimit = 50          // Лимит выборки сообщений диалога
	UNREAD_KEY       = "unread:%d" // HASH conversation_id -> count по получателю
)

type DialogService struct{}

func NewDialogService() *DialogService {
	return &DialogService{}
}

// Resolve находит или создает единственный диалог пары.
// Ключ пары детерминированный (min:max), вставка идет через
// ON CONFLICT DO NOTHING, так что одновременный resolve с двух сторон
// не породит второй диалог: resolve(A,B) == resolve(B,A) всегда.
func (ds *DialogService) Resolve(ctx context.Context, selfID, otherID int64) (*models.Conversation, error) {
	if selfID == otherID {
		return nil, errors.New("cannot open conversation with yourself")
	}

	var userCount int64
	err := db.GetReadOnlyDB(ctx).Model(&models.User{}).
		Where("id IN (?)", []int64{selfID, otherID}).Count(&userCount).Error
	if err != nil {
		return nil, fmt.Errorf("error checking users: %w", err)
	}
	if userCount != 2 {
		return nil, errors.New("one or both users do not exist")
	}

	low, high := selfID, otherID
	if low > high {
		low, high = high, low
	}

	conv := models.Conversation{
		PairKey:    models.ConversationPairKey(selfID, otherID),
		UserLowID:  low,
		UserHighID: high,
		CreatedAt:  time.Now(),
	}
	err = db.GetWriteDB(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "pair_key"}}, DoNothing: true}).
		Create(&conv).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	// Перечитываем: при конфликте Create не заполняет существующую запись
	var existing models.Conversation
	err = db.GetWriteDB(ctx).Where("pair_key = ?", conv.PairKey).First(&existing).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	return &existing, nil
}

// SendMessage отправляет сообщение в диалог пары
func (ds *DialogService) SendMessage(ctx context.Context, fromUserID, toUserID int64, text string) (*models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("message is empty")
	}

	conv, err := ds.Resolve(ctx, fromUserID, toUserID)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		ConversationID: conv.ID,
		FromUserID:     fromUserID,
		ToUserID:       toUserID,
		Text:           text,
		CreatedAt:      time.Now(),
		IsRead:         false,
	}
	err = db.GetWriteDB(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&models.Conversation{}).Where("id = ?", conv.ID).
			Updates(map[string]interface{}{
				"last_message":    text,
				"last_message_at": msg.CreatedAt,
			}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	ds.bumpUnread(ctx, toUserID, conv.ID, 1)
	EmitUserEvent(ctx, toUserID, EventDialogMessage, msg)

	return msg, nil
}

// ListMessages возвращает сообщения диалога по возрастанию времени.
// Viewer помечает чужие непрочитанные сообщения прочитанными:
// read становится true ровно для senderId != viewer.
func (ds *DialogService) ListMessages(ctx context.Context, viewerID, otherID int64, limit int) (*models.Conversation, []models.Message, error) {
	if limit <= 0 || limit > MessagePageLimit {
		limit = MessagePageLimit
	}

	conv, err := ds.Resolve(ctx, viewerID, otherID)
	if err != nil {
		return nil, nil, err
	}

	var messages []models.Message
	err = db.GetReadOnlyDB(ctx).
		Where("conversation_id = ?", conv.ID).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get messages: %w", err)
	}

	if err := ds.markRead(ctx, viewerID, conv.ID); err != nil {
		log.Printf("ERROR: failed to mark messages read for user %d: %v", viewerID, err)
	} else {
		for i := range messages {
			if messages[i].FromUserID != viewerID {
				messages[i].IsRead = true
			}
		}
	}

	return conv, messages, nil
}

// markRead помечает прочитанными все входящие сообщения viewer-а в диалоге
func (ds *DialogService) markRead(ctx context.Context, viewerID, conversationID int64) error {
	err := db.GetWriteDB(ctx).Model(&models.Message{}).
		Where("conversation_id = ? AND to_user_id = ? AND is_read = ?", conversationID, viewerID, false).
		Update("is_read", true).Error
	if err != nil {
		return err
	}
	ds.resetUnread(ctx, viewerID, conversationID)
	return nil
}

// ListConversations возвращает диалоги пользователя, свежие первыми
func (ds *DialogService) ListConversations(ctx context.Context, userID int64, limit int) ([]models.Conversation, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var conversations []models.Conversation
	err := db.GetReadOnlyDB(ctx).
		Where("user_low_id = ? OR user_high_id = ?", userID, userID).
		Order("last_message_at DESC").
		Limit(limit).
		Find(&conversations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get conversations: %w", err)
	}
	return conversations, nil
}

// UnreadCount возвращает счетчик непрочитанных в диалоге для пользователя.
// Быстрый путь через Redis, без него считаем по таблице сообщений.
func (ds *DialogService) UnreadCount(ctx context.Context, userID, conversationID int64) (int64, error) {
	if RedisClient != nil {
		key := fmt.Sprintf(UNREAD_KEY, userID)
		count, err := RedisClient.HGet(ctx, key, fmt.Sprintf("%d", conversationID)).Int64()
		if err == nil {
			return count, nil
		}
	}

	var count int64
	err := db.GetReadOnlyDB(ctx).Model(&models.Message{}).
		Where("conversation_id = ? AND to_user_id = ? AND is_read = ?", conversationID, userID, false).
		Count(&count).Error
	return count, err
}

func (ds *DialogService) bumpUnread(ctx context.Context, userID, conversationID, delta int64) {
	if RedisClient == nil {
		return
	}
	key := fmt.Sprintf(UNREAD_KEY, userID)
	RedisClient.HIncrBy(ctx, key, fmt.Sprintf("%d", conversationID), delta)
}

func (ds *DialogService) resetUnread(ctx context.Context, userID, conversationID int64) {
	if RedisClient == nil {
		return
	}
	key := fmt.Sprintf(UNREAD_KEY, userID)
	RedisClient.HSet(ctx, key, fmt.Sprintf("%d", conversationID), 0)
}
