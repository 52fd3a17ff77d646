package services

import (
	"context"
	"testing"

	"pulse/db"
	"pulse/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSymmetric(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	ds := NewDialogService()

	alice := createTestUser(t, "Alice")
	bob := createTestUser(t, "Bob")

	forward, err := ds.Resolve(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	backward, err := ds.Resolve(ctx, bob.ID, alice.ID)
	require.NoError(t, err)

	// Обе стороны попадают в один и тот же диалог
	assert.Equal(t, forward.ID, backward.ID)
	assert.Equal(t, models.ConversationPairKey(alice.ID, bob.ID), forward.PairKey)

	var total int64
	db.ORM.Model(&models.Conversation{}).Count(&total)
	assert.Equal(t, int64(1), total)
}

func TestResolveSelf(t *testing.T) {
	setupTestDB(t)
	ds := NewDialogService()

	alice := createTestUser(t, "Alice")

	_, err := ds.Resolve(context.Background(), alice.ID, alice.ID)
	assert.Error(t, err)
}

func TestResolveMissingUser(t *testing.T) {
	setupTestDB(t)
	ds := NewDialogService()

	alice := createTestUser(t, "Alice")

	_, err := ds.Resolve(context.Background(), alice.ID, 9999)
	assert.Error(t, err)
}

func TestSendMessageUpdatesConversation(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	ds := NewDialogService()

	alice := createTestUser(t, "Alice")
	bob := createTestUser(t, "Bob")

	msg, err := ds.SendMessage(ctx, alice.ID, bob.ID, "hi bob")
	require.NoError(t, err)
	assert.False(t, msg.IsRead)

	var conv models.Conversation
	require.NoError(t, db.ORM.First(&conv, msg.ConversationID).Error)
	assert.Equal(t, "hi bob", conv.LastMessage)
	assert.Equal(t, msg.CreatedAt.Unix(), conv.LastMessageAt.Unix())
}

func TestSendMessageEmpty(t *testing.T) {
	setupTestDB(t)
	ds := NewDialogService()

	alice := createTestUser(t, "Alice")
	bob := createTestUser(t, "Bob")

	_, err := ds.SendMessage(context.Background(), alice.ID, bob.ID, "   ")
	assert.Error(t, err)
}

func TestListMessagesMarksRead(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	ds := NewDialogService()

	alice := createTestUser(t, "Alice")
	bob := createTestUser(t, "Bob")

	_, err := ds.SendMessage(ctx, alice.ID, bob.ID, "first")
	require.NoError(t, err)
	_, err = ds.SendMessage(ctx, bob.ID, alice.ID, "reply")
	require.NoError(t, err)
	_, err = ds.SendMessage(ctx, alice.ID, bob.ID, "second")
	require.NoError(t, err)

	// Боб открывает диалог: прочитанными становятся ровно чужие сообщения
	conv, messages, err := ds.ListMessages(ctx, bob.ID, alice.ID, 0)
	require.NoError(t, err)
	require.Len(t, messages, 3)

	for _, m := range messages {
		if m.FromUserID == alice.ID {
			assert.True(t, m.IsRead, "incoming message should be read")
		} else {
			assert.False(t, m.IsRead, "own message should stay unread")
		}
	}

	// Состояние в базе совпадает с ответом
	var unreadForBob int64
	db.ORM.Model(&models.Message{}).
		Where("conversation_id = ? AND to_user_id = ? AND is_read = ?", conv.ID, bob.ID, false).
		Count(&unreadForBob)
	assert.Equal(t, int64(0), unreadForBob)

	var unreadForAlice int64
	db.ORM.Model(&models.Message{}).
		Where("conversation_id = ? AND to_user_id = ? AND is_read = ?", conv.ID, alice.ID, false).
		Count(&unreadForAlice)
	assert.Equal(t, int64(1), unreadForAlice)
}

func TestListConversationsOrder(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	ds := NewDialogService()

	alice := createTestUser(t, "Alice")
	bob := createTestUser(t, "Bob")
	carol := createTestUser(t, "Carol")

	_, err := ds.SendMessage(ctx, alice.ID, bob.ID, "to bob")
	require.NoError(t, err)
	_, err = ds.SendMessage(ctx, alice.ID, carol.ID, "to carol")
	require.NoError(t, err)

	conversations, err := ds.ListConversations(ctx, alice.ID, 0)
	require.NoError(t, err)
	require.Len(t, conversations, 2)

	// Свежий диалог первым
	assert.Equal(t, carol.ID, conversations[0].Other(alice.ID))
	assert.Equal(t, bob.ID, conversations[1].Other(alice.ID))
}

func TestUnreadCountWithoutRedis(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	ds := NewDialogService()

	alice := createTestUser(t, "Alice")
	bob := createTestUser(t, "Bob")

	msg, err := ds.SendMessage(ctx, alice.ID, bob.ID, "unread")
	require.NoError(t, err)

	count, err := ds.UnreadCount(ctx, bob.ID, msg.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	_, _, err = ds.ListMessages(ctx, bob.ID, alice.ID, 0)
	require.NoError(t, err)

	count, err = ds.UnreadCount(ctx, bob.ID, msg.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}
