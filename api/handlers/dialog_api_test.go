package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"pulse/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendMessageAPI(t *testing.T) {
	router := setupAPIRouter(t)
	alice := seedUser(t, "Alice")
	bob := seedUser(t, "Bob")

	w := doJSON(router, "POST", fmt.Sprintf("/api/v1/dialog/%d/send", bob.ID),
		map[string]string{"text": "hi bob"}, alice.ID)
	require.Equal(t, http.StatusOK, w.Code)

	var msg models.Message
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &msg))
	assert.Equal(t, alice.ID, msg.FromUserID)
	assert.Equal(t, bob.ID, msg.ToUserID)
	assert.False(t, msg.IsRead)

	// Самому себе писать нельзя
	w = doJSON(router, "POST", fmt.Sprintf("/api/v1/dialog/%d/send", alice.ID),
		map[string]string{"text": "note to self"}, alice.ID)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Несуществующий получатель
	w = doJSON(router, "POST", "/api/v1/dialog/9999/send",
		map[string]string{"text": "hello?"}, alice.ID)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Без авторизации
	w = doJSON(router, "POST", fmt.Sprintf("/api/v1/dialog/%d/send", bob.ID),
		map[string]string{"text": "anon"}, 0)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListDialogMarksIncomingRead(t *testing.T) {
	router := setupAPIRouter(t)
	alice := seedUser(t, "Alice")
	bob := seedUser(t, "Bob")

	w := doJSON(router, "POST", fmt.Sprintf("/api/v1/dialog/%d/send", bob.ID),
		map[string]string{"text": "from alice"}, alice.ID)
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(router, "POST", fmt.Sprintf("/api/v1/dialog/%d/send", alice.ID),
		map[string]string{"text": "from bob"}, bob.ID)
	require.Equal(t, http.StatusOK, w.Code)

	// Боб открывает диалог
	w = doJSON(router, "GET", fmt.Sprintf("/api/v1/dialog/%d/list", alice.ID), nil, bob.ID)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Conversation models.Conversation `json:"conversation"`
		Messages     []models.Message    `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, "from alice", resp.Conversation.LastMessage)

	// Прочитанными становятся только входящие
	for _, m := range resp.Messages {
		if m.FromUserID == alice.ID {
			assert.True(t, m.IsRead)
		} else {
			assert.False(t, m.IsRead)
		}
	}
}

func TestListConversationsAPI(t *testing.T) {
	router := setupAPIRouter(t)
	alice := seedUser(t, "Alice")
	bob := seedUser(t, "Bob")
	carol := seedUser(t, "Carol")

	w := doJSON(router, "POST", fmt.Sprintf("/api/v1/dialog/%d/send", bob.ID),
		map[string]string{"text": "one"}, alice.ID)
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(router, "POST", fmt.Sprintf("/api/v1/dialog/%d/send", carol.ID),
		map[string]string{"text": "two"}, alice.ID)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, "GET", "/api/v1/dialogs", nil, alice.ID)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Conversations []models.Conversation `json:"conversations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Conversations, 2)
	assert.Equal(t, "two", resp.Conversations[0].LastMessage)

	// У Кэрол ровно один диалог
	w = doJSON(router, "GET", "/api/v1/dialogs", nil, carol.ID)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Conversations, 1)
}
