package handlers

import (
	"net/http"
	"pulse/api/middleware"
	"pulse/services"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

var dialogService = services.NewDialogService()

// SendMessageHandler - отправка сообщения пользователю
func SendMessageHandler(c *gin.Context) {
	fromUserID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	toUserID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user_id"})
		return
	}
	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	start := time.Now()
	msg, err := dialogService.SendMessage(c.Request.Context(), fromUserID.(int64), toUserID, req.Text)
	if err != nil {
		middleware.RecordDialogOperation("send", "error", time.Since(start))
		switch err.Error() {
		case "message is empty", "cannot open conversation with yourself":
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case "one or both users do not exist":
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
		}
		return
	}
	middleware.RecordDialogOperation("send", "ok", time.Since(start))

	c.JSON(http.StatusOK, msg)
}

// ListDialogHandler - получение сообщений диалога с пользователем.
// Открытие диалога помечает входящие сообщения прочитанными.
func ListDialogHandler(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	otherUserID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user_id"})
		return
	}

	limit := 0
	if parsed, err := strconv.Atoi(c.Query("limit")); err == nil {
		limit = parsed
	}

	start := time.Now()
	conv, messages, err := dialogService.ListMessages(c.Request.Context(), userID.(int64), otherUserID, limit)
	if err != nil {
		middleware.RecordDialogOperation("list", "error", time.Since(start))
		switch err.Error() {
		case "cannot open conversation with yourself":
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case "one or both users do not exist":
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get dialog"})
		}
		return
	}
	middleware.RecordDialogOperation("list", "ok", time.Since(start))

	c.JSON(http.StatusOK, gin.H{
		"conversation": conv,
		"messages":     messages,
	})
}

// ListConversationsHandler возвращает диалоги пользователя
func ListConversationsHandler(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	limit := 0
	if parsed, err := strconv.Atoi(c.Query("limit")); err == nil {
		limit = parsed
	}

	conversations, err := dialogService.ListConversations(c.Request.Context(), userID.(int64), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get conversations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversations": conversations})
}
