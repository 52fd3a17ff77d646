package handlers

import (
	"net/http"
	"pulse/api/middleware"
	"pulse/services"
	"strconv"

	"github.com/gin-gonic/gin"
)

var engagementService = services.NewEngagementService()

// ToggleLike ставит или снимает лайк
func ToggleLike(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	postID, err := strconv.ParseInt(c.Param("post_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	liked, err := engagementService.ToggleLike(c.Request.Context(), userID.(int64), postID)
	middleware.RecordEngagementOperation("like", err)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to toggle like"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"liked": liked})
}

// ToggleSave добавляет или убирает пост из закладок
func ToggleSave(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	postID, err := strconv.ParseInt(c.Param("post_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	saved, err := engagementService.ToggleSave(c.Request.Context(), userID.(int64), postID)
	middleware.RecordEngagementOperation("save", err)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to toggle save"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"saved": saved})
}

// GetSavedPosts возвращает закладки текущего пользователя
func GetSavedPosts(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	limit := 0
	if parsed, err := strconv.Atoi(c.Query("limit")); err == nil {
		limit = parsed
	}

	posts, err := engagementService.GetSavedPosts(c.Request.Context(), userID.(int64), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get saved posts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// AddComment создает комментарий к посту
func AddComment(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	postID, err := strconv.ParseInt(c.Param("post_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	comment, err := engagementService.AddComment(c.Request.Context(), userID.(int64), postID, req.Text)
	middleware.RecordEngagementOperation("comment", err)
	if err != nil {
		if err.Error() == "comment is empty" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Comment is empty"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add comment"})
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// GetComments возвращает комментарии поста
func GetComments(c *gin.Context) {
	postID, err := strconv.ParseInt(c.Param("post_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	limit := 0
	if parsed, err := strconv.Atoi(c.Query("limit")); err == nil {
		limit = parsed
	}

	comments, err := engagementService.GetComments(c.Request.Context(), postID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get comments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments})
}
