package handlers

import (
	"net/http"
	"pulse/models"
	"pulse/services"
	"strconv"

	"github.com/gin-gonic/gin"
)

var postService = services.NewPostService()

// CreatePost создает новый пост; медиа грузится тем же запросом (multipart)
// либо передается готовым URL в JSON
func CreatePost(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var content, mediaURL string
	var mediaKind models.MediaKind

	if header, err := c.FormFile("file"); err == nil {
		content = c.PostForm("content")

		kind, err := mediaService.ValidatePostMedia(header)
		if err != nil {
			// Локальная валидация: до CDN запрос не доходит
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		upload, err := mediaService.Upload(header, kind)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "Upload failed"})
			return
		}
		mediaURL = upload.URL
		mediaKind = kind
	} else {
		var req struct {
			Content   string `json:"content"`
			MediaURL  string `json:"media_url"`
			MediaKind string `json:"media_kind"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		content = req.Content
		mediaURL = req.MediaURL
		mediaKind = models.MediaKind(req.MediaKind)
	}

	post, err := postService.CreatePost(c.Request.Context(), userID.(int64), content, mediaURL, mediaKind)
	if err != nil {
		if err.Error() == "post is empty" || err.Error() == "invalid media kind" {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
		return
	}

	c.JSON(http.StatusCreated, post)
}

// GetPost возвращает пост и атомарно увеличивает счетчик просмотров
func GetPost(c *gin.Context) {
	postID, err := strconv.ParseInt(c.Param("post_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	post, err := postService.GetPost(c.Request.Context(), postID)
	if err != nil {
		if err.Error() == "post not found" {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get post"})
		return
	}

	_ = postService.RegisterView(c.Request.Context(), postID)

	c.JSON(http.StatusOK, post)
}

// GetFeed получает ленту в режиме all/following/trending
func GetFeed(c *gin.Context) {
	// Анонимному viewer-у доступен только режим all
	var viewerID int64
	if userID, exists := c.Get("user_id"); exists {
		viewerID = userID.(int64)
	}

	mode := services.FeedMode(c.DefaultQuery("mode", "all"))

	var lastID int64
	if parsed, err := strconv.ParseInt(c.Query("last_id"), 10, 64); err == nil {
		lastID = parsed
	}
	limit := 0
	if parsed, err := strconv.Atoi(c.Query("limit")); err == nil {
		limit = parsed
	}

	feed, err := postService.GetFeed(c.Request.Context(), viewerID, mode, lastID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get feed"})
		return
	}

	c.JSON(http.StatusOK, feed)
}

// DeletePost удаляет пост владельца
func DeletePost(c *gin.Context) {
	postID, err := strconv.ParseInt(c.Param("post_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	err = postService.DeletePost(c.Request.Context(), userID.(int64), postID, false)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found or access denied"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}

// InvalidateUserFeed инвалидирует кеш ленты пользователя (админский эндпоинт)
func InvalidateUserFeed(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	err = postService.InvalidateUserFeed(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to invalidate cache"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cache invalidated successfully"})
}

// RebuildUserFeed перестраивает кеш ленты пользователя из БД (админский эндпоинт)
func RebuildUserFeed(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	err = postService.RebuildUserFeedFromDB(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to rebuild feed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Feed rebuilt successfully"})
}

// GetQueueStats возвращает статистику очереди (админский эндпоинт)
func GetQueueStats(c *gin.Context) {
	if services.QueueServiceInstance == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Queue service not available"})
		return
	}

	queueLength, err := services.QueueServiceInstance.GetQueueStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get queue stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"queue_length": queueLength,
		"workers":      services.QUEUE_WORKER_COUNT,
	})
}
