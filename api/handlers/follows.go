package handlers

import (
	"net/http"
	"pulse/api/middleware"
	"pulse/services"
	"strconv"

	"github.com/gin-gonic/gin"
)

var followService = services.NewFollowService()

// Follow подписывает текущего пользователя на указанного
func Follow(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	targetID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	err = followService.Follow(c.Request.Context(), userID.(int64), targetID)
	middleware.RecordEngagementOperation("follow", err)
	if err != nil {
		switch err.Error() {
		case "cannot follow yourself":
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot follow yourself"})
		case "one or both users do not exist":
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to follow"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Followed"})
}

// Unfollow снимает подписку
func Unfollow(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	targetID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	err = followService.Unfollow(c.Request.Context(), userID.(int64), targetID)
	middleware.RecordEngagementOperation("unfollow", err)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unfollow"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Unfollowed"})
}

// GetFollowers возвращает подписчиков пользователя
func GetFollowers(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	ids, err := followService.GetFollowers(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get followers"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"followers": ids})
}

// GetFollowing возвращает подписки пользователя
func GetFollowing(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	ids, err := followService.GetFollowing(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get following"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"following": ids})
}

// GetSuggestions возвращает кандидатов для подписки
func GetSuggestions(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	limit := 0
	if parsed, err := strconv.Atoi(c.Query("limit")); err == nil {
		limit = parsed
	}

	users, err := followService.GetSuggestions(c.Request.Context(), userID.(int64), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get suggestions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}
