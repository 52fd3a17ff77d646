package handlers

import (
	"net/http"
	"pulse/services"
	"strconv"

	"github.com/gin-gonic/gin"
)

var reportService = services.NewReportService()

// CreateReport регистрирует жалобу на пост
func CreateReport(c *gin.Context) {
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
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	report, err := reportService.CreateReport(c.Request.Context(), userID.(int64), postID, req.Reason)
	if err != nil {
		switch err.Error() {
		case "reason is required":
			c.JSON(http.StatusBadRequest, gin.H{"error": "Reason is required"})
		case "post not found":
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create report"})
		}
		return
	}

	c.JSON(http.StatusCreated, report)
}

// ListReports возвращает жалобы (админский эндпоинт)
func ListReports(c *gin.Context) {
	status := c.Query("status")
	limit := 0
	if parsed, err := strconv.Atoi(c.Query("limit")); err == nil {
		limit = parsed
	}

	reports, err := reportService.ListReports(c.Request.Context(), status, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list reports"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

// ResolveReport закрывает жалобу (админский эндпоинт)
func ResolveReport(c *gin.Context) {
	reportID := c.Param("id")

	var req struct {
		RemovePost bool `json:"remove_post"`
	}
	// Тело опционально: без него жалоба просто закрывается
	_ = c.ShouldBindJSON(&req)

	err := reportService.ResolveReport(c.Request.Context(), reportID, req.RemovePost)
	if err != nil {
		switch err.Error() {
		case "report not found":
			c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		case "report already resolved":
			c.JSON(http.StatusBadRequest, gin.H{"error": "Report already resolved"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve report"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Report resolved"})
}
