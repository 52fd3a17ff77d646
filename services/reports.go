package services

import (
	"context"
	"errors"
	"fmt"
	"pulse/db"
	"pulse/models"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ReportService struct {
	postService *PostService
}

func NewReportService() *ReportService {
	return &ReportService{
		postService: NewPostService(),
	}
}

// CreateReport регистрирует жалобу на пост
func (rs *ReportService) CreateReport(ctx context.Context, reporterID, postID int64, reason string) (*models.Report, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, errors.New("reason is required")
	}

	var count int64
	if err := db.GetReadOnlyDB(ctx).Model(&models.Post{}).Where("id = ?", postID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, errors.New("post not found")
	}

	report := &models.Report{
		ID:         uuid.NewString(),
		PostID:     postID,
		ReporterID: reporterID,
		Reason:     reason,
		Status:     models.ReportPending,
		CreatedAt:  time.Now(),
	}
	if err := db.GetWriteDB(ctx).Create(report).Error; err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}
	return report, nil
}

// ListReports возвращает жалобы, опционально по статусу
func (rs *ReportService) ListReports(ctx context.Context, status string, limit int) ([]models.Report, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := db.GetReadOnlyDB(ctx).Order("created_at DESC").Limit(limit)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var reports []models.Report
	if err := query.Find(&reports).Error; err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, nil
}

// ResolveReport закрывает жалобу; removePost дополнительно удаляет пост
func (rs *ReportService) ResolveReport(ctx context.Context, reportID string, removePost bool) error {
	var report models.Report
	if err := db.GetWriteDB(ctx).Where("id = ?", reportID).First(&report).Error; err != nil {
		return errors.New("report not found")
	}
	if report.Status == models.ReportResolved {
		return errors.New("report already resolved")
	}

	if removePost {
		if err := rs.postService.DeletePost(ctx, 0, report.PostID, true); err != nil {
			return fmt.Errorf("failed to remove reported post: %w", err)
		}
	}

	return db.GetWriteDB(ctx).Model(&models.Report{}).Where("id = ?", reportID).
		Updates(map[string]interface{}{
			"status":      models.ReportResolved,
			"resolved_at": time.Now(),
		}).Error
}
